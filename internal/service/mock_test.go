package service

import (
	"context"
	"errors"

	"github.com/sumire/tracker/internal/domain"
)

var errNotImplemented = errors.New("not implemented")

type mockUserStore struct {
	findByIDFunc      func(ctx context.Context, id int64) (*domain.User, error)
	findByEmailFunc   func(ctx context.Context, email string) (*domain.User, error)
	listFunc          func(ctx context.Context) ([]domain.User, error)
	listSummariesFunc func(ctx context.Context) ([]domain.UserSummary, error)
	countFunc         func(ctx context.Context) (int, error)
	createFunc        func(ctx context.Context, user domain.User) (*domain.User, error)
	updateFunc        func(ctx context.Context, user domain.User) (*domain.User, error)
}

func (m *mockUserStore) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, errNotImplemented
}

func (m *mockUserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return nil, errNotImplemented
}

func (m *mockUserStore) List(ctx context.Context) ([]domain.User, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, errNotImplemented
}

func (m *mockUserStore) ListSummaries(ctx context.Context) ([]domain.UserSummary, error) {
	if m.listSummariesFunc != nil {
		return m.listSummariesFunc(ctx)
	}
	return nil, errNotImplemented
}

func (m *mockUserStore) Count(ctx context.Context) (int, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, errNotImplemented
}

func (m *mockUserStore) Create(ctx context.Context, user domain.User) (*domain.User, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil, errNotImplemented
}

func (m *mockUserStore) Update(ctx context.Context, user domain.User) (*domain.User, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, user)
	}
	return nil, errNotImplemented
}

type mockSessionStore struct {
	createFunc   func(ctx context.Context, session domain.Session) error
	findByIDFunc func(ctx context.Context, id string) (*domain.Session, error)
	deleteFunc   func(ctx context.Context, id string) error
}

func (m *mockSessionStore) Create(ctx context.Context, session domain.Session) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, session)
	}
	return errNotImplemented
}

func (m *mockSessionStore) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, errNotImplemented
}

func (m *mockSessionStore) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return errNotImplemented
}

type mockProjectStore struct {
	listFunc      func(ctx context.Context) ([]domain.Project, error)
	findByKeyFunc func(ctx context.Context, key string) (*domain.Project, error)
	createFunc    func(ctx context.Context, project domain.Project) (*domain.Project, error)
}

func (m *mockProjectStore) List(ctx context.Context) ([]domain.Project, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, errNotImplemented
}

func (m *mockProjectStore) FindByKey(ctx context.Context, key string) (*domain.Project, error) {
	if m.findByKeyFunc != nil {
		return m.findByKeyFunc(ctx, key)
	}
	return nil, errNotImplemented
}

func (m *mockProjectStore) Create(ctx context.Context, project domain.Project) (*domain.Project, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, project)
	}
	return nil, errNotImplemented
}

type mockIssueStore struct {
	listByProjectFunc  func(ctx context.Context, projectID int64) ([]domain.Issue, error)
	findByIDFunc       func(ctx context.Context, projectID, issueID int64) (*domain.Issue, error)
	countByProjectFunc func(ctx context.Context, projectID int64) (int, error)
	createFunc         func(ctx context.Context, issue domain.Issue) (*domain.Issue, error)
	updateFunc         func(ctx context.Context, issue domain.Issue) error
}

func (m *mockIssueStore) ListByProject(ctx context.Context, projectID int64) ([]domain.Issue, error) {
	if m.listByProjectFunc != nil {
		return m.listByProjectFunc(ctx, projectID)
	}
	return nil, errNotImplemented
}

func (m *mockIssueStore) FindByID(ctx context.Context, projectID, issueID int64) (*domain.Issue, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, projectID, issueID)
	}
	return nil, errNotImplemented
}

func (m *mockIssueStore) CountByProject(ctx context.Context, projectID int64) (int, error) {
	if m.countByProjectFunc != nil {
		return m.countByProjectFunc(ctx, projectID)
	}
	return 0, errNotImplemented
}

func (m *mockIssueStore) Create(ctx context.Context, issue domain.Issue) (*domain.Issue, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, issue)
	}
	return nil, errNotImplemented
}

func (m *mockIssueStore) Update(ctx context.Context, issue domain.Issue) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, issue)
	}
	return errNotImplemented
}
