package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sumire/tracker/internal/domain"
)

// IssueStore defines the issue data access interface consumed by IssueService.
type IssueStore interface {
	ListByProject(ctx context.Context, projectID int64) ([]domain.Issue, error)
	FindByID(ctx context.Context, projectID, issueID int64) (*domain.Issue, error)
	CountByProject(ctx context.Context, projectID int64) (int, error)
	Create(ctx context.Context, issue domain.Issue) (*domain.Issue, error)
	Update(ctx context.Context, issue domain.Issue) error
}

// IssueService handles issue operations, always scoped to a parent project.
type IssueService struct {
	issues   IssueStore
	projects ProjectStore
	users    UserStore
}

// NewIssueService creates a new IssueService.
func NewIssueService(issues IssueStore, projects ProjectStore, users UserStore) *IssueService {
	return &IssueService{issues: issues, projects: projects, users: users}
}

// CreateIssueInput is the allowed field set for issue creation. Enum fields
// are validated at the API boundary; nil means "use the default".
type CreateIssueInput struct {
	Summary     string
	Description *string
	Type        *domain.IssueType
	Status      *domain.IssueStatus
	Priority    *domain.IssuePriority
}

// UpdateIssueInput is the allowed field set for partial issue updates.
// Optional fields distinguish absent (leave untouched) from explicit null
// (clear, where the column is nullable).
type UpdateIssueInput struct {
	Summary     *string
	Description domain.Optional[string]
	Type        *domain.IssueType
	Status      *domain.IssueStatus
	Priority    *domain.IssuePriority
	AssigneeID  domain.Optional[int64]
}

// List returns all issues for the project key, newest first, with creator
// and assignee summaries attached.
func (s *IssueService) List(ctx context.Context, projectKey string) ([]domain.Issue, error) {
	project, err := s.projects.FindByKey(ctx, projectKey)
	if err != nil {
		return nil, err
	}
	return s.issues.ListByProject(ctx, project.ID)
}

// Create stores a new issue. The issue key is the project key joined with
// the current issue count plus one. The count is read outside any
// transaction, so two simultaneous creates in the same project can compute
// the same key; the loser is rejected by the (project_id, key) unique
// constraint and the failure propagates to the caller unchanged.
func (s *IssueService) Create(ctx context.Context, projectKey string, creatorID int64, in CreateIssueInput) (*domain.Issue, error) {
	project, err := s.projects.FindByKey(ctx, projectKey)
	if err != nil {
		return nil, err
	}

	count, err := s.issues.CountByProject(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	issue := domain.Issue{
		ProjectID:   project.ID,
		Key:         fmt.Sprintf("%s-%d", project.Key, count+1),
		Summary:     in.Summary,
		Description: in.Description,
		Type:        domain.IssueTypeTask,
		Status:      domain.IssueStatusTodo,
		Priority:    domain.IssuePriorityMedium,
		CreatedBy:   creatorID,
	}
	if in.Type != nil {
		issue.Type = *in.Type
	}
	if in.Status != nil {
		issue.Status = *in.Status
	}
	if in.Priority != nil {
		issue.Priority = *in.Priority
	}

	return s.issues.Create(ctx, issue)
}

// Get returns a single issue scoped to the project key.
func (s *IssueService) Get(ctx context.Context, projectKey string, issueID int64) (*domain.Issue, error) {
	project, err := s.projects.FindByKey(ctx, projectKey)
	if err != nil {
		return nil, err
	}
	return s.issues.FindByID(ctx, project.ID, issueID)
}

// Update applies the supplied fields to an issue and returns the updated
// record. Absent fields are left untouched; an explicit null clears the
// description or assignee. A non-null assignee must reference an existing
// user.
func (s *IssueService) Update(ctx context.Context, projectKey string, issueID int64, in UpdateIssueInput) (*domain.Issue, error) {
	project, err := s.projects.FindByKey(ctx, projectKey)
	if err != nil {
		return nil, err
	}

	issue, err := s.issues.FindByID(ctx, project.ID, issueID)
	if err != nil {
		return nil, err
	}

	if in.Summary != nil {
		issue.Summary = *in.Summary
	}
	if in.Description.Set {
		issue.Description = in.Description.Value
	}
	if in.Type != nil {
		issue.Type = *in.Type
	}
	if in.Status != nil {
		issue.Status = *in.Status
	}
	if in.Priority != nil {
		issue.Priority = *in.Priority
	}
	if in.AssigneeID.Set {
		if in.AssigneeID.Value != nil {
			if _, err := s.users.FindByID(ctx, *in.AssigneeID.Value); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return nil, domain.ValidationErrors{"assignee_id": {"The selected assignee id is invalid."}}
				}
				return nil, err
			}
		}
		issue.AssigneeID = in.AssigneeID.Value
	}

	if err := s.issues.Update(ctx, *issue); err != nil {
		return nil, err
	}

	return s.issues.FindByID(ctx, project.ID, issueID)
}
