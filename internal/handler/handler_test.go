package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sumire/tracker/internal/domain"
	"github.com/sumire/tracker/internal/service"
)

// In-memory stores backing the full handler stack. They implement the same
// store interfaces the sqlx repositories do, so these tests exercise the
// real router, middleware, validation and services with only the database
// swapped out.

type memState struct {
	users    []domain.User
	sessions map[string]domain.Session
	projects []domain.Project
	issues   []domain.Issue

	nextUserID    int64
	nextProjectID int64
	nextIssueID   int64
}

type memUsers struct{ s *memState }

func (m memUsers) FindByID(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range m.s.users {
		if u.ID == id {
			clone := u
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range m.s.users {
		if u.Email == email {
			clone := u
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m memUsers) List(_ context.Context) ([]domain.User, error) {
	users := append([]domain.User(nil), m.s.users...)
	sort.Slice(users, func(i, j int) bool { return users[i].ID > users[j].ID })
	return users, nil
}

func (m memUsers) ListSummaries(_ context.Context) ([]domain.UserSummary, error) {
	summaries := make([]domain.UserSummary, 0, len(m.s.users))
	for _, u := range m.s.users {
		summaries = append(summaries, domain.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries, nil
}

func (m memUsers) Count(_ context.Context) (int, error) {
	return len(m.s.users), nil
}

func (m memUsers) Create(_ context.Context, user domain.User) (*domain.User, error) {
	for _, u := range m.s.users {
		if u.Email == user.Email {
			return nil, domain.ErrConflict
		}
	}
	m.s.nextUserID++
	user.ID = m.s.nextUserID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.s.users = append(m.s.users, user)
	return &user, nil
}

func (m memUsers) Update(_ context.Context, user domain.User) (*domain.User, error) {
	for i, u := range m.s.users {
		if u.ID == user.ID {
			user.Email = u.Email
			user.CreatedAt = u.CreatedAt
			user.UpdatedAt = time.Now()
			m.s.users[i] = user
			return &user, nil
		}
	}
	return nil, domain.ErrNotFound
}

type memSessions struct{ s *memState }

func (m memSessions) Create(_ context.Context, session domain.Session) error {
	m.s.sessions[session.ID] = session
	return nil
}

func (m memSessions) FindByID(_ context.Context, id string) (*domain.Session, error) {
	session, ok := m.s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &session, nil
}

func (m memSessions) Delete(_ context.Context, id string) error {
	delete(m.s.sessions, id)
	return nil
}

type memProjects struct{ s *memState }

func (m memProjects) List(_ context.Context) ([]domain.Project, error) {
	projects := append([]domain.Project(nil), m.s.projects...)
	sort.Slice(projects, func(i, j int) bool { return projects[i].Name < projects[j].Name })
	return projects, nil
}

func (m memProjects) FindByKey(_ context.Context, key string) (*domain.Project, error) {
	for _, p := range m.s.projects {
		if p.Key == key {
			clone := p
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m memProjects) Create(_ context.Context, project domain.Project) (*domain.Project, error) {
	for _, p := range m.s.projects {
		if p.Key == project.Key {
			return nil, domain.ErrConflict
		}
	}
	m.s.nextProjectID++
	project.ID = m.s.nextProjectID
	project.CreatedAt = time.Now()
	project.UpdatedAt = project.CreatedAt
	m.s.projects = append(m.s.projects, project)
	return &project, nil
}

type memIssues struct{ s *memState }

func (m memIssues) attach(issue domain.Issue) domain.Issue {
	if creator, err := (memUsers{m.s}).FindByID(context.Background(), issue.CreatedBy); err == nil {
		issue.Creator = &domain.UserSummary{ID: creator.ID, Name: creator.Name, Email: creator.Email}
	}
	if issue.AssigneeID != nil {
		if assignee, err := (memUsers{m.s}).FindByID(context.Background(), *issue.AssigneeID); err == nil {
			issue.Assignee = &domain.UserSummary{ID: assignee.ID, Name: assignee.Name, Email: assignee.Email}
		}
	}
	return issue
}

func (m memIssues) ListByProject(_ context.Context, projectID int64) ([]domain.Issue, error) {
	issues := []domain.Issue{}
	for _, i := range m.s.issues {
		if i.ProjectID == projectID {
			issues = append(issues, m.attach(i))
		}
	}
	sort.Slice(issues, func(i, j int) bool { return issues[i].ID > issues[j].ID })
	return issues, nil
}

func (m memIssues) FindByID(_ context.Context, projectID, issueID int64) (*domain.Issue, error) {
	for _, i := range m.s.issues {
		if i.ProjectID == projectID && i.ID == issueID {
			issue := m.attach(i)
			return &issue, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m memIssues) CountByProject(_ context.Context, projectID int64) (int, error) {
	count := 0
	for _, i := range m.s.issues {
		if i.ProjectID == projectID {
			count++
		}
	}
	return count, nil
}

func (m memIssues) Create(_ context.Context, issue domain.Issue) (*domain.Issue, error) {
	for _, i := range m.s.issues {
		if i.ProjectID == issue.ProjectID && i.Key == issue.Key {
			return nil, domain.ErrConflict
		}
	}
	m.s.nextIssueID++
	issue.ID = m.s.nextIssueID
	issue.CreatedAt = time.Now()
	issue.UpdatedAt = issue.CreatedAt
	m.s.issues = append(m.s.issues, issue)
	return &issue, nil
}

func (m memIssues) Update(_ context.Context, issue domain.Issue) error {
	for i, existing := range m.s.issues {
		if existing.ID == issue.ID && existing.ProjectID == issue.ProjectID {
			issue.Creator = nil
			issue.Assignee = nil
			issue.UpdatedAt = time.Now()
			m.s.issues[i] = issue
			return nil
		}
	}
	return domain.ErrNotFound
}

type testServer struct {
	echo  *echo.Echo
	state *memState
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	state := &memState{sessions: map[string]domain.Session{}}
	users := memUsers{state}
	sessions := memSessions{state}
	projects := memProjects{state}
	issues := memIssues{state}

	seedUser(t, state, "Admin", "admin@example.com", "password123", domain.RoleAdmin)
	seedUser(t, state, "Tea", "tea@example.com", "secret1", domain.RoleUser)

	authSvc := service.NewAuthService(users, sessions, time.Hour)
	projectSvc := service.NewProjectService(projects)
	issueSvc := service.NewIssueService(issues, projects, users)
	userSvc := service.NewUserService(users)

	authHandler := NewAuthHandler(authSvc, false)
	projectHandler := NewProjectHandler(projectSvc)
	issueHandler := NewIssueHandler(issueSvc)
	userHandler := NewUserHandler(userSvc)

	e := echo.New()
	e.Validator = NewAppValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(false)

	e.POST("/login", authHandler.Login)
	e.POST("/logout", authHandler.Logout, SessionAuth(authSvc), CSRF())
	e.GET("/whoami", authHandler.Whoami)

	api := e.Group("/api", SessionAuth(authSvc), CSRF())
	api.GET("/me", authHandler.Me)
	api.GET("/projects", projectHandler.List)
	api.POST("/projects", projectHandler.Create)
	api.GET("/projects/:key", projectHandler.Get)
	api.GET("/projects/:key/issues", issueHandler.List)
	api.POST("/projects/:key/issues", issueHandler.Create)
	api.GET("/projects/:key/issues/:id", issueHandler.Get)
	api.PATCH("/projects/:key/issues/:id", issueHandler.Update)
	api.GET("/users", userHandler.Directory)

	admin := api.Group("/admin", RequireAdmin())
	admin.GET("/users", userHandler.AdminList)
	admin.POST("/users", userHandler.AdminCreate)
	admin.PATCH("/users/:id", userHandler.AdminUpdate)

	return &testServer{echo: e, state: state}
}

func seedUser(t *testing.T, state *memState, name, email, password string, role domain.Role) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	state.nextUserID++
	state.users = append(state.users, domain.User{
		ID:           state.nextUserID,
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	})
}

// authCookies holds the pair issued at login.
type authCookies struct {
	session *http.Cookie
	csrf    *http.Cookie
}

func (ts *testServer) do(method, path string, body string, auth *authCookies) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if auth != nil {
		req.AddCookie(auth.session)
		req.AddCookie(auth.csrf)
		req.Header.Set(CSRFHeaderName, auth.csrf.Value)
	}
	rec := httptest.NewRecorder()
	ts.echo.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) login(t *testing.T, email, password string) *authCookies {
	t.Helper()

	rec := ts.do(http.MethodPost, "/login", `{"email":"`+email+`","password":"`+password+`"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, "login failed: %s", rec.Body.String())

	auth := &authCookies{}
	for _, cookie := range rec.Result().Cookies() {
		switch cookie.Name {
		case SessionCookieName:
			auth.session = cookie
		case CSRFCookieName:
			auth.csrf = cookie
		}
	}
	require.NotNil(t, auth.session, "session cookie not set")
	require.NotNil(t, auth.csrf, "csrf cookie not set")
	return auth
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}
