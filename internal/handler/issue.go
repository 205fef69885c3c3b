package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/sumire/tracker/internal/domain"
	"github.com/sumire/tracker/internal/service"
)

// IssueHandler handles issue endpoints nested under a project key.
type IssueHandler struct {
	issues *service.IssueService
}

// NewIssueHandler creates a new IssueHandler.
func NewIssueHandler(issues *service.IssueService) *IssueHandler {
	return &IssueHandler{issues: issues}
}

type createIssueRequest struct {
	Summary     string  `json:"summary" validate:"required,max=255"`
	Description *string `json:"description"`
	Type        *string `json:"type" validate:"omitempty,oneof=task bug story"`
	Status      *string `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high"`
}

// updateIssueRequest is the partial update payload. Optional fields keep
// track of whether they appeared in the JSON at all, so absent fields stay
// untouched while explicit nulls clear the nullable ones.
type updateIssueRequest struct {
	Summary     domain.Optional[string] `json:"summary"`
	Description domain.Optional[string] `json:"description"`
	Type        domain.Optional[string] `json:"type"`
	Status      domain.Optional[string] `json:"status"`
	Priority    domain.Optional[string] `json:"priority"`
	AssigneeID  domain.Optional[int64]  `json:"assignee_id"`
}

// validate checks the supplied fields; absence of a field is never an error.
// The validator cannot see field absence, so PATCH validation is explicit.
func (r updateIssueRequest) validate() error {
	errs := domain.ValidationErrors{}

	if r.Summary.Set {
		switch {
		case r.Summary.Value == nil || *r.Summary.Value == "":
			errs.Add("summary", "The summary field is required.")
		case utf8.RuneCountInString(*r.Summary.Value) > 255:
			errs.Add("summary", "The summary field must not be greater than 255 characters.")
		}
	}
	if r.Type.Set && (r.Type.Value == nil || !domain.ValidIssueType(*r.Type.Value)) {
		errs.Add("type", "The selected type is invalid.")
	}
	if r.Status.Set && (r.Status.Value == nil || !domain.ValidIssueStatus(*r.Status.Value)) {
		errs.Add("status", "The selected status is invalid.")
	}
	if r.Priority.Set && (r.Priority.Value == nil || !domain.ValidIssuePriority(*r.Priority.Value)) {
		errs.Add("priority", "The selected priority is invalid.")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// List returns all issues for the project, newest first.
func (h *IssueHandler) List(c echo.Context) error {
	issues, err := h.issues.List(c.Request().Context(), c.Param("key"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, issues)
}

// Create stores a new issue with the caller as its creator.
func (h *IssueHandler) Create(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return domain.ErrUnauthenticated
	}

	var req createIssueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Malformed request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	in := service.CreateIssueInput{
		Summary:     req.Summary,
		Description: req.Description,
	}
	if req.Type != nil {
		t := domain.IssueType(*req.Type)
		in.Type = &t
	}
	if req.Status != nil {
		s := domain.IssueStatus(*req.Status)
		in.Status = &s
	}
	if req.Priority != nil {
		p := domain.IssuePriority(*req.Priority)
		in.Priority = &p
	}

	issue, err := h.issues.Create(c.Request().Context(), c.Param("key"), user.ID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, issue)
}

// Get returns a single issue scoped to the project key.
func (h *IssueHandler) Get(c echo.Context) error {
	issueID, err := issueIDParam(c)
	if err != nil {
		return err
	}

	issue, err := h.issues.Get(c.Request().Context(), c.Param("key"), issueID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, issue)
}

// Update applies a partial update and returns the updated issue.
func (h *IssueHandler) Update(c echo.Context) error {
	issueID, err := issueIDParam(c)
	if err != nil {
		return err
	}

	var req updateIssueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Malformed request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	in := service.UpdateIssueInput{
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
	}
	if req.Summary.Set {
		in.Summary = req.Summary.Value
	}
	if req.Type.Set {
		t := domain.IssueType(*req.Type.Value)
		in.Type = &t
	}
	if req.Status.Set {
		s := domain.IssueStatus(*req.Status.Value)
		in.Status = &s
	}
	if req.Priority.Set {
		p := domain.IssuePriority(*req.Priority.Value)
		in.Priority = &p
	}

	issue, err := h.issues.Update(c.Request().Context(), c.Param("key"), issueID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, issue)
}

// issueIDParam parses the numeric issue id; a non-numeric id is a 404, the
// same as an id that does not exist.
func issueIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid issue id", domain.ErrNotFound)
	}
	return id, nil
}
