package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sumire/tracker/internal/service"
)

// ProjectHandler handles project endpoints.
type ProjectHandler struct {
	projects *service.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projects *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

type createProjectRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Key         string  `json:"key" validate:"required,max=20,project_key"`
	Description *string `json:"description"`
}

// List returns all projects ordered by name.
func (h *ProjectHandler) List(c echo.Context) error {
	projects, err := h.projects.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, projects)
}

// Create stores a new project. The key is uppercased before validation, so
// "test" is accepted and stored as "TEST".
func (h *ProjectHandler) Create(c echo.Context) error {
	var req createProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Malformed request body")
	}
	req.Key = strings.ToUpper(req.Key)
	if err := c.Validate(req); err != nil {
		return err
	}

	project, err := h.projects.Create(c.Request().Context(), service.CreateProjectInput{
		Name:        req.Name,
		Key:         req.Key,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, project)
}

// Get returns the project with the given key.
func (h *ProjectHandler) Get(c echo.Context) error {
	project, err := h.projects.GetByKey(c.Request().Context(), c.Param("key"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, project)
}
