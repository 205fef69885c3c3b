package service

import (
	"context"
	"errors"

	"github.com/sumire/tracker/internal/domain"
)

// ProjectStore defines the project data access interface consumed by services.
type ProjectStore interface {
	List(ctx context.Context) ([]domain.Project, error)
	FindByKey(ctx context.Context, key string) (*domain.Project, error)
	Create(ctx context.Context, project domain.Project) (*domain.Project, error)
}

// ProjectService handles project operations.
type ProjectService struct {
	projects ProjectStore
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projects ProjectStore) *ProjectService {
	return &ProjectService{projects: projects}
}

// CreateProjectInput is the allowed field set for project creation. Key is
// expected to be normalized to uppercase and format-checked at the API
// boundary before it reaches here.
type CreateProjectInput struct {
	Name        string
	Key         string
	Description *string
}

// List returns all projects ordered by name.
func (s *ProjectService) List(ctx context.Context) ([]domain.Project, error) {
	return s.projects.List(ctx)
}

// Create stores a new project. A duplicate key surfaces as a field-level
// validation error, the same way any other invalid input does.
func (s *ProjectService) Create(ctx context.Context, in CreateProjectInput) (*domain.Project, error) {
	project, err := s.projects.Create(ctx, domain.Project{
		Name:        in.Name,
		Key:         in.Key,
		Description: in.Description,
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ValidationErrors{"key": {"The key has already been taken."}}
		}
		return nil, err
	}
	return project, nil
}

// GetByKey returns the project with the exact key, or domain.ErrNotFound.
func (s *ProjectService) GetByKey(ctx context.Context, key string) (*domain.Project, error) {
	return s.projects.FindByKey(ctx, key)
}
