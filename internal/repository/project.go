package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sumire/tracker/internal/domain"
)

// ProjectRepository handles project data access operations.
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// List returns all projects ordered by name.
func (r *ProjectRepository) List(ctx context.Context) ([]domain.Project, error) {
	projects := []domain.Project{}
	err := r.db.SelectContext(ctx, &projects,
		`SELECT id, name, key, description, created_at, updated_at
		 FROM projects ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// FindByKey retrieves a project by its exact key.
func (r *ProjectRepository) FindByKey(ctx context.Context, key string) (*domain.Project, error) {
	var project domain.Project
	err := r.db.GetContext(ctx, &project,
		`SELECT id, name, key, description, created_at, updated_at
		 FROM projects WHERE key = $1`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find project by key %s: %w", key, err)
	}
	return &project, nil
}

// Create inserts a new project. A duplicate key surfaces as domain.ErrConflict.
func (r *ProjectRepository) Create(ctx context.Context, project domain.Project) (*domain.Project, error) {
	var result domain.Project
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO projects (name, key, description)
		 VALUES ($1, $2, $3)
		 RETURNING id, name, key, description, created_at, updated_at`,
		project.Name, project.Key, project.Description,
	).StructScan(&result)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("create project: %w", err)
	}
	return &result, nil
}
