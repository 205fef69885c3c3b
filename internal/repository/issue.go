package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sumire/tracker/internal/domain"
)

// IssueRepository handles issue data access operations. All lookups are
// scoped to a project: an issue id queried under the wrong project resolves
// to not found.
type IssueRepository struct {
	db *sqlx.DB
}

// NewIssueRepository creates a new IssueRepository.
func NewIssueRepository(db *sqlx.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

// issueRow carries an issue plus the joined creator/assignee columns.
type issueRow struct {
	domain.Issue
	CreatorName   string  `db:"creator_name"`
	CreatorEmail  string  `db:"creator_email"`
	AssigneeName  *string `db:"assignee_name"`
	AssigneeEmail *string `db:"assignee_email"`
}

func (row issueRow) toDomain() domain.Issue {
	issue := row.Issue
	issue.Creator = &domain.UserSummary{
		ID:    row.CreatedBy,
		Name:  row.CreatorName,
		Email: row.CreatorEmail,
	}
	if row.AssigneeID != nil && row.AssigneeName != nil && row.AssigneeEmail != nil {
		issue.Assignee = &domain.UserSummary{
			ID:    *row.AssigneeID,
			Name:  *row.AssigneeName,
			Email: *row.AssigneeEmail,
		}
	}
	return issue
}

const issueSelect = `
	SELECT i.id, i.project_id, i.key, i.summary, i.description,
	       i.type, i.status, i.priority, i.created_by, i.assignee_id,
	       i.created_at, i.updated_at,
	       c.name AS creator_name, c.email AS creator_email,
	       a.name AS assignee_name, a.email AS assignee_email
	FROM issues i
	JOIN users c ON c.id = i.created_by
	LEFT JOIN users a ON a.id = i.assignee_id`

// ListByProject returns all issues in a project with creator and assignee
// summaries attached, newest first.
func (r *IssueRepository) ListByProject(ctx context.Context, projectID int64) ([]domain.Issue, error) {
	rows := []issueRow{}
	err := r.db.SelectContext(ctx, &rows,
		issueSelect+` WHERE i.project_id = $1 ORDER BY i.id DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list issues for project %d: %w", projectID, err)
	}

	issues := make([]domain.Issue, 0, len(rows))
	for _, row := range rows {
		issues = append(issues, row.toDomain())
	}
	return issues, nil
}

// FindByID retrieves a single issue scoped to its project, with creator and
// assignee summaries attached.
func (r *IssueRepository) FindByID(ctx context.Context, projectID, issueID int64) (*domain.Issue, error) {
	var row issueRow
	err := r.db.GetContext(ctx, &row,
		issueSelect+` WHERE i.project_id = $1 AND i.id = $2`, projectID, issueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find issue %d in project %d: %w", issueID, projectID, err)
	}

	issue := row.toDomain()
	return &issue, nil
}

// CountByProject returns the number of issues in a project. The issue key
// sequence is derived from this count; see Create.
func (r *IssueRepository) CountByProject(ctx context.Context, projectID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM issues WHERE project_id = $1`, projectID)
	if err != nil {
		return 0, fmt.Errorf("count issues for project %d: %w", projectID, err)
	}
	return count, nil
}

// Create inserts a new issue. The key is computed by the caller from the
// issue count; two concurrent creates in the same project can compute the
// same key, in which case the (project_id, key) unique constraint rejects
// the loser and the error propagates unmapped. No retry is attempted.
func (r *IssueRepository) Create(ctx context.Context, issue domain.Issue) (*domain.Issue, error) {
	var result domain.Issue
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO issues (project_id, key, summary, description, type, status, priority, created_by, assignee_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, project_id, key, summary, description, type, status, priority,
		           created_by, assignee_id, created_at, updated_at`,
		issue.ProjectID, issue.Key, issue.Summary, issue.Description,
		issue.Type, issue.Status, issue.Priority, issue.CreatedBy, issue.AssigneeID,
	).StructScan(&result)
	if err != nil {
		return nil, fmt.Errorf("create issue %s: %w", issue.Key, err)
	}
	return &result, nil
}

// Update persists the mutable fields of an issue, scoped to its project.
func (r *IssueRepository) Update(ctx context.Context, issue domain.Issue) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE issues
		 SET summary = $1, description = $2, type = $3, status = $4, priority = $5,
		     assignee_id = $6, updated_at = NOW()
		 WHERE id = $7 AND project_id = $8`,
		issue.Summary, issue.Description, issue.Type, issue.Status, issue.Priority,
		issue.AssigneeID, issue.ID, issue.ProjectID)
	if err != nil {
		return fmt.Errorf("update issue %d: %w", issue.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update issue %d: %w", issue.ID, err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
