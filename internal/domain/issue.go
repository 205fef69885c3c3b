package domain

import "time"

// IssueType classifies an issue.
type IssueType string

const (
	IssueTypeTask  IssueType = "task"
	IssueTypeBug   IssueType = "bug"
	IssueTypeStory IssueType = "story"
)

// IssueStatus is the board column an issue sits in. Any status is reachable
// from any other; there is no transition guard.
type IssueStatus string

const (
	IssueStatusTodo       IssueStatus = "todo"
	IssueStatusInProgress IssueStatus = "in_progress"
	IssueStatusDone       IssueStatus = "done"
)

// IssuePriority ranks an issue.
type IssuePriority string

const (
	IssuePriorityLow    IssuePriority = "low"
	IssuePriorityMedium IssuePriority = "medium"
	IssuePriorityHigh   IssuePriority = "high"
)

// Issue is a unit of work within a project. Key is assigned at creation as
// "<project key>-<sequence>" and never changes.
type Issue struct {
	ID          int64         `json:"id" db:"id"`
	ProjectID   int64         `json:"project_id" db:"project_id"`
	Key         string        `json:"key" db:"key"`
	Summary     string        `json:"summary" db:"summary"`
	Description *string       `json:"description" db:"description"`
	Type        IssueType     `json:"type" db:"type"`
	Status      IssueStatus   `json:"status" db:"status"`
	Priority    IssuePriority `json:"priority" db:"priority"`
	CreatedBy   int64         `json:"created_by" db:"created_by"`
	AssigneeID  *int64        `json:"assignee_id" db:"assignee_id"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`

	Creator  *UserSummary `json:"creator,omitempty" db:"-"`
	Assignee *UserSummary `json:"assignee,omitempty" db:"-"`
}

// ValidIssueType reports whether s is one of the issue type enum values.
func ValidIssueType(s string) bool {
	switch IssueType(s) {
	case IssueTypeTask, IssueTypeBug, IssueTypeStory:
		return true
	}
	return false
}

// ValidIssueStatus reports whether s is one of the status enum values.
func ValidIssueStatus(s string) bool {
	switch IssueStatus(s) {
	case IssueStatusTodo, IssueStatusInProgress, IssueStatusDone:
		return true
	}
	return false
}

// ValidIssuePriority reports whether s is one of the priority enum values.
func ValidIssuePriority(s string) bool {
	switch IssuePriority(s) {
	case IssuePriorityLow, IssuePriorityMedium, IssuePriorityHigh:
		return true
	}
	return false
}
