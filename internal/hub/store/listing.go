package store

import (
	"slices"
	"time"
)

// Pagination bounds shared by all listing endpoints.
const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// Sort allow-lists. Drivers map these names to columns; raw client input
// never reaches SQL identifiers.
var (
	NoteSortFields     = []string{"created_at", "updated_at", "title"}
	WorkflowSortFields = []string{"created_at", "updated_at", "title", "due_date", "priority", "status"}
)

// ValidNoteSort reports whether field is an allowed note sort column.
func ValidNoteSort(field string) bool {
	return slices.Contains(NoteSortFields, field)
}

// ValidWorkflowSort reports whether field is an allowed workflow sort column.
func ValidWorkflowSort(field string) bool {
	return slices.Contains(WorkflowSortFields, field)
}

// ValidOrder reports whether dir is "asc" or "desc".
func ValidOrder(dir string) bool {
	return dir == "asc" || dir == "desc"
}

// ClampPage normalizes limit and offset to their allowed ranges.
func ClampPage(limit, offset int) (int, int) {
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// NoteFilter is the closed set of predicates for listing notes. Predicates
// are applied by drivers in a fixed order: scope, archived, category, tag
// intersection, free-text search.
type NoteFilter struct {
	// UserID scopes the listing to one owner. Empty means the shared
	// anonymous pool (all non-archived notes).
	UserID string

	// Category matches exactly when non-empty.
	Category string

	// Tags match when the note carries at least one of them.
	Tags []string

	// Search is a case-insensitive substring match on title and content.
	Search string

	// Archived selects archived rather than live notes. Ignored (forced
	// false) for the anonymous pool.
	Archived bool

	Sort   string // one of NoteSortFields, default "updated_at"
	Order  string // "asc" or "desc", default "desc"
	Limit  int
	Offset int
}

// WorkflowFilter is the closed set of predicates for listing workflows.
type WorkflowFilter struct {
	UserID   string // required
	Status   string
	Priority string
	Category string
	Tags     []string
	// Search is a case-insensitive substring match on title and
	// description.
	Search string

	Sort   string // one of WorkflowSortFields, default "updated_at"
	Order  string // "asc" or "desc", default "desc"
	Limit  int
	Offset int
}

// NoteUpdate is a partial note mutation. Nil fields are left untouched;
// updated_at is always bumped.
type NoteUpdate struct {
	Title      *string
	Content    *string
	Category   *string
	Tags       *[]string
	IsArchived *bool
}

// Empty reports whether the update would touch nothing.
func (u NoteUpdate) Empty() bool {
	return u.Title == nil && u.Content == nil && u.Category == nil &&
		u.Tags == nil && u.IsArchived == nil
}

// WorkflowUpdate is a partial workflow mutation. SetDueDate and
// SetCompletedAt distinguish "leave alone" from "write NULL".
type WorkflowUpdate struct {
	Title       *string
	Description *string
	Category    *string
	Priority    *string
	Status      *string
	Tags        *[]string

	SetDueDate bool
	DueDate    *time.Time

	SetCompletedAt bool
	CompletedAt    *time.Time
}

// Empty reports whether the update would touch nothing.
func (u WorkflowUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Category == nil &&
		u.Priority == nil && u.Status == nil && u.Tags == nil &&
		!u.SetDueDate && !u.SetCompletedAt
}

// StepUpdate is a partial workflow-step mutation.
type StepUpdate struct {
	Title       *string
	Description *string
	StepOrder   *int
	Status      *string
	Assignee    *string

	SetDueDate bool
	DueDate    *time.Time

	SetCompletedAt bool
	CompletedAt    *time.Time
}

// Empty reports whether the update would touch nothing.
func (u StepUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.StepOrder == nil &&
		u.Status == nil && u.Assignee == nil && !u.SetDueDate && !u.SetCompletedAt
}
