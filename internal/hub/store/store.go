package store

import (
	"context"
	"errors"
	"time"

	"github.com/mydigitalspace/knowledgehub/internal/hub/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// RequiredTables is the schema surface the health endpoint checks for.
var RequiredTables = []string{
	"users",
	"notes",
	"rss_sources",
	"user_sessions",
	"user_categories",
	"workflows",
	"workflow_steps",
	"workflow_attachments",
}

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this. Sub-repositories keep concerns tidy and make it
// obvious which operations participate in a transaction.
type Store interface {
	Users() Users
	Notes() Notes
	Workflows() Workflows
	Categories() Categories
	RssSources() RssSources
	Sessions() Sessions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn returns
	// nil and rolling back otherwise. Prefer this over Tx directly.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error

	// TablePresence reports which of the named tables exist. Used by the
	// health endpoint to report feature availability.
	TablePresence(ctx context.Context, names []string) (map[string]bool, error)
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id regardless of active state.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetActiveUserByID returns a user by id where is_active.
	GetActiveUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail looks a user up by lowercased email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists on duplicate email.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateName mutates the display name and bumps updated_at.
	UpdateName(ctx context.Context, userID, name string) error

	// UpdatePermissions sets role and/or can_create_notes. Nil fields are
	// left untouched.
	UpdatePermissions(ctx context.Context, userID string, role *string, canCreateNotes *bool) error

	// ListActiveUsers returns active users, newest first.
	ListActiveUsers(ctx context.Context) ([]domain.User, error)

	// DeleteUser cascades to all owned rows (per schema).
	DeleteUser(ctx context.Context, userID string) error
}

type Notes interface {
	// GetNote returns a note by id owned by userID.
	GetNote(ctx context.Context, userID, id string) (domain.Note, error)

	// CreateNote inserts a new note.
	CreateNote(ctx context.Context, n domain.Note) error

	// UpdateNote applies the non-nil fields of upd to the note owned by
	// userID and bumps updated_at.
	UpdateNote(ctx context.Context, userID, id string, upd NoteUpdate) error

	// DeleteNote removes the note when owned by userID.
	DeleteNote(ctx context.Context, userID, id string) error

	// ListNotes returns a filtered page plus the total count matching the
	// same predicates.
	ListNotes(ctx context.Context, f NoteFilter) ([]domain.Note, int64, error)

	// GetNoteStats aggregates note counts for the stats endpoint. An empty
	// userID scopes to the shared (anonymous) pool.
	GetNoteStats(ctx context.Context, userID string) (domain.NoteStats, error)

	// ExistsBySourceURL reports whether the user already has a note
	// imported from sourceURL.
	ExistsBySourceURL(ctx context.Context, userID, sourceURL string) (bool, error)

	// CountByCategory returns how many of the user's notes use category.
	CountByCategory(ctx context.Context, userID, category string) (int64, error)

	// ListUsedCategories returns the distinct categories the user's notes
	// reference.
	ListUsedCategories(ctx context.Context, userID string) ([]string, error)

	// BulkUpdateCategory moves the given notes (when owned by userID) to
	// newCategory and returns the number of rows changed.
	BulkUpdateCategory(ctx context.Context, userID string, noteIDs []string, newCategory string) (int64, error)
}

type Workflows interface {
	// GetWorkflow returns the workflow row (steps and attachments are
	// loaded separately).
	GetWorkflow(ctx context.Context, userID, id string) (domain.Workflow, error)

	// CreateWorkflow inserts a new workflow row.
	CreateWorkflow(ctx context.Context, w domain.Workflow) error

	// UpdateWorkflow applies the non-nil fields of upd and bumps
	// updated_at.
	UpdateWorkflow(ctx context.Context, userID, id string, upd WorkflowUpdate) error

	// DeleteWorkflow removes the workflow; steps and attachments go with
	// it via FK cascade.
	DeleteWorkflow(ctx context.Context, userID, id string) error

	// ListWorkflows returns a filtered page plus the total count.
	ListWorkflows(ctx context.Context, f WorkflowFilter) ([]domain.Workflow, int64, error)

	// GetWorkflowStats aggregates status/priority/overdue counts.
	GetWorkflowStats(ctx context.Context, userID string) (domain.WorkflowStats, error)

	// CreateStep inserts a step for a workflow.
	CreateStep(ctx context.Context, s domain.WorkflowStep) error

	// GetStep returns a step scoped to its workflow.
	GetStep(ctx context.Context, workflowID, stepID string) (domain.WorkflowStep, error)

	// UpdateStep applies the non-nil fields of upd and bumps updated_at.
	UpdateStep(ctx context.Context, workflowID, stepID string, upd StepUpdate) error

	// DeleteStep removes a step.
	DeleteStep(ctx context.Context, workflowID, stepID string) error

	// ListSteps returns a workflow's steps ordered by step_order.
	ListSteps(ctx context.Context, workflowID string) ([]domain.WorkflowStep, error)

	// CreateAttachment inserts an attachment for a workflow.
	CreateAttachment(ctx context.Context, a domain.WorkflowAttachment) error

	// ListAttachments returns a workflow's attachments, oldest first.
	ListAttachments(ctx context.Context, workflowID string) ([]domain.WorkflowAttachment, error)
}

type Categories interface {
	// ListCategories returns the user's active custom categories by name.
	ListCategories(ctx context.Context, userID string) ([]domain.Category, error)

	// GetCategoryByName returns the user's active category with that name.
	GetCategoryByName(ctx context.Context, userID, name string) (domain.Category, error)

	// CreateCategory inserts a custom category. Returns ErrAlreadyExists
	// when the user already has one with that name.
	CreateCategory(ctx context.Context, c domain.Category) error

	// UpdateCategory mutates display name and/or description.
	UpdateCategory(ctx context.Context, userID, name string, displayName, description *string) error

	// DeleteCategory removes the user's category by name.
	DeleteCategory(ctx context.Context, userID, name string) error
}

type RssSources interface {
	// ListSources returns the user's sources, newest first.
	ListSources(ctx context.Context, userID string) ([]domain.RssSource, error)

	// GetSource returns a source by id owned by userID.
	GetSource(ctx context.Context, userID, id string) (domain.RssSource, error)

	// CreateSource inserts a new source.
	CreateSource(ctx context.Context, s domain.RssSource) error

	// DeleteSource removes the user's source.
	DeleteSource(ctx context.Context, userID, id string) error

	// UpdateLastFetched stamps last_fetched after an import pass.
	UpdateLastFetched(ctx context.Context, id string, at time.Time) error
}

type Sessions interface {
	// CreateSession records an issued token (id is the jti).
	CreateSession(ctx context.Context, s domain.UserSession) error

	// DeleteExpiredSessions is opportunistic housekeeping.
	DeleteExpiredSessions(ctx context.Context) error
}
