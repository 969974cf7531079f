package domain

import "time"

// Workflow priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Workflow and step statuses.
const (
	StatusDraft     = "draft"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusArchived  = "archived"

	StepStatusPending    = "pending"
	StepStatusInProgress = "in-progress"
	StepStatusCompleted  = "completed"
)

// ValidPriority reports whether p is a known workflow priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ValidWorkflowStatus reports whether s is a known workflow status.
func ValidWorkflowStatus(s string) bool {
	switch s {
	case StatusDraft, StatusActive, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

// ValidStepStatus reports whether s is a known step status.
func ValidStepStatus(s string) bool {
	switch s {
	case StepStatusPending, StepStatusInProgress, StepStatusCompleted:
		return true
	}
	return false
}

type Workflow struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Category    string
	Priority    string
	Status      string
	Tags        []string
	DueDate     *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Populated on detail reads, ordered by StepOrder.
	Steps       []WorkflowStep
	Attachments []WorkflowAttachment
}

type WorkflowStep struct {
	ID          string
	WorkflowID  string
	Title       string
	Description string
	StepOrder   int
	Status      string
	DueDate     *time.Time
	Assignee    string
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Attachment types for workflow attachments.
const (
	AttachmentTypeNote = "note"
	AttachmentTypeURL  = "url"
	AttachmentTypeFile = "file"
)

// ValidAttachmentType reports whether t is a known attachment type.
func ValidAttachmentType(t string) bool {
	switch t {
	case AttachmentTypeNote, AttachmentTypeURL, AttachmentTypeFile:
		return true
	}
	return false
}

type WorkflowAttachment struct {
	ID             string
	WorkflowID     string
	AttachmentType string
	AttachmentID   *string
	URL            *string
	Title          string
	Description    string
	CreatedAt      time.Time
}

// WorkflowStats summarizes a user's workflows for the stats endpoint.
type WorkflowStats struct {
	Total      int64
	ByStatus   map[string]int64
	ByPriority map[string]int64
	Overdue    int64
}
