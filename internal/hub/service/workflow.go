package service

import (
	"context"
	"strings"
	"time"

	"github.com/mydigitalspace/knowledgehub/internal/hub/domain"
	"github.com/mydigitalspace/knowledgehub/internal/hub/store"
	"github.com/mydigitalspace/knowledgehub/pkg/idx"
)

// MaxNestedSteps bounds steps accepted inline on workflow creation.
const MaxNestedSteps = 50

type WorkflowService struct {
	Store store.Store
}

// WorkflowInput is the caller-supplied shape for creating a workflow.
type WorkflowInput struct {
	Title       string
	Description string
	Category    string
	Priority    string
	Tags        []string
	DueDate     *time.Time
	Steps       []StepInput
}

// StepInput is the caller-supplied shape for a workflow step.
type StepInput struct {
	Title       string
	Description string
	StepOrder   int
	DueDate     *time.Time
	Assignee    string
}

// List runs the filtered-listing engine for workflows.
func (s *WorkflowService) List(ctx context.Context, f store.WorkflowFilter) ([]domain.Workflow, int64, error) {
	return s.Store.Workflows().ListWorkflows(ctx, f)
}

// Get returns the workflow with its steps (by step_order) and attachments.
func (s *WorkflowService) Get(ctx context.Context, userID, id string) (domain.Workflow, error) {
	w, err := s.Store.Workflows().GetWorkflow(ctx, userID, id)
	if err != nil {
		return domain.Workflow{}, err
	}

	if w.Steps, err = s.Store.Workflows().ListSteps(ctx, id); err != nil {
		return domain.Workflow{}, err
	}
	if w.Attachments, err = s.Store.Workflows().ListAttachments(ctx, id); err != nil {
		return domain.Workflow{}, err
	}
	return w, nil
}

// Create inserts a workflow and any nested steps atomically: all rows land
// or none do.
func (s *WorkflowService) Create(ctx context.Context, userID string, in WorkflowInput) (domain.Workflow, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return domain.Workflow{}, invalidf("Title is required")
	}
	if in.Category == "" {
		in.Category = "projects"
	}
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}
	if !domain.ValidPriority(in.Priority) {
		return domain.Workflow{}, invalidf("Invalid priority %q", in.Priority)
	}
	if len(in.Steps) > MaxNestedSteps {
		return domain.Workflow{}, invalidf("A workflow can be created with at most %d steps", MaxNestedSteps)
	}
	for _, step := range in.Steps {
		if strings.TrimSpace(step.Title) == "" {
			return domain.Workflow{}, invalidf("Every step needs a title")
		}
	}

	now := time.Now().UTC()
	workflow := domain.Workflow{
		ID:          idx.New().String(),
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Priority:    in.Priority,
		Status:      domain.StatusActive,
		Tags:        domain.NormalizeTags(in.Tags),
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Workflows().CreateWorkflow(ctx, workflow); err != nil {
			return err
		}
		for i, in := range in.Steps {
			order := in.StepOrder
			if order == 0 {
				order = i + 1
			}
			step := domain.WorkflowStep{
				ID:          idx.New().String(),
				WorkflowID:  workflow.ID,
				Title:       strings.TrimSpace(in.Title),
				Description: in.Description,
				StepOrder:   order,
				Status:      domain.StepStatusPending,
				DueDate:     in.DueDate,
				Assignee:    in.Assignee,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := tx.Workflows().CreateStep(ctx, step); err != nil {
				return err
			}
			workflow.Steps = append(workflow.Steps, step)
		}
		return nil
	})
	if err != nil {
		return domain.Workflow{}, err
	}

	return workflow, nil
}

// Update applies a partial mutation. A status transition to completed
// stamps completed_at; a transition to any other status clears it.
func (s *WorkflowService) Update(ctx context.Context, userID, id string, upd store.WorkflowUpdate) (domain.Workflow, error) {
	if upd.Empty() {
		return domain.Workflow{}, ErrEmptyUpdate
	}

	if upd.Title != nil {
		trimmed := strings.TrimSpace(*upd.Title)
		if trimmed == "" {
			return domain.Workflow{}, invalidf("Title cannot be empty")
		}
		upd.Title = &trimmed
	}
	if upd.Priority != nil && !domain.ValidPriority(*upd.Priority) {
		return domain.Workflow{}, invalidf("Invalid priority %q", *upd.Priority)
	}
	if upd.Status != nil {
		if !domain.ValidWorkflowStatus(*upd.Status) {
			return domain.Workflow{}, invalidf("Invalid status %q", *upd.Status)
		}
		upd.SetCompletedAt = true
		if *upd.Status == domain.StatusCompleted {
			now := time.Now().UTC()
			upd.CompletedAt = &now
		} else {
			upd.CompletedAt = nil
		}
	}
	if upd.Tags != nil {
		normalized := domain.NormalizeTags(*upd.Tags)
		upd.Tags = &normalized
	}

	if err := s.Store.Workflows().UpdateWorkflow(ctx, userID, id, upd); err != nil {
		return domain.Workflow{}, err
	}
	return s.Get(ctx, userID, id)
}

// Delete removes a workflow; steps and attachments cascade.
func (s *WorkflowService) Delete(ctx context.Context, userID, id string) error {
	return s.Store.Workflows().DeleteWorkflow(ctx, userID, id)
}

// Stats aggregates status/priority/overdue counts.
func (s *WorkflowService) Stats(ctx context.Context, userID string) (domain.WorkflowStats, error) {
	return s.Store.Workflows().GetWorkflowStats(ctx, userID)
}

// AddStep appends a step to a workflow owned by the user.
func (s *WorkflowService) AddStep(ctx context.Context, userID, workflowID string, in StepInput) (domain.WorkflowStep, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return domain.WorkflowStep{}, invalidf("Title is required")
	}

	// Ownership check via the parent.
	if _, err := s.Store.Workflows().GetWorkflow(ctx, userID, workflowID); err != nil {
		return domain.WorkflowStep{}, err
	}

	order := in.StepOrder
	if order == 0 {
		steps, err := s.Store.Workflows().ListSteps(ctx, workflowID)
		if err != nil {
			return domain.WorkflowStep{}, err
		}
		order = len(steps) + 1
	}

	now := time.Now().UTC()
	step := domain.WorkflowStep{
		ID:          idx.New().String(),
		WorkflowID:  workflowID,
		Title:       in.Title,
		Description: in.Description,
		StepOrder:   order,
		Status:      domain.StepStatusPending,
		DueDate:     in.DueDate,
		Assignee:    in.Assignee,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Store.Workflows().CreateStep(ctx, step); err != nil {
		return domain.WorkflowStep{}, err
	}
	return step, nil
}

// UpdateStep applies a partial step mutation with the same completed_at
// stamping rules as workflows.
func (s *WorkflowService) UpdateStep(ctx context.Context, userID, workflowID, stepID string, upd store.StepUpdate) (domain.WorkflowStep, error) {
	if upd.Empty() {
		return domain.WorkflowStep{}, ErrEmptyUpdate
	}

	if _, err := s.Store.Workflows().GetWorkflow(ctx, userID, workflowID); err != nil {
		return domain.WorkflowStep{}, err
	}

	if upd.Status != nil {
		if !domain.ValidStepStatus(*upd.Status) {
			return domain.WorkflowStep{}, invalidf("Invalid status %q", *upd.Status)
		}
		upd.SetCompletedAt = true
		if *upd.Status == domain.StepStatusCompleted {
			now := time.Now().UTC()
			upd.CompletedAt = &now
		} else {
			upd.CompletedAt = nil
		}
	}

	if err := s.Store.Workflows().UpdateStep(ctx, workflowID, stepID, upd); err != nil {
		return domain.WorkflowStep{}, err
	}
	return s.Store.Workflows().GetStep(ctx, workflowID, stepID)
}

// DeleteStep removes a step, checking ownership via the parent workflow.
func (s *WorkflowService) DeleteStep(ctx context.Context, userID, workflowID, stepID string) error {
	if _, err := s.Store.Workflows().GetWorkflow(ctx, userID, workflowID); err != nil {
		return err
	}
	return s.Store.Workflows().DeleteStep(ctx, workflowID, stepID)
}

// AddAttachment attaches a note reference, URL, or file record to a
// workflow owned by the user.
func (s *WorkflowService) AddAttachment(ctx context.Context, userID, workflowID string, attachmentType string, attachmentID, url *string, title, description string) (domain.WorkflowAttachment, error) {
	if !domain.ValidAttachmentType(attachmentType) {
		return domain.WorkflowAttachment{}, invalidf("Invalid attachment type %q", attachmentType)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.WorkflowAttachment{}, invalidf("Title is required")
	}

	if _, err := s.Store.Workflows().GetWorkflow(ctx, userID, workflowID); err != nil {
		return domain.WorkflowAttachment{}, err
	}

	attachment := domain.WorkflowAttachment{
		ID:             idx.New().String(),
		WorkflowID:     workflowID,
		AttachmentType: attachmentType,
		AttachmentID:   attachmentID,
		URL:            url,
		Title:          title,
		Description:    description,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.Store.Workflows().CreateAttachment(ctx, attachment); err != nil {
		return domain.WorkflowAttachment{}, err
	}
	return attachment, nil
}
