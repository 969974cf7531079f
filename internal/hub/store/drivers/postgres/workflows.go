package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mydigitalspace/knowledgehub/internal/hub/domain"
	"github.com/mydigitalspace/knowledgehub/internal/hub/store"
)

type workflowsRepo struct {
	db dbtx
}

const workflowColumns = `id, user_id, title, description, category, priority, status, tags, due_date, completed_at, created_at, updated_at`

var workflowSortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"title":      "title",
	"due_date":   "due_date",
	"priority":   "priority",
	"status":     "status",
}

func scanWorkflow(row pgx.Row) (domain.Workflow, error) {
	var w domain.Workflow
	err := row.Scan(
		&w.ID, &w.UserID, &w.Title, &w.Description, &w.Category,
		&w.Priority, &w.Status, &w.Tags, &w.DueDate, &w.CompletedAt,
		&w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return domain.Workflow{}, err
	}
	w.Tags = emptyIfNil(w.Tags)
	return w, nil
}

func (r *workflowsRepo) GetWorkflow(ctx context.Context, userID, id string) (domain.Workflow, error) {
	w, err := scanWorkflow(r.db.QueryRow(ctx,
		`SELECT `+workflowColumns+` FROM workflows WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return domain.Workflow{}, mapNotFound(err)
	}
	return w, nil
}

func (r *workflowsRepo) CreateWorkflow(ctx context.Context, w domain.Workflow) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO workflows (id, user_id, title, description, category, priority, status, tags, due_date, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		w.ID, w.UserID, w.Title, w.Description, w.Category, w.Priority,
		w.Status, emptyIfNil(w.Tags), w.DueDate, w.CompletedAt,
		w.CreatedAt, w.UpdatedAt,
	)
	return err
}

func (r *workflowsRepo) UpdateWorkflow(ctx context.Context, userID, id string, upd store.WorkflowUpdate) error {
	var (
		sets []string
		a    argList
	)
	sets = append(sets, "updated_at = "+a.add(time.Now().UTC()))

	if upd.Title != nil {
		sets = append(sets, "title = "+a.add(*upd.Title))
	}
	if upd.Description != nil {
		sets = append(sets, "description = "+a.add(*upd.Description))
	}
	if upd.Category != nil {
		sets = append(sets, "category = "+a.add(*upd.Category))
	}
	if upd.Priority != nil {
		sets = append(sets, "priority = "+a.add(*upd.Priority))
	}
	if upd.Status != nil {
		sets = append(sets, "status = "+a.add(*upd.Status))
	}
	if upd.Tags != nil {
		sets = append(sets, "tags = "+a.add(emptyIfNil(*upd.Tags)))
	}
	if upd.SetDueDate {
		sets = append(sets, "due_date = "+a.add(upd.DueDate))
	}
	if upd.SetCompletedAt {
		sets = append(sets, "completed_at = "+a.add(upd.CompletedAt))
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE workflows SET `+strings.Join(sets, ", ")+
			` WHERE id = `+a.add(id)+` AND user_id = `+a.add(userID),
		a.args...)
	if err != nil {
		return err
	}
	return requireRowChanged(tag)
}

func (r *workflowsRepo) DeleteWorkflow(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM workflows WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return requireRowChanged(tag)
}

// workflowWhere assembles predicates in a fixed order: scope, status,
// priority, category, tag intersection, free-text search.
func workflowWhere(f store.WorkflowFilter, a *argList) string {
	where := []string{"user_id = " + a.add(f.UserID)}

	if f.Status != "" {
		where = append(where, "status = "+a.add(f.Status))
	}
	if f.Priority != "" {
		where = append(where, "priority = "+a.add(f.Priority))
	}
	if f.Category != "" {
		where = append(where, "category = "+a.add(f.Category))
	}

	if len(f.Tags) > 0 {
		where = append(where, "tags && "+a.add(f.Tags))
	}

	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		where = append(where, "(title ILIKE "+a.add(pattern)+" OR description ILIKE "+a.add(pattern)+")")
	}

	return strings.Join(where, " AND ")
}

func (r *workflowsRepo) ListWorkflows(ctx context.Context, f store.WorkflowFilter) ([]domain.Workflow, int64, error) {
	var count argList
	where := workflowWhere(f, &count)

	var total int64
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM workflows WHERE `+where, count.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortCol, ok := workflowSortColumns[f.Sort]
	if !ok {
		sortCol = "updated_at"
	}
	dir := "DESC"
	if f.Order == "asc" {
		dir = "ASC"
	}
	limit, offset := store.ClampPage(f.Limit, f.Offset)

	var page argList
	where = workflowWhere(f, &page)
	rows, err := r.db.Query(ctx,
		`SELECT `+workflowColumns+` FROM workflows WHERE `+where+
			` ORDER BY `+sortCol+` `+dir+
			` LIMIT `+page.add(limit)+` OFFSET `+page.add(offset),
		page.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	workflows := []domain.Workflow{}
	for rows.Next() {
		w, err := scanWorkflow(rows)
		if err != nil {
			return nil, 0, err
		}
		workflows = append(workflows, w)
	}
	return workflows, total, rows.Err()
}

func (r *workflowsRepo) GetWorkflowStats(ctx context.Context, userID string) (domain.WorkflowStats, error) {
	stats := domain.WorkflowStats{
		ByStatus:   make(map[string]int64),
		ByPriority: make(map[string]int64),
	}

	rows, err := r.db.Query(ctx,
		`SELECT status, COUNT(*) FROM workflows WHERE user_id = $1 GROUP BY status`, userID)
	if err != nil {
		return domain.WorkflowStats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return domain.WorkflowStats{}, err
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return domain.WorkflowStats{}, err
	}

	prioRows, err := r.db.Query(ctx,
		`SELECT priority, COUNT(*) FROM workflows WHERE user_id = $1 GROUP BY priority`, userID)
	if err != nil {
		return domain.WorkflowStats{}, err
	}
	defer prioRows.Close()
	for prioRows.Next() {
		var (
			priority string
			count    int64
		)
		if err := prioRows.Scan(&priority, &count); err != nil {
			return domain.WorkflowStats{}, err
		}
		stats.ByPriority[priority] = count
	}
	if err := prioRows.Err(); err != nil {
		return domain.WorkflowStats{}, err
	}

	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM workflows
		WHERE user_id = $1 AND due_date IS NOT NULL AND due_date < $2
		  AND status NOT IN ($3, $4)`,
		userID, time.Now().UTC(), domain.StatusCompleted, domain.StatusArchived,
	).Scan(&stats.Overdue)
	if err != nil {
		return domain.WorkflowStats{}, err
	}

	return stats, nil
}

const stepColumns = `id, workflow_id, title, description, step_order, status, due_date, assignee, completed_at, created_at, updated_at`

func scanStep(row pgx.Row) (domain.WorkflowStep, error) {
	var s domain.WorkflowStep
	err := row.Scan(
		&s.ID, &s.WorkflowID, &s.Title, &s.Description, &s.StepOrder,
		&s.Status, &s.DueDate, &s.Assignee, &s.CompletedAt,
		&s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func (r *workflowsRepo) CreateStep(ctx context.Context, s domain.WorkflowStep) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO workflow_steps (id, workflow_id, title, description, step_order, status, due_date, assignee, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		s.ID, s.WorkflowID, s.Title, s.Description, s.StepOrder, s.Status,
		s.DueDate, s.Assignee, s.CompletedAt, s.CreatedAt, s.UpdatedAt,
	)
	return err
}

func (r *workflowsRepo) GetStep(ctx context.Context, workflowID, stepID string) (domain.WorkflowStep, error) {
	s, err := scanStep(r.db.QueryRow(ctx,
		`SELECT `+stepColumns+` FROM workflow_steps WHERE id = $1 AND workflow_id = $2`,
		stepID, workflowID))
	if err != nil {
		return domain.WorkflowStep{}, mapNotFound(err)
	}
	return s, nil
}

func (r *workflowsRepo) UpdateStep(ctx context.Context, workflowID, stepID string, upd store.StepUpdate) error {
	var (
		sets []string
		a    argList
	)
	sets = append(sets, "updated_at = "+a.add(time.Now().UTC()))

	if upd.Title != nil {
		sets = append(sets, "title = "+a.add(*upd.Title))
	}
	if upd.Description != nil {
		sets = append(sets, "description = "+a.add(*upd.Description))
	}
	if upd.StepOrder != nil {
		sets = append(sets, "step_order = "+a.add(*upd.StepOrder))
	}
	if upd.Status != nil {
		sets = append(sets, "status = "+a.add(*upd.Status))
	}
	if upd.Assignee != nil {
		sets = append(sets, "assignee = "+a.add(*upd.Assignee))
	}
	if upd.SetDueDate {
		sets = append(sets, "due_date = "+a.add(upd.DueDate))
	}
	if upd.SetCompletedAt {
		sets = append(sets, "completed_at = "+a.add(upd.CompletedAt))
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE workflow_steps SET `+strings.Join(sets, ", ")+
			` WHERE id = `+a.add(stepID)+` AND workflow_id = `+a.add(workflowID),
		a.args...)
	if err != nil {
		return err
	}
	return requireRowChanged(tag)
}

func (r *workflowsRepo) DeleteStep(ctx context.Context, workflowID, stepID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM workflow_steps WHERE id = $1 AND workflow_id = $2`, stepID, workflowID)
	if err != nil {
		return err
	}
	return requireRowChanged(tag)
}

func (r *workflowsRepo) ListSteps(ctx context.Context, workflowID string) ([]domain.WorkflowStep, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+stepColumns+` FROM workflow_steps WHERE workflow_id = $1 ORDER BY step_order ASC, created_at ASC`,
		workflowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	steps := []domain.WorkflowStep{}
	for rows.Next() {
		s, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	return steps, rows.Err()
}

func (r *workflowsRepo) CreateAttachment(ctx context.Context, a domain.WorkflowAttachment) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO workflow_attachments (id, workflow_id, attachment_type, attachment_id, url, title, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.WorkflowID, a.AttachmentType, a.AttachmentID, a.URL,
		a.Title, a.Description, a.CreatedAt,
	)
	return err
}

func (r *workflowsRepo) ListAttachments(ctx context.Context, workflowID string) ([]domain.WorkflowAttachment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, workflow_id, attachment_type, attachment_id, url, title, description, created_at
		FROM workflow_attachments WHERE workflow_id = $1 ORDER BY created_at ASC`,
		workflowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attachments := []domain.WorkflowAttachment{}
	for rows.Next() {
		var a domain.WorkflowAttachment
		if err := rows.Scan(
			&a.ID, &a.WorkflowID, &a.AttachmentType, &a.AttachmentID, &a.URL,
			&a.Title, &a.Description, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}
