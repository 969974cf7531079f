package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

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

func scanWorkflow(row interface{ Scan(...any) error }) (domain.Workflow, error) {
	var (
		w                    domain.Workflow
		rawTags              string
		dueDate, completedAt sql.NullTime
	)
	err := row.Scan(
		&w.ID, &w.UserID, &w.Title, &w.Description, &w.Category,
		&w.Priority, &w.Status, &rawTags, &dueDate, &completedAt,
		&w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return domain.Workflow{}, err
	}
	if w.Tags, err = decodeTags(rawTags); err != nil {
		return domain.Workflow{}, err
	}
	w.DueDate = mapNullTimePtr(dueDate)
	w.CompletedAt = mapNullTimePtr(completedAt)
	return w, nil
}

func (r *workflowsRepo) GetWorkflow(ctx context.Context, userID, id string) (domain.Workflow, error) {
	w, err := scanWorkflow(r.db.QueryRowContext(ctx,
		`SELECT `+workflowColumns+` FROM workflows WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil {
		return domain.Workflow{}, mapNotFound(err)
	}
	return w, nil
}

func (r *workflowsRepo) CreateWorkflow(ctx context.Context, w domain.Workflow) error {
	tags, err := encodeTags(w.Tags)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO workflows (id, user_id, title, description, category, priority, status, tags, due_date, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.UserID, w.Title, w.Description, w.Category, w.Priority,
		w.Status, tags, mapOptionalTime(w.DueDate), mapOptionalTime(w.CompletedAt),
		w.CreatedAt, w.UpdatedAt,
	)
	return err
}

func (r *workflowsRepo) UpdateWorkflow(ctx context.Context, userID, id string, upd store.WorkflowUpdate) error {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if upd.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *upd.Category)
	}
	if upd.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, *upd.Priority)
	}
	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *upd.Status)
	}
	if upd.Tags != nil {
		tags, err := encodeTags(*upd.Tags)
		if err != nil {
			return err
		}
		sets = append(sets, "tags = ?")
		args = append(args, tags)
	}
	if upd.SetDueDate {
		sets = append(sets, "due_date = ?")
		args = append(args, mapOptionalTime(upd.DueDate))
	}
	if upd.SetCompletedAt {
		sets = append(sets, "completed_at = ?")
		args = append(args, mapOptionalTime(upd.CompletedAt))
	}
	args = append(args, id, userID)

	res, err := r.db.ExecContext(ctx,
		`UPDATE workflows SET `+strings.Join(sets, ", ")+` WHERE id = ? AND user_id = ?`, args...)
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}

func (r *workflowsRepo) DeleteWorkflow(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM workflows WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}

// workflowWhere assembles predicates in a fixed order: scope, status,
// priority, category, tag intersection, free-text search.
func workflowWhere(f store.WorkflowFilter) (string, []any) {
	where := []string{"user_id = ?"}
	args := []any{f.UserID}

	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.Priority != "" {
		where = append(where, "priority = ?")
		args = append(args, f.Priority)
	}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}

	if len(f.Tags) > 0 {
		per := make([]string, len(f.Tags))
		for i, tag := range f.Tags {
			per[i] = "EXISTS (SELECT 1 FROM json_each(workflows.tags) WHERE json_each.value = ?)"
			args = append(args, tag)
		}
		where = append(where, "("+strings.Join(per, " OR ")+")")
	}

	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		where = append(where, "(lower(title) LIKE ? OR lower(description) LIKE ?)")
		args = append(args, pattern, pattern)
	}

	return strings.Join(where, " AND "), args
}

func (r *workflowsRepo) ListWorkflows(ctx context.Context, f store.WorkflowFilter) ([]domain.Workflow, int64, error) {
	where, args := workflowWhere(f)

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM workflows WHERE `+where, args...).Scan(&total); err != nil {
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

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+workflowColumns+` FROM workflows WHERE `+where+
			` ORDER BY `+sortCol+` `+dir+` LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
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

	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM workflows WHERE user_id = ? GROUP BY status`, userID)
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

	prioRows, err := r.db.QueryContext(ctx,
		`SELECT priority, COUNT(*) FROM workflows WHERE user_id = ? GROUP BY priority`, userID)
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

	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM workflows
		WHERE user_id = ? AND due_date IS NOT NULL AND due_date < ?
		  AND status NOT IN (?, ?)`,
		userID, time.Now().UTC(), domain.StatusCompleted, domain.StatusArchived,
	).Scan(&stats.Overdue)
	if err != nil {
		return domain.WorkflowStats{}, err
	}

	return stats, nil
}

const stepColumns = `id, workflow_id, title, description, step_order, status, due_date, assignee, completed_at, created_at, updated_at`

func scanStep(row interface{ Scan(...any) error }) (domain.WorkflowStep, error) {
	var (
		s                    domain.WorkflowStep
		dueDate, completedAt sql.NullTime
	)
	err := row.Scan(
		&s.ID, &s.WorkflowID, &s.Title, &s.Description, &s.StepOrder,
		&s.Status, &dueDate, &s.Assignee, &completedAt,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return domain.WorkflowStep{}, err
	}
	s.DueDate = mapNullTimePtr(dueDate)
	s.CompletedAt = mapNullTimePtr(completedAt)
	return s, nil
}

func (r *workflowsRepo) CreateStep(ctx context.Context, s domain.WorkflowStep) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO workflow_steps (id, workflow_id, title, description, step_order, status, due_date, assignee, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.WorkflowID, s.Title, s.Description, s.StepOrder, s.Status,
		mapOptionalTime(s.DueDate), s.Assignee, mapOptionalTime(s.CompletedAt),
		s.CreatedAt, s.UpdatedAt,
	)
	return err
}

func (r *workflowsRepo) GetStep(ctx context.Context, workflowID, stepID string) (domain.WorkflowStep, error) {
	s, err := scanStep(r.db.QueryRowContext(ctx,
		`SELECT `+stepColumns+` FROM workflow_steps WHERE id = ? AND workflow_id = ?`,
		stepID, workflowID))
	if err != nil {
		return domain.WorkflowStep{}, mapNotFound(err)
	}
	return s, nil
}

func (r *workflowsRepo) UpdateStep(ctx context.Context, workflowID, stepID string, upd store.StepUpdate) error {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if upd.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.StepOrder != nil {
		sets = append(sets, "step_order = ?")
		args = append(args, *upd.StepOrder)
	}
	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *upd.Status)
	}
	if upd.Assignee != nil {
		sets = append(sets, "assignee = ?")
		args = append(args, *upd.Assignee)
	}
	if upd.SetDueDate {
		sets = append(sets, "due_date = ?")
		args = append(args, mapOptionalTime(upd.DueDate))
	}
	if upd.SetCompletedAt {
		sets = append(sets, "completed_at = ?")
		args = append(args, mapOptionalTime(upd.CompletedAt))
	}
	args = append(args, stepID, workflowID)

	res, err := r.db.ExecContext(ctx,
		`UPDATE workflow_steps SET `+strings.Join(sets, ", ")+` WHERE id = ? AND workflow_id = ?`, args...)
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}

func (r *workflowsRepo) DeleteStep(ctx context.Context, workflowID, stepID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM workflow_steps WHERE id = ? AND workflow_id = ?`, stepID, workflowID)
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}

func (r *workflowsRepo) ListSteps(ctx context.Context, workflowID string) ([]domain.WorkflowStep, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+stepColumns+` FROM workflow_steps WHERE workflow_id = ? ORDER BY step_order ASC, created_at ASC`,
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
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO workflow_attachments (id, workflow_id, attachment_type, attachment_id, url, title, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.WorkflowID, a.AttachmentType, mapOptionalString(a.AttachmentID),
		mapOptionalString(a.URL), a.Title, a.Description, a.CreatedAt,
	)
	return err
}

func (r *workflowsRepo) ListAttachments(ctx context.Context, workflowID string) ([]domain.WorkflowAttachment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, workflow_id, attachment_type, attachment_id, url, title, description, created_at
		FROM workflow_attachments WHERE workflow_id = ? ORDER BY created_at ASC`,
		workflowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attachments := []domain.WorkflowAttachment{}
	for rows.Next() {
		var (
			a                 domain.WorkflowAttachment
			attachmentID, url sql.NullString
		)
		if err := rows.Scan(
			&a.ID, &a.WorkflowID, &a.AttachmentType, &attachmentID, &url,
			&a.Title, &a.Description, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		a.AttachmentID = mapNullStringPtr(attachmentID)
		a.URL = mapNullStringPtr(url)
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}
