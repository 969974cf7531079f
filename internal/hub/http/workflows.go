package http

import (
	"net/http"
	"time"

	"github.com/mydigitalspace/knowledgehub/internal/hub/service"
	"github.com/mydigitalspace/knowledgehub/internal/hub/store"
)

type WorkflowsHandler struct {
	WorkflowService *service.WorkflowService
}

type stepRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StepOrder   int        `json:"stepOrder"`
	DueDate     *time.Time `json:"dueDate"`
	Assignee    string     `json:"assignee"`
}

func (req stepRequest) input() service.StepInput {
	return service.StepInput{
		Title:       req.Title,
		Description: req.Description,
		StepOrder:   req.StepOrder,
		DueDate:     req.DueDate,
		Assignee:    req.Assignee,
	}
}

type createWorkflowRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Priority    string        `json:"priority"`
	Tags        []string      `json:"tags"`
	DueDate     *time.Time    `json:"dueDate"`
	Steps       []stepRequest `json:"steps"`
}

type updateWorkflowRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Category    *string    `json:"category"`
	Priority    *string    `json:"priority"`
	Status      *string    `json:"status"`
	Tags        *[]string  `json:"tags"`
	DueDate     *time.Time `json:"dueDate"`

	// ClearDueDate removes the due date; a null dueDate alone means "leave
	// alone".
	ClearDueDate bool `json:"clearDueDate"`
}

type updateStepRequest struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	StepOrder    *int       `json:"stepOrder"`
	Status       *string    `json:"status"`
	Assignee     *string    `json:"assignee"`
	DueDate      *time.Time `json:"dueDate"`
	ClearDueDate bool       `json:"clearDueDate"`
}

type attachmentRequest struct {
	AttachmentType string  `json:"attachmentType"`
	AttachmentID   *string `json:"attachmentId"`
	URL            *string `json:"url"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
}

type workflowsPage struct {
	Workflows  []workflowView `json:"workflows"`
	Pagination pagination     `json:"pagination"`
}

// HandleList lists the caller's workflows with filters and pagination.
//
//	@Summary	List workflows
//	@Tags		Workflows
//	@Security	BearerAuth
//	@Produce	json
//	@Param		status		query		string	false	"draft | active | completed | archived"
//	@Param		priority	query		string	false	"low | medium | high | urgent"
//	@Param		category	query		string	false	"Exact category match"
//	@Param		tags		query		string	false	"Comma-separated tags"
//	@Param		search		query		string	false	"Case-insensitive substring on title and description"
//	@Param		sort		query		string	false	"created_at | updated_at | title | due_date | priority | status"	default(updated_at)
//	@Param		order		query		string	false	"asc | desc"	default(desc)
//	@Param		limit		query		int		false	"Page size, 1-100"	default(50)
//	@Param		offset		query		int		false	"Page start"	default(0)
//	@Success	200			{object}	Envelope{data=workflowsPage}
//	@Failure	400			{object}	Envelope
//	@Router		/api/workflows [get].
func (h *WorkflowsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parsePage(r)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	sort, order, err := parseSort(r, store.ValidWorkflowSort)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	q := r.URL.Query()
	f := store.WorkflowFilter{
		UserID:   principalFrom(r.Context()).ID,
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		Category: q.Get("category"),
		Tags:     splitTags(q.Get("tags")),
		Search:   q.Get("search"),
		Sort:     sort,
		Order:    order,
		Limit:    limit,
		Offset:   offset,
	}

	workflows, total, err := h.WorkflowService.List(r.Context(), f)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondData(w, http.StatusOK, workflowsPage{
		Workflows:  viewWorkflows(workflows),
		Pagination: paginate(total, f.Limit, f.Offset),
	})
}

// HandleStats summarizes the caller's workflows.
//
//	@Summary	Workflow statistics
//	@Tags		Workflows
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	Envelope{data=workflowStatsView}
//	@Router		/api/workflows/stats/summary [get].
func (h *WorkflowsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.WorkflowService.Stats(r.Context(), principalFrom(r.Context()).ID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusOK, workflowStatsView{
		Total:      stats.Total,
		ByStatus:   stats.ByStatus,
		ByPriority: stats.ByPriority,
		Overdue:    stats.Overdue,
	})
}

// HandleGet returns one workflow with its steps and attachments.
//
//	@Summary	Get a workflow
//	@Tags		Workflows
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"Workflow id"
//	@Success	200	{object}	Envelope{data=workflowView}
//	@Failure	404	{object}	Envelope
//	@Router		/api/workflows/{id} [get].
func (h *WorkflowsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	workflow, err := h.WorkflowService.Get(r.Context(), principalFrom(r.Context()).ID, r.PathValue("id"))
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusOK, viewWorkflow(workflow))
}

// HandleCreate creates a workflow, optionally with nested steps. The
// workflow and all steps land atomically.
//
//	@Summary	Create a workflow
//	@Tags		Workflows
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		createWorkflowRequest	true	"Workflow fields; up to 50 nested steps"
//	@Success	201		{object}	Envelope{data=workflowView}
//	@Failure	400		{object}	Envelope
//	@Router		/api/workflows [post].
func (h *WorkflowsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createWorkflowRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	in := service.WorkflowInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		Tags:        req.Tags,
		DueDate:     req.DueDate,
	}
	for _, step := range req.Steps {
		in.Steps = append(in.Steps, step.input())
	}

	workflow, err := h.WorkflowService.Create(r.Context(), principalFrom(r.Context()).ID, in)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusCreated, viewWorkflow(workflow))
}

// HandleUpdate applies a partial workflow update. Setting status to
// completed stamps completedAt; any other explicit status clears it.
//
//	@Summary	Update a workflow
//	@Tags		Workflows
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Workflow id"
//	@Param		body	body		updateWorkflowRequest	true	"Fields to change; at least one"
//	@Success	200		{object}	Envelope{data=workflowView}
//	@Failure	400		{object}	Envelope
//	@Failure	404		{object}	Envelope
//	@Router		/api/workflows/{id} [put].
func (h *WorkflowsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateWorkflowRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	upd := store.WorkflowUpdate{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		Status:      req.Status,
		Tags:        req.Tags,
	}
	if req.DueDate != nil || req.ClearDueDate {
		upd.SetDueDate = true
		if !req.ClearDueDate {
			upd.DueDate = req.DueDate
		}
	}

	workflow, err := h.WorkflowService.Update(r.Context(), principalFrom(r.Context()).ID, r.PathValue("id"), upd)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusOK, viewWorkflow(workflow))
}

// HandleDelete removes a workflow; steps and attachments go with it.
//
//	@Summary	Delete a workflow
//	@Tags		Workflows
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"Workflow id"
//	@Success	200	{object}	Envelope
//	@Failure	404	{object}	Envelope
//	@Router		/api/workflows/{id} [delete].
func (h *WorkflowsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.WorkflowService.Delete(r.Context(), principalFrom(r.Context()).ID, r.PathValue("id")); err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Workflow deleted")
}

// HandleAddStep appends a step to a workflow.
//
//	@Summary	Add a workflow step
//	@Tags		Workflows
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string		true	"Workflow id"
//	@Param		body	body		stepRequest	true	"Step fields"
//	@Success	201		{object}	Envelope{data=stepView}
//	@Failure	404		{object}	Envelope	"Workflow absent or not owned"
//	@Router		/api/workflows/{id}/steps [post].
func (h *WorkflowsHandler) HandleAddStep(w http.ResponseWriter, r *http.Request) {
	var req stepRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	step, err := h.WorkflowService.AddStep(r.Context(), principalFrom(r.Context()).ID, r.PathValue("id"), req.input())
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusCreated, viewStep(step))
}

// HandleUpdateStep applies a partial step update with the same completedAt
// stamping rules as workflows.
//
//	@Summary	Update a workflow step
//	@Tags		Workflows
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Workflow id"
//	@Param		stepID	path		string				true	"Step id"
//	@Param		body	body		updateStepRequest	true	"Fields to change; at least one"
//	@Success	200		{object}	Envelope{data=stepView}
//	@Failure	404		{object}	Envelope
//	@Router		/api/workflows/{id}/steps/{stepID} [put].
func (h *WorkflowsHandler) HandleUpdateStep(w http.ResponseWriter, r *http.Request) {
	var req updateStepRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	upd := store.StepUpdate{
		Title:       req.Title,
		Description: req.Description,
		StepOrder:   req.StepOrder,
		Status:      req.Status,
		Assignee:    req.Assignee,
	}
	if req.DueDate != nil || req.ClearDueDate {
		upd.SetDueDate = true
		if !req.ClearDueDate {
			upd.DueDate = req.DueDate
		}
	}

	step, err := h.WorkflowService.UpdateStep(r.Context(), principalFrom(r.Context()).ID,
		r.PathValue("id"), r.PathValue("stepID"), upd)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusOK, viewStep(step))
}

// HandleDeleteStep removes a step.
//
//	@Summary	Delete a workflow step
//	@Tags		Workflows
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id		path		string	true	"Workflow id"
//	@Param		stepID	path		string	true	"Step id"
//	@Success	200		{object}	Envelope
//	@Failure	404		{object}	Envelope
//	@Router		/api/workflows/{id}/steps/{stepID} [delete].
func (h *WorkflowsHandler) HandleDeleteStep(w http.ResponseWriter, r *http.Request) {
	err := h.WorkflowService.DeleteStep(r.Context(), principalFrom(r.Context()).ID,
		r.PathValue("id"), r.PathValue("stepID"))
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Step deleted")
}

// HandleAddAttachment attaches a note reference, URL, or file record.
//
//	@Summary	Add a workflow attachment
//	@Tags		Workflows
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Workflow id"
//	@Param		body	body		attachmentRequest	true	"Attachment fields"
//	@Success	201		{object}	Envelope{data=attachmentView}
//	@Failure	400		{object}	Envelope
//	@Failure	404		{object}	Envelope
//	@Router		/api/workflows/{id}/attachments [post].
func (h *WorkflowsHandler) HandleAddAttachment(w http.ResponseWriter, r *http.Request) {
	var req attachmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	attachment, err := h.WorkflowService.AddAttachment(r.Context(), principalFrom(r.Context()).ID,
		r.PathValue("id"), req.AttachmentType, req.AttachmentID, req.URL, req.Title, req.Description)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusCreated, viewAttachment(attachment))
}
