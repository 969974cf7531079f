package http

import (
	"time"

	"github.com/mydigitalspace/knowledgehub/internal/hub/domain"
)

// JSON views decouple the wire shape from the domain structs.

type userView struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Role           string    `json:"role"`
	CanCreateNotes bool      `json:"canCreateNotes"`
	CreatedAt      time.Time `json:"createdAt"`
}

func viewUser(u domain.User) userView {
	return userView{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		Role:           u.Role,
		CanCreateNotes: u.CanCreateNotes,
		CreatedAt:      u.CreatedAt,
	}
}

func viewUsers(users []domain.User) []userView {
	out := make([]userView, len(users))
	for i, u := range users {
		out[i] = viewUser(u)
	}
	return out
}

type noteView struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	SourceURL   *string   `json:"sourceUrl,omitempty"`
	SourceType  *string   `json:"sourceType,omitempty"`
	SourceTitle *string   `json:"sourceTitle,omitempty"`
	IsArchived  bool      `json:"isArchived"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func viewNote(n domain.Note) noteView {
	return noteView{
		ID:          n.ID,
		Title:       n.Title,
		Content:     n.Content,
		Category:    n.Category,
		Tags:        n.Tags,
		SourceURL:   n.SourceURL,
		SourceType:  n.SourceType,
		SourceTitle: n.SourceTitle,
		IsArchived:  n.IsArchived,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

func viewNotes(notes []domain.Note) []noteView {
	out := make([]noteView, len(notes))
	for i, n := range notes {
		out[i] = viewNote(n)
	}
	return out
}

type stepView struct {
	ID          string     `json:"id"`
	WorkflowID  string     `json:"workflowId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	StepOrder   int        `json:"stepOrder"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Assignee    string     `json:"assignee,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func viewStep(s domain.WorkflowStep) stepView {
	return stepView{
		ID:          s.ID,
		WorkflowID:  s.WorkflowID,
		Title:       s.Title,
		Description: s.Description,
		StepOrder:   s.StepOrder,
		Status:      s.Status,
		DueDate:     s.DueDate,
		Assignee:    s.Assignee,
		CompletedAt: s.CompletedAt,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

type attachmentView struct {
	ID             string    `json:"id"`
	WorkflowID     string    `json:"workflowId"`
	AttachmentType string    `json:"attachmentType"`
	AttachmentID   *string   `json:"attachmentId,omitempty"`
	URL            *string   `json:"url,omitempty"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

func viewAttachment(a domain.WorkflowAttachment) attachmentView {
	return attachmentView{
		ID:             a.ID,
		WorkflowID:     a.WorkflowID,
		AttachmentType: a.AttachmentType,
		AttachmentID:   a.AttachmentID,
		URL:            a.URL,
		Title:          a.Title,
		Description:    a.Description,
		CreatedAt:      a.CreatedAt,
	}
}

type workflowView struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	Tags        []string   `json:"tags"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	Steps       []stepView       `json:"steps,omitempty"`
	Attachments []attachmentView `json:"attachments,omitempty"`
}

func viewWorkflow(w domain.Workflow) workflowView {
	out := workflowView{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		Category:    w.Category,
		Priority:    w.Priority,
		Status:      w.Status,
		Tags:        w.Tags,
		DueDate:     w.DueDate,
		CompletedAt: w.CompletedAt,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
	for _, s := range w.Steps {
		out.Steps = append(out.Steps, viewStep(s))
	}
	for _, a := range w.Attachments {
		out.Attachments = append(out.Attachments, viewAttachment(a))
	}
	return out
}

func viewWorkflows(workflows []domain.Workflow) []workflowView {
	out := make([]workflowView, len(workflows))
	for i, w := range workflows {
		out[i] = viewWorkflow(w)
	}
	return out
}

type categoryView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func viewCategory(c domain.Category) categoryView {
	return categoryView{
		ID:          c.ID,
		Name:        c.Name,
		DisplayName: c.DisplayName,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type sourceView struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	URL         string     `json:"url"`
	Category    string     `json:"category"`
	IsActive    bool       `json:"isActive"`
	LastFetched *time.Time `json:"lastFetched,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func viewSource(s domain.RssSource) sourceView {
	return sourceView{
		ID:          s.ID,
		Name:        s.Name,
		URL:         s.URL,
		Category:    s.Category,
		IsActive:    s.IsActive,
		LastFetched: s.LastFetched,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

type tagCountView struct {
	Tag   string `json:"tag"`
	Count int64  `json:"count"`
}

type noteStatsView struct {
	Total       int64            `json:"total"`
	ByCategory  map[string]int64 `json:"byCategory"`
	Tags        []tagCountView   `json:"tags"`
	LastUpdated *time.Time       `json:"lastUpdated,omitempty"`
}

func viewNoteStats(s domain.NoteStats) noteStatsView {
	out := noteStatsView{
		Total:       s.Total,
		ByCategory:  s.ByCategory,
		LastUpdated: s.LastUpdated,
	}
	for _, tc := range s.TagCounts {
		out.Tags = append(out.Tags, tagCountView{Tag: tc.Tag, Count: tc.Count})
	}
	return out
}

type workflowStatsView struct {
	Total      int64            `json:"total"`
	ByStatus   map[string]int64 `json:"byStatus"`
	ByPriority map[string]int64 `json:"byPriority"`
	Overdue    int64            `json:"overdue"`
}

// pagination is the listing page descriptor returned next to every page.
type pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"hasMore"`
}

func paginate(total int64, limit, offset int) pagination {
	return pagination{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+limit) < total,
	}
}
