package http

import (
	"net/http"

	"github.com/mydigitalspace/knowledgehub/internal/hub/service"
	"github.com/mydigitalspace/knowledgehub/internal/hub/store"
)

type NotesHandler struct {
	NoteService *service.NoteService
}

type createNoteRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

type updateNoteRequest struct {
	Title      *string   `json:"title"`
	Content    *string   `json:"content"`
	Category   *string   `json:"category"`
	Tags       *[]string `json:"tags"`
	IsArchived *bool     `json:"isArchived"`
}

type notesPage struct {
	Notes      []noteView `json:"notes"`
	Pagination pagination `json:"pagination"`
}

// HandleList lists notes with filters and pagination. Authenticated callers
// see their own notes; anonymous callers see the shared non-archived pool.
//
//	@Summary	List notes
//	@Tags		Notes
//	@Produce	json
//	@Param		category	query		string	false	"Exact category match"
//	@Param		tags		query		string	false	"Comma-separated tags; a note matches when it carries any of them"
//	@Param		search		query		string	false	"Case-insensitive substring on title and content"
//	@Param		archived	query		bool	false	"List archived instead of live notes (authenticated only)"
//	@Param		sort		query		string	false	"created_at | updated_at | title"	default(updated_at)
//	@Param		order		query		string	false	"asc | desc"						default(desc)
//	@Param		limit		query		int		false	"Page size, 1-100"					default(50)
//	@Param		offset		query		int		false	"Page start"						default(0)
//	@Success	200			{object}	Envelope{data=notesPage}
//	@Failure	400			{object}	Envelope
//	@Router		/api/notes [get].
func (h *NotesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	f, err := noteFilterFromQuery(r)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	notes, total, err := h.NoteService.List(r.Context(), f)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondData(w, http.StatusOK, notesPage{
		Notes:      viewNotes(notes),
		Pagination: paginate(total, f.Limit, f.Offset),
	})
}

func noteFilterFromQuery(r *http.Request) (store.NoteFilter, error) {
	limit, offset, err := parsePage(r)
	if err != nil {
		return store.NoteFilter{}, err
	}
	sort, order, err := parseSort(r, store.ValidNoteSort)
	if err != nil {
		return store.NoteFilter{}, err
	}

	q := r.URL.Query()
	p := principalFrom(r.Context())
	return store.NoteFilter{
		UserID:   p.ID,
		Category: q.Get("category"),
		Tags:     splitTags(q.Get("tags")),
		Search:   q.Get("search"),
		Archived: !p.anonymous() && q.Get("archived") == "true",
		Sort:     sort,
		Order:    order,
		Limit:    limit,
		Offset:   offset,
	}, nil
}

// HandleStats summarizes the caller's notes (or the shared pool when
// anonymous).
//
//	@Summary	Note statistics
//	@Tags		Notes
//	@Produce	json
//	@Success	200	{object}	Envelope{data=noteStatsView}
//	@Router		/api/notes/stats/summary [get].
func (h *NotesHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.NoteService.Stats(r.Context(), principalFrom(r.Context()).ID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusOK, viewNoteStats(stats))
}

// HandleGet returns one note.
//
//	@Summary	Get a note
//	@Tags		Notes
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"Note id"
//	@Success	200	{object}	Envelope{data=noteView}
//	@Failure	404	{object}	Envelope	"Absent or not owned"
//	@Router		/api/notes/{id} [get].
func (h *NotesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	note, err := h.NoteService.Get(r.Context(), principalFrom(r.Context()).ID, r.PathValue("id"))
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusOK, viewNote(note))
}

// HandleGetHTML returns the note with its content rendered from Markdown.
//
//	@Summary	Get a note as HTML
//	@Tags		Notes
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"Note id"
//	@Success	200	{object}	Envelope
//	@Failure	404	{object}	Envelope
//	@Router		/api/notes/{id}/html [get].
func (h *NotesHandler) HandleGetHTML(w http.ResponseWriter, r *http.Request) {
	note, html, err := h.NoteService.GetHTML(r.Context(), principalFrom(r.Context()).ID, r.PathValue("id"))
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{
		"note": viewNote(note),
		"html": html,
	})
}

// HandleCreate creates a note.
//
//	@Summary	Create a note
//	@Tags		Notes
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		createNoteRequest	true	"Note fields"
//	@Success	201		{object}	Envelope{data=noteView}
//	@Failure	400		{object}	Envelope
//	@Failure	403		{object}	Envelope	"Caller may not create notes"
//	@Router		/api/notes [post].
func (h *NotesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	note, err := h.NoteService.Create(r.Context(), principalFrom(r.Context()).ID, service.NoteInput{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Tags:     req.Tags,
	})
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusCreated, viewNote(note))
}

// HandleUpdate applies a partial note update.
//
//	@Summary	Update a note
//	@Tags		Notes
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Note id"
//	@Param		body	body		updateNoteRequest	true	"Fields to change; at least one"
//	@Success	200		{object}	Envelope{data=noteView}
//	@Failure	400		{object}	Envelope
//	@Failure	404		{object}	Envelope
//	@Router		/api/notes/{id} [put].
func (h *NotesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	note, err := h.NoteService.Update(r.Context(), principalFrom(r.Context()).ID, r.PathValue("id"), store.NoteUpdate{
		Title:      req.Title,
		Content:    req.Content,
		Category:   req.Category,
		Tags:       req.Tags,
		IsArchived: req.IsArchived,
	})
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusOK, viewNote(note))
}

// HandleDelete removes a note.
//
//	@Summary	Delete a note
//	@Tags		Notes
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"Note id"
//	@Success	200	{object}	Envelope
//	@Failure	404	{object}	Envelope
//	@Router		/api/notes/{id} [delete].
func (h *NotesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.NoteService.Delete(r.Context(), principalFrom(r.Context()).ID, r.PathValue("id")); err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Note deleted")
}

// HandleDuplicate copies a note.
//
//	@Summary	Duplicate a note
//	@Tags		Notes
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"Note id"
//	@Success	201	{object}	Envelope{data=noteView}
//	@Failure	404	{object}	Envelope
//	@Router		/api/notes/{id}/duplicate [post].
func (h *NotesHandler) HandleDuplicate(w http.ResponseWriter, r *http.Request) {
	note, err := h.NoteService.Duplicate(r.Context(), principalFrom(r.Context()).ID, r.PathValue("id"))
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusCreated, viewNote(note))
}
