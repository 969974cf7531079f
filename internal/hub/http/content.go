package http

import (
	"net/http"
	"strconv"

	"github.com/mydigitalspace/knowledgehub/internal/hub/service"
)

type ContentHandler struct {
	ContentService  *service.ContentService
	CategoryService *service.CategoryService
}

type createSourceRequest struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Category string `json:"category"`
}

type quickCaptureRequest struct {
	URL     string   `json:"url"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

type createCategoryRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
}

type updateCategoryRequest struct {
	DisplayName *string `json:"displayName"`
	Description *string `json:"description"`
}

type bulkUpdateRequest struct {
	NoteIDs     []string `json:"noteIds"`
	NewCategory string   `json:"newCategory"`
}

// HandleListSources lists the caller's RSS sources.
//
//	@Summary	List RSS sources
//	@Tags		Content
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	Envelope{data=[]sourceView}
//	@Router		/api/content/rss-sources [get].
func (h *ContentHandler) HandleListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.ContentService.ListSources(r.Context(), principalFrom(r.Context()).ID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	views := make([]sourceView, len(sources))
	for i, s := range sources {
		views[i] = viewSource(s)
	}
	respondData(w, http.StatusOK, views)
}

// HandleAddSource registers an RSS source. The feed must fetch and parse
// before the row is inserted.
//
//	@Summary	Add an RSS source
//	@Tags		Content
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		createSourceRequest	true	"Source fields"
//	@Success	201		{object}	Envelope{data=sourceView}
//	@Failure	400		{object}	Envelope	"Unreachable or unparseable feed"
//	@Router		/api/content/rss-sources [post].
func (h *ContentHandler) HandleAddSource(w http.ResponseWriter, r *http.Request) {
	var req createSourceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	source, err := h.ContentService.AddSource(r.Context(), principalFrom(r.Context()).ID,
		req.Name, req.URL, req.Category)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusCreated, viewSource(source))
}

// HandleDeleteSource removes an RSS source.
//
//	@Summary	Delete an RSS source
//	@Tags		Content
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"Source id"
//	@Success	200	{object}	Envelope
//	@Failure	404	{object}	Envelope
//	@Router		/api/content/rss-sources/{id} [delete].
func (h *ContentHandler) HandleDeleteSource(w http.ResponseWriter, r *http.Request) {
	if err := h.ContentService.DeleteSource(r.Context(), principalFrom(r.Context()).ID, r.PathValue("id")); err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Source deleted")
}

// HandleFetchRSS imports feed items from a source as notes.
//
//	@Summary	Import from an RSS source
//	@Description	Fetches the feed and imports up to min(limit, 50) items as notes, skipping items already imported for this user. The whole pass is transactional.
//	@Tags			Content
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id		path		string	true	"Source id"
//	@Param			limit	query		int		false	"Item cap"	default(50)
//	@Success		200		{object}	Envelope	"{imported, total}"
//	@Failure		400		{object}	Envelope	"Feed unreachable"
//	@Failure		404		{object}	Envelope
//	@Router			/api/content/fetch-rss/{id} [post].
func (h *ContentHandler) HandleFetchRSS(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.ContentService.ImportSource(r.Context(), principalFrom(r.Context()).ID,
		r.PathValue("id"), limit)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]int{
		"imported": result.Imported,
		"total":    result.Total,
	})
}

// HandleQuickCapture saves a URL as a note, scraping the page for missing
// title or content.
//
//	@Summary	Quick-capture a URL
//	@Tags		Content
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		quickCaptureRequest	true	"Capture fields; only url is required"
//	@Success	201		{object}	Envelope{data=noteView}
//	@Failure	400		{object}	Envelope
//	@Router		/api/content/quick-capture [post].
func (h *ContentHandler) HandleQuickCapture(w http.ResponseWriter, r *http.Request) {
	var req quickCaptureRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	note, err := h.ContentService.QuickCapture(r.Context(), principalFrom(r.Context()).ID,
		req.URL, req.Title, req.Content, req.Tags)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusCreated, viewNote(note))
}

// HandleListCategories returns the merged category catalog: predefined
// names, names referenced by notes, and the caller's custom categories.
//
//	@Summary	List categories
//	@Tags		Content
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	Envelope
//	@Router		/api/content/categories [get].
func (h *ContentHandler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	view, err := h.CategoryService.ListAll(r.Context(), principalFrom(r.Context()).ID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	custom := make([]categoryView, len(view.Custom))
	for i, c := range view.Custom {
		custom[i] = viewCategory(c)
	}
	respondData(w, http.StatusOK, map[string]any{
		"categories": view.Names,
		"custom":     custom,
	})
}

// HandleCreateCategory adds a custom category.
//
//	@Summary	Create a category
//	@Tags		Content
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		createCategoryRequest	true	"Category fields"
//	@Success	201		{object}	Envelope{data=categoryView}
//	@Failure	400		{object}	Envelope	"Bad name or predefined"
//	@Failure	409		{object}	Envelope	"Duplicate name"
//	@Router		/api/content/categories [post].
func (h *ContentHandler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	category, err := h.CategoryService.Create(r.Context(), principalFrom(r.Context()).ID,
		req.Name, req.DisplayName, req.Description)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusCreated, viewCategory(category))
}

// HandleUpdateCategory changes a custom category's display name or
// description.
//
//	@Summary	Update a category
//	@Tags		Content
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		name	path		string					true	"Category name"
//	@Param		body	body		updateCategoryRequest	true	"Fields to change; at least one"
//	@Success	200		{object}	Envelope{data=categoryView}
//	@Failure	400		{object}	Envelope
//	@Failure	404		{object}	Envelope
//	@Router		/api/content/categories/{name} [put].
func (h *ContentHandler) HandleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req updateCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	category, err := h.CategoryService.Update(r.Context(), principalFrom(r.Context()).ID,
		r.PathValue("name"), req.DisplayName, req.Description)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusOK, viewCategory(category))
}

// HandleDeleteCategory removes a custom category. Predefined categories and
// categories still used by notes are rejected.
//
//	@Summary	Delete a category
//	@Tags		Content
//	@Security	BearerAuth
//	@Produce	json
//	@Param		name	path		string	true	"Category name"
//	@Success	200		{object}	Envelope
//	@Failure	400		{object}	Envelope	"Predefined or still in use"
//	@Failure	404		{object}	Envelope
//	@Router		/api/content/categories/{name} [delete].
func (h *ContentHandler) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.CategoryService.Delete(r.Context(), principalFrom(r.Context()).ID, r.PathValue("name")); err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Category deleted")
}

// HandleBulkUpdateCategory moves a set of notes to a new category in one
// transaction.
//
//	@Summary	Bulk-move notes to a category
//	@Tags		Content
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		bulkUpdateRequest	true	"Note ids and the target category"
//	@Success	200		{object}	Envelope	"{updated}"
//	@Failure	400		{object}	Envelope
//	@Router		/api/content/categories/bulk-update [put].
func (h *ContentHandler) HandleBulkUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req bulkUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	updated, err := h.CategoryService.BulkUpdate(r.Context(), principalFrom(r.Context()).ID,
		req.NoteIDs, req.NewCategory)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]int64{"updated": updated})
}

// HandleTemplates returns the static content templates.
//
//	@Summary	List content templates
//	@Tags		Content
//	@Produce	json
//	@Success	200	{object}	Envelope{data=[]service.Template}
//	@Router		/api/content/templates [get].
func (h *ContentHandler) HandleTemplates(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, h.ContentService.Templates())
}
