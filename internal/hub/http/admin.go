package http

import (
	"net/http"

	"github.com/mydigitalspace/knowledgehub/internal/hub/service"
)

type AdminHandler struct {
	AdminService *service.AdminService
}

type updatePermissionsRequest struct {
	Role           *string `json:"role"`
	CanCreateNotes *bool   `json:"canCreateNotes"`
}

// HandleListUsers lists all active users.
//
//	@Summary	List users
//	@Tags		Admin
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	Envelope{data=[]userView}
//	@Failure	403	{object}	Envelope	"Admin access required"
//	@Router		/api/admin/users [get].
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.AdminService.ListUsers(r.Context())
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusOK, viewUsers(users))
}

// HandleUpdatePermissions changes a user's role and/or note-creation
// capability.
//
//	@Summary	Update user permissions
//	@Tags		Admin
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"User id"
//	@Param		body	body		updatePermissionsRequest	true	"role and/or canCreateNotes"
//	@Success	200		{object}	Envelope{data=userView}
//	@Failure	400		{object}	Envelope
//	@Failure	404		{object}	Envelope
//	@Router		/api/admin/users/{id}/permissions [put].
func (h *AdminHandler) HandleUpdatePermissions(w http.ResponseWriter, r *http.Request) {
	var req updatePermissionsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	user, err := h.AdminService.UpdatePermissions(r.Context(), r.PathValue("id"), req.Role, req.CanCreateNotes)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusOK, viewUser(user))
}
