package http

import (
	"net/http"

	"github.com/mydigitalspace/knowledgehub/internal/hub/service"
	"github.com/mydigitalspace/knowledgehub/pkg/httpx"
)

type AuthHandler struct {
	AuthService *service.AuthService
}

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

// HandleRegister creates a new account.
//
//	@Summary		Register a new user
//	@Description	Creates an account and returns an access token. New users are editors who may create notes.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		registerRequest	true	"Registration details"
//	@Success		201		{object}	Envelope{data=authResponse}
//	@Failure		400		{object}	Envelope	"Validation failure"
//	@Failure		409		{object}	Envelope	"Email already registered"
//	@Router			/api/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	user, token, err := h.AuthService.Register(r.Context(), req.Name, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	httpx.NoCache(w)
	respondData(w, http.StatusCreated, authResponse{Token: token, User: viewUser(user)})
}

// HandleLogin verifies credentials and issues an access token.
//
//	@Summary		Log in
//	@Description	Verifies email and password and returns an access token. Unknown accounts, disabled accounts, and wrong passwords all produce the same 401.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		loginRequest	true	"Credentials"
//	@Success		200		{object}	Envelope{data=authResponse}
//	@Failure		401		{object}	Envelope	"Invalid credentials"
//	@Router			/api/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	user, token, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	httpx.NoCache(w)
	respondData(w, http.StatusOK, authResponse{Token: token, User: viewUser(user)})
}

// HandleGetProfile returns the authenticated user's profile.
//
//	@Summary	Get the current profile
//	@Tags		Auth
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	Envelope{data=userView}
//	@Failure	401	{object}	Envelope
//	@Router		/api/auth/profile [get].
func (h *AuthHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.AuthService.GetProfile(r.Context(), principalFrom(r.Context()).ID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusOK, viewUser(user))
}

type updateProfileRequest struct {
	Name string `json:"name"`
}

// HandleUpdateProfile changes the display name.
//
//	@Summary	Update the current profile
//	@Tags		Auth
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		updateProfileRequest	true	"Profile fields"
//	@Success	200		{object}	Envelope{data=userView}
//	@Failure	400		{object}	Envelope
//	@Router		/api/auth/profile [put].
func (h *AuthHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	user, err := h.AuthService.UpdateProfile(r.Context(), principalFrom(r.Context()).ID, req.Name)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusOK, viewUser(user))
}

// HandleVerify echoes token validity back to the caller. Reaching the
// handler at all means the strict auth gate accepted the token.
//
//	@Summary	Verify the access token
//	@Tags		Auth
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	Envelope
//	@Failure	401	{object}	Envelope
//	@Router		/api/auth/verify [get].
func (h *AuthHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]any{
		"valid": true,
		"user":  principalFrom(r.Context()),
	})
}
