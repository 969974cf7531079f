package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/mydigitalspace/knowledgehub/internal/hub/service"
	"github.com/mydigitalspace/knowledgehub/internal/hub/store"
	"github.com/mydigitalspace/knowledgehub/pkg/httpx"
	"github.com/mydigitalspace/knowledgehub/pkg/slogx"
)

// Envelope is the response shape every endpoint uses.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`

	// Code carries a machine-readable error code for permission failures.
	Code string `json:"code,omitempty"`
}

func respondData(w http.ResponseWriter, status int, data any) {
	httpx.WriteJSON(w, status, Envelope{Success: true, Data: data})
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	httpx.WriteJSON(w, status, Envelope{Success: status < 400, Message: message})
}

func respondCoded(w http.ResponseWriter, status int, message, code string) {
	httpx.WriteJSON(w, status, Envelope{Success: false, Message: message, Code: code})
}

// respondError maps service and store errors onto the status taxonomy.
// Unexpected errors are logged server-side and surface as a generic 500.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		respondMessage(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, service.ErrEmptyUpdate):
		respondMessage(w, http.StatusBadRequest, "At least one field must be provided")
	case errors.Is(err, service.ErrInvalidCredentials):
		respondMessage(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, store.ErrNotFound):
		respondMessage(w, http.StatusNotFound, "Not found")
	case errors.Is(err, store.ErrAlreadyExists):
		respondMessage(w, http.StatusConflict, "Already exists")
	default:
		slogx.FromContext(ctx).Error("request failed", slog.Any("error", err))
		respondMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON reads a bounded JSON body into dst. Malformed bodies become a
// validation error so respondError turns them into a 400.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst); err != nil {
		return &service.ValidationError{Message: "Invalid JSON body"}
	}
	return nil
}
