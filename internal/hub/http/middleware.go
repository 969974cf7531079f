package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mydigitalspace/knowledgehub/internal/hub/domain"
	"github.com/mydigitalspace/knowledgehub/internal/hub/store"
	"github.com/mydigitalspace/knowledgehub/pkg/httpx"
	"github.com/mydigitalspace/knowledgehub/pkg/jwtx"
)

// principal is the authenticated caller attached to the request context. A
// zero principal means the request is anonymous.
type principal struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	CanCreateNotes bool   `json:"canCreateNotes"`
}

func (p principal) anonymous() bool { return p.ID == "" }

func (p principal) canMutateNotes() bool {
	return p.Role == domain.RoleAdmin || p.CanCreateNotes
}

type principalCtxKey struct{}

func principalFrom(ctx context.Context) principal {
	p, _ := ctx.Value(principalCtxKey{}).(principal)
	return p
}

func withPrincipal(ctx context.Context, p principal) context.Context {
	ctx = context.WithValue(ctx, principalCtxKey{}, p)
	// The user-keyed rate limiter reads this.
	return context.WithValue(ctx, httpx.CtxKeyUserID, p.ID)
}

// AuthGate builds the authentication middlewares. The strict variant rejects
// with 401; the permissive one proceeds anonymous so public read endpoints
// can serve the shared pool.
type AuthGate struct {
	Verifier jwtx.Verifier
	Store    store.Store
}

// resolve verifies the bearer token and loads the active user behind it. The
// returned message is caller-facing and empty on success.
func (g *AuthGate) resolve(r *http.Request) (principal, string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return principal{}, "Access token required"
	}

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return principal{}, "Access token required"
	}

	claims, err := g.Verifier.Verify(token)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return principal{}, "Token expired"
		}
		return principal{}, "Invalid token"
	}

	user, err := g.Store.Users().GetActiveUserByID(r.Context(), claims.Subject)
	if err != nil {
		return principal{}, "Invalid token"
	}

	return principal{
		ID:             user.ID,
		Email:          user.Email,
		Name:           user.Name,
		Role:           user.Role,
		CanCreateNotes: user.CanCreateNotes,
	}, ""
}

// Require rejects unauthenticated requests with 401.
func (g *AuthGate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, reason := g.resolve(r)
		if reason != "" {
			respondMessage(w, http.StatusUnauthorized, reason)
			return
		}
		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
	})
}

// Permissive attaches the principal when the token checks out and proceeds
// anonymously otherwise.
func (g *AuthGate) Permissive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, reason := g.resolve(r)
		if reason != "" {
			p = principal{}
		}
		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
	})
}

// RequireNoteCreation gates note-mutating endpoints on the per-user
// capability. Chain it after Require.
func RequireNoteCreation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !principalFrom(r.Context()).canMutateNotes() {
			respondCoded(w, http.StatusForbidden,
				"You do not have permission to create or modify notes",
				"INSUFFICIENT_PERMISSIONS")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin gates admin endpoints. Chain it after Require.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if principalFrom(r.Context()).Role != domain.RoleAdmin {
			respondMessage(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
