package httpx

import "context"

type ctxKey string

// CtxKeyUserID carries the authenticated user's id. Handlers and the
// user-keyed rate limiter read it; the auth middleware writes it.
const CtxKeyUserID ctxKey = "user_id"

// UserIDFromContext returns the authenticated user id, or "" when the
// request is anonymous.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}
