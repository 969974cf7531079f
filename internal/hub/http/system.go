package http

import (
	"net/http"
	"time"

	"github.com/mydigitalspace/knowledgehub/internal/hub/store"
	"github.com/mydigitalspace/knowledgehub/pkg/httpx"
)

// featureTables maps caller-facing features to the tables they need. The
// health endpoint reports a feature available only when all of its tables
// exist.
var featureTables = map[string][]string{
	"auth":       {"users", "user_sessions"},
	"notes":      {"notes"},
	"workflows":  {"workflows", "workflow_steps", "workflow_attachments"},
	"categories": {"user_categories"},
	"rss":        {"rss_sources"},
}

type HealthHandler struct {
	Store     store.Store
	Version   string
	StartTime time.Time
}

// ServeHTTP reports database health and per-feature availability: 200 when
// everything is reachable, 503 when the DB is down or tables are missing.
//
//	@Summary	Health check
//	@Tags		System
//	@Produce	json
//	@Success	200	{object}	Envelope	"Healthy"
//	@Failure	503	{object}	Envelope	"Database unreachable or schema incomplete"
//	@Router		/health [get].
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body := map[string]any{
		"status":  "healthy",
		"version": h.Version,
		"uptime":  time.Since(h.StartTime).Round(time.Second).String(),
	}

	if err := h.Store.Ping(ctx); err != nil {
		body["status"] = "degraded"
		body["database"] = "unreachable"
		httpx.WriteJSON(w, http.StatusServiceUnavailable, Envelope{Success: false, Data: body})
		return
	}
	body["database"] = "connected"

	presence, err := h.Store.TablePresence(ctx, store.RequiredTables)
	if err != nil {
		body["status"] = "degraded"
		httpx.WriteJSON(w, http.StatusServiceUnavailable, Envelope{Success: false, Data: body})
		return
	}

	features := make(map[string]bool, len(featureTables))
	healthy := true
	for feature, tables := range featureTables {
		available := true
		for _, table := range tables {
			if !presence[table] {
				available = false
				healthy = false
			}
		}
		features[feature] = available
	}
	body["features"] = features

	status := http.StatusOK
	if !healthy {
		body["status"] = "degraded"
		status = http.StatusServiceUnavailable
	}
	httpx.WriteJSON(w, status, Envelope{Success: healthy, Data: body})
}

// HandleCatalog lists the API surface for discovery.
//
//	@Summary	API catalog
//	@Tags		System
//	@Produce	json
//	@Success	200	{object}	Envelope
//	@Router		/api [get].
func HandleCatalog(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]any{
		"name": "KnowledgeHub API",
		"endpoints": map[string]string{
			"auth":      "/api/auth",
			"notes":     "/api/notes",
			"workflows": "/api/workflows",
			"content":   "/api/content",
			"admin":     "/api/admin",
			"health":    "/health",
			"docs":      "/swagger/",
		},
	})
}
