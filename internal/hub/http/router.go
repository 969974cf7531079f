package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/mydigitalspace/knowledgehub/internal/hub/service"
	"github.com/mydigitalspace/knowledgehub/internal/hub/store"
	"github.com/mydigitalspace/knowledgehub/pkg/httpx"
	"github.com/mydigitalspace/knowledgehub/pkg/jwtx"
	"github.com/mydigitalspace/knowledgehub/pkg/slogx"

	_ "github.com/mydigitalspace/knowledgehub/api" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	gate         *AuthGate
	store        store.Store
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	AuthService     *service.AuthService
	NoteService     *service.NoteService
	WorkflowService *service.WorkflowService
	CategoryService *service.CategoryService
	ContentService  *service.ContentService
	AdminService    *service.AdminService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	corsOrigins []string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		gate:         &AuthGate{Verifier: verifier, Store: st},
		store:        st,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORS(corsOrigins),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerNotes()
	r.registerWorkflows()
	r.registerContent()
	r.registerAdmin()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
//
//	@title			KnowledgeHub API
//	@version		0.1.0
//	@description	Personal knowledge management: notes, custom categories, workflows with steps and attachments, RSS import, and quick capture.
//	@description
//	@description				Every response uses the {success, data?, message?} envelope. Authentication is a bearer JWT from /api/auth/login.
//
//	@host						localhost:3000
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	// Credential endpoints get the strict IP limit to slow brute force.
	r.Mux.Handle("POST /api/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("GET /api/auth/profile",
		httpx.Chain(http.HandlerFunc(h.HandleGetProfile),
			r.gate.Require,
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PUT /api/auth/profile",
		httpx.Chain(http.HandlerFunc(h.HandleUpdateProfile),
			r.gate.Require,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /api/auth/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			r.gate.Require,
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerNotes() {
	h := &NotesHandler{NoteService: r.NoteService}

	// Public reads: anonymous callers get the shared pool.
	r.Mux.Handle("GET /api/notes",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			r.gate.Permissive,
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /api/notes/stats/summary",
		httpx.Chain(http.HandlerFunc(h.HandleStats),
			r.gate.Permissive,
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /api/notes/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			r.gate.Require,
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /api/notes/{id}/html",
		httpx.Chain(http.HandlerFunc(h.HandleGetHTML),
			r.gate.Require,
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// Mutations additionally require the note-creation capability.
	r.Mux.Handle("POST /api/notes",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			r.gate.Require,
			RequireNoteCreation,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PUT /api/notes/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			r.gate.Require,
			RequireNoteCreation,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /api/notes/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			r.gate.Require,
			RequireNoteCreation,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /api/notes/{id}/duplicate",
		httpx.Chain(http.HandlerFunc(h.HandleDuplicate),
			r.gate.Require,
			RequireNoteCreation,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerWorkflows() {
	h := &WorkflowsHandler{WorkflowService: r.WorkflowService}

	reads := []httpx.Middleware{r.gate.Require, httpx.RateLimitByUser(httpx.LenientLimit)}
	writes := []httpx.Middleware{r.gate.Require, httpx.RateLimitByUser(httpx.ModerateLimit)}

	r.Mux.Handle("GET /api/workflows",
		httpx.Chain(http.HandlerFunc(h.HandleList), reads...))
	r.Mux.Handle("GET /api/workflows/stats/summary",
		httpx.Chain(http.HandlerFunc(h.HandleStats), reads...))
	r.Mux.Handle("GET /api/workflows/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet), reads...))

	r.Mux.Handle("POST /api/workflows",
		httpx.Chain(http.HandlerFunc(h.HandleCreate), writes...))
	r.Mux.Handle("PUT /api/workflows/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate), writes...))
	r.Mux.Handle("DELETE /api/workflows/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete), writes...))

	r.Mux.Handle("POST /api/workflows/{id}/steps",
		httpx.Chain(http.HandlerFunc(h.HandleAddStep), writes...))
	r.Mux.Handle("PUT /api/workflows/{id}/steps/{stepID}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdateStep), writes...))
	r.Mux.Handle("DELETE /api/workflows/{id}/steps/{stepID}",
		httpx.Chain(http.HandlerFunc(h.HandleDeleteStep), writes...))

	r.Mux.Handle("POST /api/workflows/{id}/attachments",
		httpx.Chain(http.HandlerFunc(h.HandleAddAttachment), writes...))
}

func (r *Router) registerContent() {
	h := &ContentHandler{
		ContentService:  r.ContentService,
		CategoryService: r.CategoryService,
	}

	reads := []httpx.Middleware{r.gate.Require, httpx.RateLimitByUser(httpx.LenientLimit)}
	writes := []httpx.Middleware{r.gate.Require, httpx.RateLimitByUser(httpx.ModerateLimit)}

	r.Mux.Handle("GET /api/content/rss-sources",
		httpx.Chain(http.HandlerFunc(h.HandleListSources), reads...))
	r.Mux.Handle("POST /api/content/rss-sources",
		httpx.Chain(http.HandlerFunc(h.HandleAddSource), writes...))
	r.Mux.Handle("DELETE /api/content/rss-sources/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDeleteSource), writes...))

	// Imports fan out to the network, so they get the moderate limit even
	// though they read more than they write.
	r.Mux.Handle("POST /api/content/fetch-rss/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleFetchRSS), writes...))
	r.Mux.Handle("POST /api/content/quick-capture",
		httpx.Chain(http.HandlerFunc(h.HandleQuickCapture), writes...))

	r.Mux.Handle("GET /api/content/categories",
		httpx.Chain(http.HandlerFunc(h.HandleListCategories), reads...))
	r.Mux.Handle("POST /api/content/categories",
		httpx.Chain(http.HandlerFunc(h.HandleCreateCategory), writes...))
	r.Mux.Handle("PUT /api/content/categories/bulk-update",
		httpx.Chain(http.HandlerFunc(h.HandleBulkUpdateCategory), writes...))
	r.Mux.Handle("PUT /api/content/categories/{name}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdateCategory), writes...))
	r.Mux.Handle("DELETE /api/content/categories/{name}",
		httpx.Chain(http.HandlerFunc(h.HandleDeleteCategory), writes...))

	r.Mux.Handle("GET /api/content/templates",
		httpx.Chain(http.HandlerFunc(h.HandleTemplates),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{AdminService: r.AdminService}

	admin := []httpx.Middleware{
		r.gate.Require,
		RequireAdmin,
		httpx.RateLimitByUser(httpx.ModerateLimit),
	}

	r.Mux.Handle("GET /api/admin/users",
		httpx.Chain(http.HandlerFunc(h.HandleListUsers), admin...))
	r.Mux.Handle("PUT /api/admin/users/{id}/permissions",
		httpx.Chain(http.HandlerFunc(h.HandleUpdatePermissions), admin...))
}

func (r *Router) registerSystem() {
	health := &HealthHandler{
		Store:     r.store,
		Version:   r.buildVersion,
		StartTime: r.startTime,
	}

	r.Mux.Handle("GET /health",
		httpx.Chain(health,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /api",
		httpx.Chain(http.HandlerFunc(HandleCatalog),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
