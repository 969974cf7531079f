package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	httpapi "github.com/mydigitalspace/knowledgehub/internal/hub/http"
	"github.com/mydigitalspace/knowledgehub/internal/hub/service"
	"github.com/mydigitalspace/knowledgehub/internal/hub/store"
	"github.com/mydigitalspace/knowledgehub/internal/hub/store/drivers/sqlite"
	"github.com/mydigitalspace/knowledgehub/pkg/feedx"
	"github.com/mydigitalspace/knowledgehub/pkg/jwtx"
)

const testSecret = "api-test-secret-that-is-long-enough"

type testAPI struct {
	t      *testing.T
	srv    *httptest.Server
	store  store.Store
	client *http.Client
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	signer, err := jwtx.NewSignerHS256([]byte(testSecret))
	require.NoError(t, err)
	verifier, err := jwtx.NewVerifierHS256([]byte(testSecret), "knowledgehub")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := httpapi.NewRouter(verifier, "test", st, nil, logger)
	router.AuthService = &service.AuthService{
		Store:  st,
		Signer: signer,
		Issuer: "knowledgehub",
		TTL:    time.Hour,
	}
	router.NoteService = &service.NoteService{Store: st}
	router.WorkflowService = &service.WorkflowService{Store: st}
	router.CategoryService = &service.CategoryService{Store: st}
	router.ContentService = &service.ContentService{Store: st, Fetcher: feedx.NewHTTPFetcher()}
	router.AdminService = &service.AdminService{Store: st}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testAPI{t: t, srv: srv, store: st, client: srv.Client()}
}

// do issues a request and decodes the envelope.
func (api *testAPI) do(method, path, token string, body any) (int, map[string]any) {
	api.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(api.t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, api.srv.URL+path, reader)
	require.NoError(api.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := api.client.Do(req)
	require.NoError(api.t, err)
	defer resp.Body.Close()

	var envelope map[string]any
	require.NoError(api.t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp.StatusCode, envelope
}

// register creates an account through the API and returns its token and id.
func (api *testAPI) register(email string) (token, userID string) {
	api.t.Helper()

	status, env := api.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"name":            "Test User",
		"email":           email,
		"password":        "secret1",
		"confirmPassword": "secret1",
	})
	require.Equal(api.t, http.StatusCreated, status)

	data := env["data"].(map[string]any)
	user := data["user"].(map[string]any)
	return data["token"].(string), user["id"].(string)
}

func data(env map[string]any) map[string]any {
	return env["data"].(map[string]any)
}

func TestRegisterLoginAndProfile(t *testing.T) {
	api := newTestAPI(t)

	token, _ := api.register("Alice@Example.com")

	status, env := api.do(http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, env["success"])
	require.Equal(t, "alice@example.com", data(env)["email"], "email is lowercased")
	require.Equal(t, "editor", data(env)["role"])

	status, env = api.do(http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, data(env)["token"])

	status, env = api.do(http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "Invalid credentials", env["message"])

	status, env = api.do(http.MethodGet, "/api/auth/verify", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, data(env)["valid"])
}

func TestAuthGateMessages(t *testing.T) {
	api := newTestAPI(t)

	status, env := api.do(http.MethodGet, "/api/auth/profile", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "Access token required", env["message"])

	status, env = api.do(http.MethodGet, "/api/auth/profile", "garbage", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "Invalid token", env["message"])
}

func TestCreateNoteNormalizesTagsOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register("a@b.com")

	status, env := api.do(http.MethodPost, "/api/notes", token, map[string]any{
		"title":   "T",
		"content": "C",
		"tags":    []string{"x", "x", " y "},
	})
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, []any{"x", "y"}, data(env)["tags"].([]any))
	require.Equal(t, "ideas", data(env)["category"], "default category")
}

func TestNoteListingPagination(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register("a@b.com")

	for i := 0; i < 3; i++ {
		status, _ := api.do(http.MethodPost, "/api/notes", token, map[string]any{
			"title":    fmt.Sprintf("Note %d", i),
			"content":  "C",
			"category": "ideas",
		})
		require.Equal(t, http.StatusCreated, status)
	}

	status, env := api.do(http.MethodGet, "/api/notes?category=ideas&limit=1&offset=0", token, nil)
	require.Equal(t, http.StatusOK, status)

	page := data(env)
	require.Len(t, page["notes"].([]any), 1)
	pagination := page["pagination"].(map[string]any)
	require.EqualValues(t, 3, pagination["total"])
	require.Equal(t, true, pagination["hasMore"])

	// Out-of-range limits are rejected, not clamped.
	status, _ = api.do(http.MethodGet, "/api/notes?limit=9999", token, nil)
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = api.do(http.MethodGet, "/api/notes?sort=password_hash", token, nil)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestAnonymousListingServesSharedPool(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register("a@b.com")

	status, _ := api.do(http.MethodPost, "/api/notes", token, map[string]any{
		"title": "Shared", "content": "C",
	})
	require.Equal(t, http.StatusCreated, status)

	status, env := api.do(http.MethodGet, "/api/notes", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, data(env)["notes"].([]any), 1)

	// Detail reads stay authenticated.
	status, _ = api.do(http.MethodGet, "/api/auth/profile", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestNoteCreationCapabilityGate(t *testing.T) {
	api := newTestAPI(t)
	token, userID := api.register("viewer@b.com")

	role := "viewer"
	off := false
	err := api.store.Users().UpdatePermissions(context.Background(), userID, &role, &off)
	require.NoError(t, err)

	status, env := api.do(http.MethodPost, "/api/notes", token, map[string]any{
		"title": "T", "content": "C",
	})
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "INSUFFICIENT_PERMISSIONS", env["code"])

	// Reads are unaffected.
	status, _ = api.do(http.MethodGet, "/api/notes", token, nil)
	require.Equal(t, http.StatusOK, status)
}

func TestCrossUserDeleteIs404(t *testing.T) {
	api := newTestAPI(t)
	alice, _ := api.register("alice@b.com")
	bob, _ := api.register("bob@b.com")

	status, env := api.do(http.MethodPost, "/api/notes", alice, map[string]any{
		"title": "Mine", "content": "C",
	})
	require.Equal(t, http.StatusCreated, status)
	noteID := data(env)["id"].(string)

	status, _ = api.do(http.MethodDelete, "/api/notes/"+noteID, bob, nil)
	require.Equal(t, http.StatusNotFound, status)

	status, _ = api.do(http.MethodGet, "/api/notes/"+noteID, alice, nil)
	require.Equal(t, http.StatusOK, status)
}

func TestWorkflowLifecycleOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register("a@b.com")

	status, env := api.do(http.MethodPost, "/api/workflows", token, map[string]any{
		"title": "Launch",
		"steps": []map[string]any{{"title": "Draft"}, {"title": "Ship"}},
	})
	require.Equal(t, http.StatusCreated, status)
	workflowID := data(env)["id"].(string)
	require.Equal(t, "active", data(env)["status"])
	require.Len(t, data(env)["steps"].([]any), 2)

	status, env = api.do(http.MethodPut, "/api/workflows/"+workflowID, token, map[string]any{
		"status": "completed",
	})
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, data(env)["completedAt"])

	status, env = api.do(http.MethodGet, "/api/workflows/stats/summary", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 1, data(env)["total"])
}

func TestCategoryEndpoints(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register("a@b.com")

	status, env := api.do(http.MethodPost, "/api/content/categories", token, map[string]any{
		"name":        "recipes",
		"displayName": "Recipes",
	})
	require.Equal(t, http.StatusCreated, status)

	status, _ = api.do(http.MethodPost, "/api/content/categories", token, map[string]any{
		"name":        "recipes",
		"displayName": "Again",
	})
	require.Equal(t, http.StatusConflict, status)

	status, env = api.do(http.MethodGet, "/api/content/categories", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, data(env)["categories"].([]any), "ideas")
	require.Contains(t, data(env)["categories"].([]any), "recipes")

	status, _ = api.do(http.MethodDelete, "/api/content/categories/ideas", token, nil)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestAdminGate(t *testing.T) {
	api := newTestAPI(t)
	token, userID := api.register("a@b.com")

	status, env := api.do(http.MethodGet, "/api/admin/users", token, nil)
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "Admin access required", env["message"])

	admin := "admin"
	err := api.store.Users().UpdatePermissions(context.Background(), userID, &admin, nil)
	require.NoError(t, err)

	status, env = api.do(http.MethodGet, "/api/admin/users", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, env["data"].([]any), 1)
}

func TestHealthAndCatalog(t *testing.T) {
	api := newTestAPI(t)

	status, env := api.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "healthy", data(env)["status"])
	features := data(env)["features"].(map[string]any)
	require.Equal(t, true, features["notes"])
	require.Equal(t, true, features["workflows"])

	status, env = api.do(http.MethodGet, "/api", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, data(env)["endpoints"])
}

func TestTemplatesArePublic(t *testing.T) {
	api := newTestAPI(t)

	status, env := api.do(http.MethodGet, "/api/content/templates", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, env["data"].([]any))
}
