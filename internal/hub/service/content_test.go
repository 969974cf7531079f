package service_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mydigitalspace/knowledgehub/internal/hub/service"
	"github.com/mydigitalspace/knowledgehub/internal/hub/store"
	"github.com/mydigitalspace/knowledgehub/pkg/feedx"
)

func feedServer(t *testing.T, items int) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, `<?xml version="1.0"?><rss version="2.0"><channel><title>Test Feed</title>`)
		for i := 1; i <= items; i++ {
			fmt.Fprintf(w, `<item><title>Article %d</title><link>%s/article-%d</link><description>Body %d</description></item>`,
				i, "https://feed.example.com", i, i)
		}
		fmt.Fprint(w, `</channel></rss>`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newContentService(s store.Store) *service.ContentService {
	return &service.ContentService{Store: s, Fetcher: feedx.NewHTTPFetcher()}
}

func TestAddSourceValidatesFeed(t *testing.T) {
	s := newTestStore(t)
	content := newContentService(s)
	ctx := context.Background()
	user := registerUser(t, s, "a@b.com")

	srv := feedServer(t, 1)
	source, err := content.AddSource(ctx, user.ID, "Test Feed", srv.URL, "")
	require.NoError(t, err)
	require.Equal(t, "resources", source.Category)

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	t.Cleanup(bad.Close)

	_, err = content.AddSource(ctx, user.ID, "Broken", bad.URL, "")
	require.True(t, service.IsValidation(err))
}

func TestImportSource(t *testing.T) {
	s := newTestStore(t)
	content := newContentService(s)
	notes := &service.NoteService{Store: s}
	ctx := context.Background()
	user := registerUser(t, s, "a@b.com")

	srv := feedServer(t, 3)
	source, err := content.AddSource(ctx, user.ID, "Hacker News", srv.URL, "")
	require.NoError(t, err)

	result, err := content.ImportSource(ctx, user.ID, source.ID, 10)
	require.NoError(t, err)
	require.Equal(t, 3, result.Imported)
	require.Equal(t, 3, result.Total)

	listed, total, err := notes.List(ctx, store.NoteFilter{
		UserID: user.ID, Tags: []string{"rss-import"}, Limit: 10,
	})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)

	imported := listed[0]
	require.Contains(t, imported.Content, "---\nSource: https://feed.example.com/article-")
	require.Contains(t, imported.Tags, "rss-import")
	require.Contains(t, imported.Tags, "hacker-news")
	require.NotNil(t, imported.SourceURL)

	// last_fetched is stamped.
	sources, err := content.ListSources(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, sources[0].LastFetched)

	// Re-import is idempotent per (user, source_url).
	result, err = content.ImportSource(ctx, user.ID, source.ID, 10)
	require.NoError(t, err)
	require.Equal(t, 0, result.Imported)
	require.Equal(t, 3, result.Total)
}

func TestImportSourceRespectsLimit(t *testing.T) {
	s := newTestStore(t)
	content := newContentService(s)
	ctx := context.Background()
	user := registerUser(t, s, "a@b.com")

	srv := feedServer(t, 5)
	source, err := content.AddSource(ctx, user.ID, "Feed", srv.URL, "")
	require.NoError(t, err)

	result, err := content.ImportSource(ctx, user.ID, source.ID, 2)
	require.NoError(t, err)
	require.Equal(t, 2, result.Imported)
	require.Equal(t, 2, result.Total)
}

func TestImportSourceTitleFallback(t *testing.T) {
	s := newTestStore(t)
	content := newContentService(s)
	notes := &service.NoteService{Store: s}
	ctx := context.Background()
	user := registerUser(t, s, "a@b.com")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, `<?xml version="1.0"?><rss version="2.0"><channel><title>Feed</title>`+
			`<item><link>https://feed.example.com/untitled</link><description>Body</description></item>`+
			`</channel></rss>`)
	}))
	t.Cleanup(srv.Close)

	source, err := content.AddSource(ctx, user.ID, "Feed", srv.URL, "")
	require.NoError(t, err)

	result, err := content.ImportSource(ctx, user.ID, source.ID, 10)
	require.NoError(t, err)
	require.Equal(t, 1, result.Imported)

	listed, _, err := notes.List(ctx, store.NoteFilter{UserID: user.ID, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, "Untitled Article", listed[0].Title)
}

func TestQuickCapture(t *testing.T) {
	s := newTestStore(t)
	content := newContentService(s)
	ctx := context.Background()
	user := registerUser(t, s, "a@b.com")

	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Page Title</title>`+
			`<meta name="description" content="Page description here"></head><body></body></html>`)
	}))
	t.Cleanup(page.Close)

	t.Run("scrapes missing fields", func(t *testing.T) {
		note, err := content.QuickCapture(ctx, user.ID, page.URL, "", "", []string{"read-later"})
		require.NoError(t, err)
		require.Equal(t, "Page Title", note.Title)
		require.Contains(t, note.Content, "Page description here")
		require.Contains(t, note.Tags, "quick-capture")
		require.Contains(t, note.Tags, "read-later")
		require.NotNil(t, note.SourceType)
		require.Equal(t, "quick-capture", *note.SourceType)
	})

	t.Run("falls back when the page is unreachable", func(t *testing.T) {
		note, err := content.QuickCapture(ctx, user.ID, "http://127.0.0.1:1/nope", "", "", nil)
		require.NoError(t, err)
		require.Equal(t, "Captured Article", note.Title)
		require.Contains(t, note.Content, "Content captured from external source.")
	})

	t.Run("requires a url", func(t *testing.T) {
		_, err := content.QuickCapture(ctx, user.ID, "  ", "", "", nil)
		require.True(t, service.IsValidation(err))
	})
}

func TestTemplates(t *testing.T) {
	content := &service.ContentService{}
	templates := content.Templates()
	require.NotEmpty(t, templates)
	for _, tpl := range templates {
		require.NotEmpty(t, tpl.Name)
		require.NotEmpty(t, tpl.Content)
	}
}
