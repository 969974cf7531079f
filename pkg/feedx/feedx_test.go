package feedx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mydigitalspace/knowledgehub/pkg/feedx"
	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Blog</title>
    <link>https://example.com</link>
    <item>
      <title>First Post</title>
      <link>https://example.com/first</link>
      <description>An opening entry.</description>
      <pubDate>Mon, 02 Jun 2025 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Second Post</title>
      <link>https://example.com/second</link>
      <description>A follow-up.</description>
    </item>
  </channel>
</rss>`

func TestFetchParsesFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "KnowledgeHub RSS Reader 1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	feed, err := feedx.NewHTTPFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	require.Equal(t, "Example Blog", feed.Title)
	require.Len(t, feed.Items, 2)
	require.Equal(t, "First Post", feed.Items[0].Title)
	require.Equal(t, "https://example.com/first", feed.Items[0].Link)
	require.False(t, feed.Items[0].Published.IsZero())
	require.True(t, feed.Items[1].Published.IsZero())
}

func TestFetchReportsServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := feedx.NewHTTPFetcher().Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, feedx.ErrFetch)
}
