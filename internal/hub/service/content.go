package service

import (
	"context"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mydigitalspace/knowledgehub/internal/hub/domain"
	"github.com/mydigitalspace/knowledgehub/internal/hub/store"
	"github.com/mydigitalspace/knowledgehub/pkg/feedx"
	"github.com/mydigitalspace/knowledgehub/pkg/idx"
	"github.com/mydigitalspace/knowledgehub/pkg/slogx"
)

const (
	// MaxImportItems caps how many feed items one import pass touches.
	MaxImportItems = 50

	// snippetLength bounds the imported note body taken from the feed.
	snippetLength = 500

	// captureTimeout bounds the quick-capture page fetch.
	captureTimeout = 5 * time.Second

	captureFallbackTitle   = "Captured Article"
	captureFallbackContent = "Content captured from external source."
)

var (
	titleRE    = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	metaDescRE = regexp.MustCompile(`(?is)<meta[^>]+name=["']description["'][^>]+content=["']([^"']*)["']`)
	htmlTagRE  = regexp.MustCompile(`<[^>]*>`)
)

type ContentService struct {
	Store   store.Store
	Fetcher feedx.Fetcher

	// Client fetches pages for quick capture. Defaults to a bounded
	// client when nil.
	Client *http.Client
}

// ListSources returns the user's RSS sources.
func (s *ContentService) ListSources(ctx context.Context, userID string) ([]domain.RssSource, error) {
	return s.Store.RssSources().ListSources(ctx, userID)
}

// AddSource validates that the feed actually fetches and parses before
// inserting it.
func (s *ContentService) AddSource(ctx context.Context, userID, name, url, category string) (domain.RssSource, error) {
	name = strings.TrimSpace(name)
	url = strings.TrimSpace(url)
	if name == "" {
		return domain.RssSource{}, invalidf("Name is required")
	}
	if url == "" {
		return domain.RssSource{}, invalidf("URL is required")
	}
	if category == "" {
		category = "resources"
	}

	if _, err := s.Fetcher.Fetch(ctx, url); err != nil {
		return domain.RssSource{}, invalidf("Could not fetch or parse feed at %s", url)
	}

	now := time.Now().UTC()
	source := domain.RssSource{
		ID:        idx.New().String(),
		UserID:    userID,
		Name:      name,
		URL:       url,
		Category:  category,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Store.RssSources().CreateSource(ctx, source); err != nil {
		return domain.RssSource{}, err
	}
	return source, nil
}

// DeleteSource removes an RSS source owned by the user.
func (s *ContentService) DeleteSource(ctx context.Context, userID, id string) error {
	return s.Store.RssSources().DeleteSource(ctx, userID, id)
}

// ImportSource fetches the feed and imports up to min(limit, MaxImportItems)
// items as notes. Items already imported for this user (same source_url)
// are skipped, making re-imports idempotent. The note inserts run in one
// transaction; last_fetched is stamped afterwards regardless of how many
// notes were new.
func (s *ContentService) ImportSource(ctx context.Context, userID, sourceID string, limit int) (domain.ImportResult, error) {
	source, err := s.Store.RssSources().GetSource(ctx, userID, sourceID)
	if err != nil {
		return domain.ImportResult{}, err
	}

	feed, err := s.Fetcher.Fetch(ctx, source.URL)
	if err != nil {
		return domain.ImportResult{}, invalidf("Could not fetch feed for source %q", source.Name)
	}

	if limit < 1 || limit > MaxImportItems {
		limit = MaxImportItems
	}
	items := feed.Items
	if len(items) > limit {
		items = items[:limit]
	}

	sourceTags := []string{"rss-import"}
	if slug := domain.Slugify(source.Name); slug != "" {
		sourceTags = append(sourceTags, slug)
	}

	result := domain.ImportResult{Total: len(items)}
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		now := time.Now().UTC()
		for _, item := range items {
			if item.Link == "" {
				continue
			}

			exists, err := tx.Notes().ExistsBySourceURL(ctx, userID, item.Link)
			if err != nil {
				return err
			}
			if exists {
				continue
			}

			title := strings.TrimSpace(item.Title)
			if title == "" {
				title = "Untitled Article"
			}

			link := item.Link
			sourceType := domain.SourceTypeRSS
			sourceTitle := source.Name
			note := domain.Note{
				ID:          idx.New().String(),
				UserID:      userID,
				Title:       title,
				Content:     importedContent(item),
				Category:    source.Category,
				Tags:        sourceTags,
				SourceURL:   &link,
				SourceType:  &sourceType,
				SourceTitle: &sourceTitle,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := tx.Notes().CreateNote(ctx, note); err != nil {
				return err
			}
			result.Imported++
		}
		return nil
	})
	if err != nil {
		return domain.ImportResult{}, err
	}

	if err := s.Store.RssSources().UpdateLastFetched(ctx, sourceID, time.Now().UTC()); err != nil {
		slogx.FromContext(ctx).Warn("failed to stamp last_fetched",
			slog.String("source_id", sourceID), slog.Any("error", err))
	}

	return result, nil
}

// importedContent builds the note body for a feed item: a plain-text
// snippet with a footer citing the source link.
func importedContent(item feedx.Item) string {
	body := item.Description
	if body == "" {
		body = item.Content
	}
	body = strings.TrimSpace(html.UnescapeString(htmlTagRE.ReplaceAllString(body, "")))
	if runes := []rune(body); len(runes) > snippetLength {
		body = string(runes[:snippetLength]) + "..."
	}
	return fmt.Sprintf("%s\n\n---\nSource: %s", body, item.Link)
}

// QuickCapture saves a URL as a note, scraping the page title and meta
// description when the caller supplies neither.
func (s *ContentService) QuickCapture(ctx context.Context, userID, url, title, content string, tags []string) (domain.Note, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return domain.Note{}, invalidf("URL is required")
	}

	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		pageTitle, pageDesc := s.scrapePage(ctx, url)
		if title == "" {
			title = pageTitle
		}
		if content == "" {
			content = pageDesc
		}
	}
	if title == "" {
		title = captureFallbackTitle
	}
	if content == "" {
		content = captureFallbackContent
	}

	sourceType := domain.SourceTypeQuickCapture
	now := time.Now().UTC()
	note := domain.Note{
		ID:         idx.New().String(),
		UserID:     userID,
		Title:      title,
		Content:    fmt.Sprintf("%s\n\n---\nSource: %s", content, url),
		Category:   "resources",
		Tags:       domain.NormalizeTags(append(tags, "quick-capture")),
		SourceURL:  &url,
		SourceType: &sourceType,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.Store.Notes().CreateNote(ctx, note); err != nil {
		return domain.Note{}, err
	}
	return note, nil
}

// scrapePage best-effort extracts <title> and the meta description. Any
// failure just means fallbacks get used.
func (s *ContentService) scrapePage(ctx context.Context, url string) (title, description string) {
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: captureTimeout}
	}

	ctx, cancel := context.WithTimeout(ctx, captureTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", ""
	}
	req.Header.Set("User-Agent", "KnowledgeHub Quick Capture 1.0")

	resp, err := client.Do(req)
	if err != nil {
		return "", ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", ""
	}

	// Titles and meta tags live in <head>; 64 KiB is plenty.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", ""
	}

	if m := titleRE.FindSubmatch(body); m != nil {
		title = strings.TrimSpace(html.UnescapeString(string(m[1])))
	}
	if m := metaDescRE.FindSubmatch(body); m != nil {
		description = strings.TrimSpace(html.UnescapeString(string(m[1])))
	}
	return title, description
}

// Template is a canned note scaffold.
type Template struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Content  string `json:"content"`
}

// Templates returns the static content templates.
func (s *ContentService) Templates() []Template {
	return []Template{
		{
			Name:     "meeting-notes",
			Title:    "Meeting Notes",
			Category: "projects",
			Content:  "# Meeting Notes\n\n**Date:** \n**Attendees:** \n\n## Agenda\n\n- \n\n## Decisions\n\n- \n\n## Action Items\n\n- [ ] ",
		},
		{
			Name:     "book-summary",
			Title:    "Book Summary",
			Category: "learning",
			Content:  "# Book Summary\n\n**Title:** \n**Author:** \n\n## Key Ideas\n\n- \n\n## Quotes\n\n> \n\n## Takeaways\n\n- ",
		},
		{
			Name:     "project-plan",
			Title:    "Project Plan",
			Category: "projects",
			Content:  "# Project Plan\n\n## Goal\n\n\n## Milestones\n\n1. \n\n## Risks\n\n- ",
		},
		{
			Name:     "daily-journal",
			Title:    "Daily Journal",
			Category: "ideas",
			Content:  "# Daily Journal\n\n## What happened today\n\n\n## What I learned\n\n\n## Tomorrow\n\n- ",
		},
	}
}
