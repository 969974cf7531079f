package domain

import "time"

// Note source types for content created by importers.
const (
	SourceTypeRSS          = "rss"
	SourceTypeQuickCapture = "quick-capture"
)

type Note struct {
	ID          string
	UserID      string
	Title       string
	Content     string
	Category    string
	Tags        []string
	SourceURL   *string
	SourceType  *string
	SourceTitle *string
	IsArchived  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NoteStats summarizes a user's notes for the stats endpoint.
type NoteStats struct {
	Total       int64
	ByCategory  map[string]int64
	TagCounts   []TagCount
	LastUpdated *time.Time
}

// TagCount pairs a tag with how many notes carry it.
type TagCount struct {
	Tag   string
	Count int64
}
