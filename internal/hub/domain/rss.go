package domain

import "time"

type RssSource struct {
	ID          string
	UserID      string
	Name        string
	URL         string
	Category    string
	IsActive    bool
	LastFetched *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ImportResult reports the outcome of a single RSS import pass.
type ImportResult struct {
	Imported int
	Total    int
}
