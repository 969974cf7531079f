package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mydigitalspace/knowledgehub/internal/hub/domain"
)

type rssSourcesRepo struct {
	db dbtx
}

const rssColumns = `id, user_id, name, url, category, is_active, last_fetched, created_at, updated_at`

func scanRssSource(row pgx.Row) (domain.RssSource, error) {
	var s domain.RssSource
	err := row.Scan(
		&s.ID, &s.UserID, &s.Name, &s.URL, &s.Category, &s.IsActive,
		&s.LastFetched, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func (r *rssSourcesRepo) ListSources(ctx context.Context, userID string) ([]domain.RssSource, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+rssColumns+` FROM rss_sources WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sources := []domain.RssSource{}
	for rows.Next() {
		s, err := scanRssSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

func (r *rssSourcesRepo) GetSource(ctx context.Context, userID, id string) (domain.RssSource, error) {
	s, err := scanRssSource(r.db.QueryRow(ctx,
		`SELECT `+rssColumns+` FROM rss_sources WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return domain.RssSource{}, mapNotFound(err)
	}
	return s, nil
}

func (r *rssSourcesRepo) CreateSource(ctx context.Context, s domain.RssSource) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO rss_sources (id, user_id, name, url, category, is_active, last_fetched, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.UserID, s.Name, s.URL, s.Category, s.IsActive,
		s.LastFetched, s.CreatedAt, s.UpdatedAt,
	)
	return err
}

func (r *rssSourcesRepo) DeleteSource(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM rss_sources WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return requireRowChanged(tag)
}

func (r *rssSourcesRepo) UpdateLastFetched(ctx context.Context, id string, at time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE rss_sources SET last_fetched = $1, updated_at = $2 WHERE id = $3`,
		at, at, id)
	if err != nil {
		return err
	}
	return requireRowChanged(tag)
}
