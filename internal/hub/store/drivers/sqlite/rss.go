package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/mydigitalspace/knowledgehub/internal/hub/domain"
)

type rssSourcesRepo struct {
	db dbtx
}

const rssColumns = `id, user_id, name, url, category, is_active, last_fetched, created_at, updated_at`

func scanRssSource(row interface{ Scan(...any) error }) (domain.RssSource, error) {
	var (
		s           domain.RssSource
		lastFetched sql.NullTime
	)
	err := row.Scan(
		&s.ID, &s.UserID, &s.Name, &s.URL, &s.Category, &s.IsActive,
		&lastFetched, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return domain.RssSource{}, err
	}
	s.LastFetched = mapNullTimePtr(lastFetched)
	return s, nil
}

func (r *rssSourcesRepo) ListSources(ctx context.Context, userID string) ([]domain.RssSource, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+rssColumns+` FROM rss_sources WHERE user_id = ? ORDER BY created_at DESC`,
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
	s, err := scanRssSource(r.db.QueryRowContext(ctx,
		`SELECT `+rssColumns+` FROM rss_sources WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil {
		return domain.RssSource{}, mapNotFound(err)
	}
	return s, nil
}

func (r *rssSourcesRepo) CreateSource(ctx context.Context, s domain.RssSource) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO rss_sources (id, user_id, name, url, category, is_active, last_fetched, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.Name, s.URL, s.Category, s.IsActive,
		mapOptionalTime(s.LastFetched), s.CreatedAt, s.UpdatedAt,
	)
	return err
}

func (r *rssSourcesRepo) DeleteSource(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM rss_sources WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}

func (r *rssSourcesRepo) UpdateLastFetched(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE rss_sources SET last_fetched = ?, updated_at = ? WHERE id = ?`,
		at, at, id)
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}
