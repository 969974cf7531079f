package postgres

import (
	"context"
	"time"

	"github.com/mydigitalspace/knowledgehub/internal/hub/domain"
)

type sessionsRepo struct {
	db dbtx
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.UserSession) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_sessions (id, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)`,
		s.ID, s.UserID, s.ExpiresAt, s.CreatedAt,
	)
	return err
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM user_sessions WHERE expires_at < $1`, time.Now().UTC())
	return err
}
