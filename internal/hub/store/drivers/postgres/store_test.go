package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mydigitalspace/knowledgehub/internal/hub/domain"
	"github.com/mydigitalspace/knowledgehub/internal/hub/store"
	"github.com/mydigitalspace/knowledgehub/pkg/idx"
)

// newTestStore spins up a disposable postgres container. Skipped with
// -short since it needs a working Docker daemon.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("knowledgehub_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := NewStore(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func seedUser(t *testing.T, s *Store, email string) domain.User {
	t.Helper()

	now := time.Now().UTC()
	u := domain.User{
		ID:             idx.New().String(),
		Email:          email,
		Name:           "Test User",
		PasswordHash:   "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		Role:           domain.RoleEditor,
		CanCreateNotes: true,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func seedNote(t *testing.T, s *Store, userID, title, category string, tags []string) domain.Note {
	t.Helper()

	now := time.Now().UTC()
	n := domain.Note{
		ID:        idx.New().String(),
		UserID:    userID,
		Title:     title,
		Content:   "content for " + title,
		Category:  category,
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.Notes().CreateNote(context.Background(), n))
	return n
}

func TestPostgresDriver(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	t.Run("duplicate email", func(t *testing.T) {
		seedUser(t, s, "dup@example.com")
		now := time.Now().UTC()
		err := s.Users().CreateUser(ctx, domain.User{
			ID: idx.New().String(), Email: "dup@example.com", Name: "Other",
			PasswordHash: "x", Role: domain.RoleViewer,
			CreatedAt: now, UpdatedAt: now,
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("listing with array tags and ILIKE search", func(t *testing.T) {
		user := seedUser(t, s, "alice@example.com")
		seedNote(t, s, user.ID, "Idea one", "ideas", []string{"go", "api"})
		seedNote(t, s, user.ID, "Idea two", "ideas", []string{"go"})
		seedNote(t, s, user.ID, "Project plan", "projects", []string{"db"})

		notes, total, err := s.Notes().ListNotes(ctx, store.NoteFilter{
			UserID: user.ID, Category: "ideas", Limit: 1,
		})
		require.NoError(t, err)
		require.Len(t, notes, 1)
		require.EqualValues(t, 2, total)

		_, total, err = s.Notes().ListNotes(ctx, store.NoteFilter{
			UserID: user.ID, Tags: []string{"api", "db"}, Limit: 10,
		})
		require.NoError(t, err)
		require.EqualValues(t, 2, total)

		_, total, err = s.Notes().ListNotes(ctx, store.NoteFilter{
			UserID: user.ID, Search: "IDEA", Limit: 10,
		})
		require.NoError(t, err)
		require.EqualValues(t, 2, total)
	})

	t.Run("transaction rollback leaves no rows", func(t *testing.T) {
		user := seedUser(t, s, "tx@example.com")
		boom := errors.New("boom")
		now := time.Now().UTC()
		wfID := idx.New().String()

		err := s.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.Workflows().CreateWorkflow(ctx, domain.Workflow{
				ID: wfID, UserID: user.ID, Title: "WF", Category: "projects",
				Priority: domain.PriorityMedium, Status: domain.StatusActive,
				CreatedAt: now, UpdatedAt: now,
			}); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = s.Workflows().GetWorkflow(ctx, user.ID, wfID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("table presence", func(t *testing.T) {
		presence, err := s.TablePresence(ctx, store.RequiredTables)
		require.NoError(t, err)
		for _, table := range store.RequiredTables {
			require.True(t, presence[table], table)
		}
	})
}
