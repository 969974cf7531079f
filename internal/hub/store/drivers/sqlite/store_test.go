package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mydigitalspace/knowledgehub/internal/hub/domain"
	"github.com/mydigitalspace/knowledgehub/internal/hub/store"
	"github.com/mydigitalspace/knowledgehub/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
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

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "dup@example.com")

	now := time.Now().UTC()
	err := s.Users().CreateUser(context.Background(), domain.User{
		ID: idx.New().String(), Email: "dup@example.com", Name: "Other",
		PasswordHash: "x", Role: domain.RoleViewer,
		CreatedAt: now, UpdatedAt: now,
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestListNotesFiltering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedUser(t, s, "alice@example.com")
	other := seedUser(t, s, "bob@example.com")

	seedNote(t, s, user.ID, "Idea one", "ideas", []string{"go", "api"})
	seedNote(t, s, user.ID, "Idea two", "ideas", []string{"go"})
	seedNote(t, s, user.ID, "Idea three", "ideas", []string{"db"})
	seedNote(t, s, user.ID, "Project plan", "projects", []string{"api"})
	seedNote(t, s, other.ID, "Bob's idea", "ideas", nil)

	t.Run("category with pagination", func(t *testing.T) {
		notes, total, err := s.Notes().ListNotes(ctx, store.NoteFilter{
			UserID: user.ID, Category: "ideas", Limit: 1, Offset: 0,
		})
		require.NoError(t, err)
		require.Len(t, notes, 1)
		require.EqualValues(t, 3, total)
	})

	t.Run("tag intersection is OR", func(t *testing.T) {
		notes, total, err := s.Notes().ListNotes(ctx, store.NoteFilter{
			UserID: user.ID, Tags: []string{"api", "db"}, Limit: 10,
		})
		require.NoError(t, err)
		require.EqualValues(t, 3, total)
		require.Len(t, notes, 3)
	})

	t.Run("search is case-insensitive", func(t *testing.T) {
		_, total, err := s.Notes().ListNotes(ctx, store.NoteFilter{
			UserID: user.ID, Search: "IDEA", Limit: 10,
		})
		require.NoError(t, err)
		require.EqualValues(t, 3, total)
	})

	t.Run("scope excludes other users", func(t *testing.T) {
		_, total, err := s.Notes().ListNotes(ctx, store.NoteFilter{
			UserID: other.ID, Limit: 10,
		})
		require.NoError(t, err)
		require.EqualValues(t, 1, total)
	})

	t.Run("anonymous pool sees all live notes", func(t *testing.T) {
		_, total, err := s.Notes().ListNotes(ctx, store.NoteFilter{Limit: 10})
		require.NoError(t, err)
		require.EqualValues(t, 5, total)
	})

	t.Run("sort ascending by title", func(t *testing.T) {
		notes, _, err := s.Notes().ListNotes(ctx, store.NoteFilter{
			UserID: user.ID, Sort: "title", Order: "asc", Limit: 10,
		})
		require.NoError(t, err)
		require.Equal(t, "Idea one", notes[0].Title)
	})
}

func TestUpdateNotePartial(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedUser(t, s, "alice@example.com")
	n := seedNote(t, s, user.ID, "Before", "ideas", []string{"a"})

	title := "After"
	archived := true
	err := s.Notes().UpdateNote(ctx, user.ID, n.ID, store.NoteUpdate{
		Title: &title, IsArchived: &archived,
	})
	require.NoError(t, err)

	got, err := s.Notes().GetNote(ctx, user.ID, n.ID)
	require.NoError(t, err)
	require.Equal(t, "After", got.Title)
	require.True(t, got.IsArchived)
	require.Equal(t, []string{"a"}, got.Tags, "untouched fields survive")
}

func TestDeleteNoteCrossUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := seedUser(t, s, "alice@example.com")
	bob := seedUser(t, s, "bob@example.com")
	n := seedNote(t, s, alice.ID, "Mine", "ideas", nil)

	err := s.Notes().DeleteNote(ctx, bob.ID, n.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	// Row still there for the owner.
	_, err = s.Notes().GetNote(ctx, alice.ID, n.ID)
	require.NoError(t, err)
}

func TestWithTxRollback(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedUser(t, s, "alice@example.com")

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
		if err := tx.Workflows().CreateStep(ctx, domain.WorkflowStep{
			ID: idx.New().String(), WorkflowID: wfID, Title: "Step 1",
			StepOrder: 1, Status: domain.StepStatusPending,
			CreatedAt: now, UpdatedAt: now,
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Workflows().GetWorkflow(ctx, user.ID, wfID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWorkflowCascadeDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedUser(t, s, "alice@example.com")

	now := time.Now().UTC()
	wfID := idx.New().String()
	require.NoError(t, s.Workflows().CreateWorkflow(ctx, domain.Workflow{
		ID: wfID, UserID: user.ID, Title: "WF", Category: "projects",
		Priority: domain.PriorityHigh, Status: domain.StatusActive,
		CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, s.Workflows().CreateStep(ctx, domain.WorkflowStep{
		ID: idx.New().String(), WorkflowID: wfID, Title: "Step",
		StepOrder: 1, Status: domain.StepStatusPending,
		CreatedAt: now, UpdatedAt: now,
	}))

	require.NoError(t, s.Workflows().DeleteWorkflow(ctx, user.ID, wfID))

	steps, err := s.Workflows().ListSteps(ctx, wfID)
	require.NoError(t, err)
	require.Empty(t, steps)
}

func TestBulkUpdateCategory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := seedUser(t, s, "alice@example.com")
	bob := seedUser(t, s, "bob@example.com")

	n1 := seedNote(t, s, alice.ID, "One", "ideas", nil)
	n2 := seedNote(t, s, alice.ID, "Two", "ideas", nil)
	theirs := seedNote(t, s, bob.ID, "Theirs", "ideas", nil)

	count, err := s.Notes().BulkUpdateCategory(ctx, alice.ID,
		[]string{n1.ID, n2.ID, theirs.ID}, "projects")
	require.NoError(t, err)
	require.EqualValues(t, 2, count, "other users' notes are untouched")

	got, err := s.Notes().GetNote(ctx, bob.ID, theirs.ID)
	require.NoError(t, err)
	require.Equal(t, "ideas", got.Category)
}

func TestExistsBySourceURL(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedUser(t, s, "alice@example.com")

	url := "https://example.com/article"
	now := time.Now().UTC()
	require.NoError(t, s.Notes().CreateNote(ctx, domain.Note{
		ID: idx.New().String(), UserID: user.ID, Title: "Imported",
		Content: "x", Category: "resources", SourceURL: &url,
		CreatedAt: now, UpdatedAt: now,
	}))

	exists, err := s.Notes().ExistsBySourceURL(ctx, user.ID, url)
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = s.Notes().ExistsBySourceURL(ctx, user.ID, "https://example.com/other")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestNoteStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedUser(t, s, "alice@example.com")

	seedNote(t, s, user.ID, "A", "ideas", []string{"go", "api"})
	seedNote(t, s, user.ID, "B", "ideas", []string{"go"})
	seedNote(t, s, user.ID, "C", "projects", nil)

	stats, err := s.Notes().GetNoteStats(ctx, user.ID)
	require.NoError(t, err)
	require.EqualValues(t, 3, stats.Total)
	require.EqualValues(t, 2, stats.ByCategory["ideas"])
	require.EqualValues(t, 1, stats.ByCategory["projects"])
	require.NotNil(t, stats.LastUpdated)
	require.Equal(t, domain.TagCount{Tag: "go", Count: 2}, stats.TagCounts[0])
}

func TestTablePresence(t *testing.T) {
	s := newTestStore(t)

	presence, err := s.TablePresence(context.Background(),
		append([]string{"no_such_table"}, store.RequiredTables...))
	require.NoError(t, err)

	for _, table := range store.RequiredTables {
		require.True(t, presence[table], table)
	}
	require.False(t, presence["no_such_table"])
}

func TestCategoriesRepo(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedUser(t, s, "alice@example.com")

	now := time.Now().UTC()
	c := domain.Category{
		ID: idx.New().String(), UserID: user.ID, Name: "recipes",
		DisplayName: "Recipes", Description: "Cooking", IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.Categories().CreateCategory(ctx, c))

	err := s.Categories().CreateCategory(ctx, domain.Category{
		ID: idx.New().String(), UserID: user.ID, Name: "recipes",
		DisplayName: "Dup", IsActive: true, CreatedAt: now, UpdatedAt: now,
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	display := "Kitchen"
	require.NoError(t, s.Categories().UpdateCategory(ctx, user.ID, "recipes", &display, nil))

	got, err := s.Categories().GetCategoryByName(ctx, user.ID, "recipes")
	require.NoError(t, err)
	require.Equal(t, "Kitchen", got.DisplayName)
	require.Equal(t, "Cooking", got.Description)

	require.NoError(t, s.Categories().DeleteCategory(ctx, user.ID, "recipes"))
	_, err = s.Categories().GetCategoryByName(ctx, user.ID, "recipes")
	require.ErrorIs(t, err, store.ErrNotFound)
}
