package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mydigitalspace/knowledgehub/internal/hub/domain"
	"github.com/mydigitalspace/knowledgehub/internal/hub/service"
	"github.com/mydigitalspace/knowledgehub/internal/hub/store"
)

func registerUser(t *testing.T, s store.Store, email string) domain.User {
	t.Helper()

	auth := newAuthService(t, s)
	user, _, err := auth.Register(context.Background(), "Test User", email, "secret1", "secret1")
	require.NoError(t, err)
	return user
}

func TestCreateNoteNormalizesTags(t *testing.T) {
	s := newTestStore(t)
	notes := &service.NoteService{Store: s}
	ctx := context.Background()
	user := registerUser(t, s, "a@b.com")

	note, err := notes.Create(ctx, user.ID, service.NoteInput{
		Title:    "T",
		Content:  "C",
		Category: "ideas",
		Tags:     []string{"x", "x", " y "},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"x", "y"}, note.Tags)
}

func TestCreateNoteRejectsUnknownCategory(t *testing.T) {
	s := newTestStore(t)
	notes := &service.NoteService{Store: s}
	categories := &service.CategoryService{Store: s}
	ctx := context.Background()
	user := registerUser(t, s, "a@b.com")

	_, err := notes.Create(ctx, user.ID, service.NoteInput{
		Title: "T", Content: "C", Category: "no-such-category",
	})
	require.True(t, service.IsValidation(err))

	// Custom categories become valid once created.
	_, err = categories.Create(ctx, user.ID, "recipes", "Recipes", "")
	require.NoError(t, err)

	note, err := notes.Create(ctx, user.ID, service.NoteInput{
		Title: "T", Content: "C", Category: "recipes",
	})
	require.NoError(t, err)
	require.Equal(t, "recipes", note.Category)

	// Other users cannot use it.
	other := registerUser(t, s, "other@b.com")
	_, err = notes.Create(ctx, other.ID, service.NoteInput{
		Title: "T", Content: "C", Category: "recipes",
	})
	require.True(t, service.IsValidation(err))
}

func TestUpdateNote(t *testing.T) {
	s := newTestStore(t)
	notes := &service.NoteService{Store: s}
	ctx := context.Background()
	user := registerUser(t, s, "a@b.com")

	note, err := notes.Create(ctx, user.ID, service.NoteInput{
		Title: "Before", Content: "C", Category: "ideas",
	})
	require.NoError(t, err)

	_, err = notes.Update(ctx, user.ID, note.ID, store.NoteUpdate{})
	require.ErrorIs(t, err, service.ErrEmptyUpdate)

	title := "After"
	updated, err := notes.Update(ctx, user.ID, note.ID, store.NoteUpdate{Title: &title})
	require.NoError(t, err)
	require.Equal(t, "After", updated.Title)
	require.False(t, updated.UpdatedAt.Before(note.UpdatedAt))
}

func TestDuplicateNote(t *testing.T) {
	s := newTestStore(t)
	notes := &service.NoteService{Store: s}
	ctx := context.Background()
	user := registerUser(t, s, "a@b.com")

	url := "https://example.com"
	sourceType := domain.SourceTypeQuickCapture
	note, err := notes.Create(ctx, user.ID, service.NoteInput{
		Title: "Original", Content: "C", Category: "ideas",
		Tags: []string{"keep"}, SourceURL: &url, SourceType: &sourceType,
	})
	require.NoError(t, err)

	copied, err := notes.Duplicate(ctx, user.ID, note.ID)
	require.NoError(t, err)
	require.Equal(t, "Original (Copy)", copied.Title)
	require.Equal(t, []string{"keep"}, copied.Tags)
	require.Nil(t, copied.SourceURL, "source metadata does not follow the copy")
	require.NotEqual(t, note.ID, copied.ID)
}

func TestDeleteNoteNotOwned(t *testing.T) {
	s := newTestStore(t)
	notes := &service.NoteService{Store: s}
	ctx := context.Background()
	alice := registerUser(t, s, "alice@b.com")
	bob := registerUser(t, s, "bob@b.com")

	note, err := notes.Create(ctx, alice.ID, service.NoteInput{
		Title: "Mine", Content: "C", Category: "ideas",
	})
	require.NoError(t, err)

	err = notes.Delete(ctx, bob.ID, note.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestNoteHTMLRendering(t *testing.T) {
	s := newTestStore(t)
	notes := &service.NoteService{Store: s}
	ctx := context.Background()
	user := registerUser(t, s, "a@b.com")

	note, err := notes.Create(ctx, user.ID, service.NoteInput{
		Title: "T", Content: "# Heading\n\n**bold**", Category: "ideas",
	})
	require.NoError(t, err)

	_, html, err := notes.GetHTML(ctx, user.ID, note.ID)
	require.NoError(t, err)
	require.Contains(t, html, "<h1>Heading</h1>")
	require.Contains(t, html, "<strong>bold</strong>")
}
