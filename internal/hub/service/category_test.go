package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mydigitalspace/knowledgehub/internal/hub/service"
	"github.com/mydigitalspace/knowledgehub/internal/hub/store"
)

func TestCategoryListMergesSources(t *testing.T) {
	s := newTestStore(t)
	categories := &service.CategoryService{Store: s}
	notes := &service.NoteService{Store: s}
	ctx := context.Background()
	user := registerUser(t, s, "a@b.com")

	_, err := categories.Create(ctx, user.ID, "recipes", "Recipes", "Cooking notes")
	require.NoError(t, err)
	_, err = notes.Create(ctx, user.ID, service.NoteInput{
		Title: "T", Content: "C", Category: "learning",
	})
	require.NoError(t, err)

	view, err := categories.ListAll(ctx, user.ID)
	require.NoError(t, err)
	require.Contains(t, view.Names, "ideas")
	require.Contains(t, view.Names, "learning")
	require.Contains(t, view.Names, "recipes")
	require.Len(t, view.Custom, 1)
	require.Equal(t, "Recipes", view.Custom[0].DisplayName)
}

func TestCategoryCreateGuards(t *testing.T) {
	s := newTestStore(t)
	categories := &service.CategoryService{Store: s}
	ctx := context.Background()
	user := registerUser(t, s, "a@b.com")

	_, err := categories.Create(ctx, user.ID, "Bad Name!", "X", "")
	require.True(t, service.IsValidation(err))

	_, err = categories.Create(ctx, user.ID, "ideas", "X", "")
	require.True(t, service.IsValidation(err), "predefined names are reserved")

	_, err = categories.Create(ctx, user.ID, "recipes", "Recipes", "")
	require.NoError(t, err)

	_, err = categories.Create(ctx, user.ID, "recipes", "Again", "")
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestCategoryDeleteGuards(t *testing.T) {
	s := newTestStore(t)
	categories := &service.CategoryService{Store: s}
	notes := &service.NoteService{Store: s}
	ctx := context.Background()
	user := registerUser(t, s, "a@b.com")

	err := categories.Delete(ctx, user.ID, "ideas")
	require.True(t, service.IsValidation(err), "predefined categories cannot be deleted")

	_, err = categories.Create(ctx, user.ID, "recipes", "Recipes", "")
	require.NoError(t, err)
	note, err := notes.Create(ctx, user.ID, service.NoteInput{
		Title: "T", Content: "C", Category: "recipes",
	})
	require.NoError(t, err)

	err = categories.Delete(ctx, user.ID, "recipes")
	require.True(t, service.IsValidation(err), "in-use categories cannot be deleted")

	require.NoError(t, notes.Delete(ctx, user.ID, note.ID))
	require.NoError(t, categories.Delete(ctx, user.ID, "recipes"))
}

func TestCategoryBulkUpdate(t *testing.T) {
	s := newTestStore(t)
	categories := &service.CategoryService{Store: s}
	notes := &service.NoteService{Store: s}
	ctx := context.Background()
	user := registerUser(t, s, "a@b.com")

	n1, err := notes.Create(ctx, user.ID, service.NoteInput{Title: "A", Content: "C", Category: "ideas"})
	require.NoError(t, err)
	n2, err := notes.Create(ctx, user.ID, service.NoteInput{Title: "B", Content: "C", Category: "ideas"})
	require.NoError(t, err)

	updated, err := categories.BulkUpdate(ctx, user.ID, []string{n1.ID, n2.ID}, "projects")
	require.NoError(t, err)
	require.EqualValues(t, 2, updated)

	got, err := notes.Get(ctx, user.ID, n1.ID)
	require.NoError(t, err)
	require.Equal(t, "projects", got.Category)

	// Unknown target categories fail before any note moves.
	_, err = categories.BulkUpdate(ctx, user.ID, []string{n1.ID}, "nope")
	require.True(t, service.IsValidation(err))

	got, err = notes.Get(ctx, user.ID, n1.ID)
	require.NoError(t, err)
	require.Equal(t, "projects", got.Category)
}
