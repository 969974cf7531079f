package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/mydigitalspace/knowledgehub/internal/hub/domain"
	"github.com/mydigitalspace/knowledgehub/internal/hub/store"
	"github.com/mydigitalspace/knowledgehub/pkg/idx"
)

type CategoryService struct {
	Store store.Store
}

// CategoryView is the merged category catalog: predefined names, names
// referenced by existing notes, and the user's custom categories with
// their detail rows.
type CategoryView struct {
	Names  []string
	Custom []domain.Category
}

// ListAll merges predefined, note-used, and custom categories.
func (s *CategoryService) ListAll(ctx context.Context, userID string) (CategoryView, error) {
	used, err := s.Store.Notes().ListUsedCategories(ctx, userID)
	if err != nil {
		return CategoryView{}, err
	}

	custom, err := s.Store.Categories().ListCategories(ctx, userID)
	if err != nil {
		return CategoryView{}, err
	}

	names := append([]string{}, domain.PredefinedCategories...)
	for _, name := range used {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	for _, c := range custom {
		if !slices.Contains(names, c.Name) {
			names = append(names, c.Name)
		}
	}

	return CategoryView{Names: names, Custom: custom}, nil
}

// Create adds a custom category for the user.
func (s *CategoryService) Create(ctx context.Context, userID, name, displayName, description string) (domain.Category, error) {
	name = strings.TrimSpace(name)
	displayName = strings.TrimSpace(displayName)

	if !domain.ValidCategoryName(name) {
		return domain.Category{}, invalidf("Category name must be 1-50 lowercase letters, digits, or hyphens")
	}
	if domain.IsPredefinedCategory(name) {
		return domain.Category{}, invalidf("Category %q is built in", name)
	}
	if displayName == "" {
		return domain.Category{}, invalidf("Display name is required")
	}

	now := time.Now().UTC()
	category := domain.Category{
		ID:          idx.New().String(),
		UserID:      userID,
		Name:        name,
		DisplayName: displayName,
		Description: description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Store.Categories().CreateCategory(ctx, category); err != nil {
		return domain.Category{}, err
	}
	return category, nil
}

// Update changes the display name and/or description of a custom category.
func (s *CategoryService) Update(ctx context.Context, userID, name string, displayName, description *string) (domain.Category, error) {
	if displayName == nil && description == nil {
		return domain.Category{}, ErrEmptyUpdate
	}
	if displayName != nil {
		trimmed := strings.TrimSpace(*displayName)
		if trimmed == "" {
			return domain.Category{}, invalidf("Display name cannot be empty")
		}
		displayName = &trimmed
	}

	if err := s.Store.Categories().UpdateCategory(ctx, userID, name, displayName, description); err != nil {
		return domain.Category{}, err
	}
	return s.Store.Categories().GetCategoryByName(ctx, userID, name)
}

// Delete removes a custom category. Predefined names are rejected, as is
// deleting a category that notes still use.
func (s *CategoryService) Delete(ctx context.Context, userID, name string) error {
	if domain.IsPredefinedCategory(name) {
		return invalidf("Category %q is built in and cannot be deleted", name)
	}

	count, err := s.Store.Notes().CountByCategory(ctx, userID, name)
	if err != nil {
		return err
	}
	if count > 0 {
		return invalidf("Category %q is still used by %d notes", name, count)
	}

	return s.Store.Categories().DeleteCategory(ctx, userID, name)
}

// BulkUpdate moves a set of notes to a new category in one transaction and
// returns the number of notes changed.
func (s *CategoryService) BulkUpdate(ctx context.Context, userID string, noteIDs []string, newCategory string) (int64, error) {
	if len(noteIDs) == 0 {
		return 0, invalidf("noteIds is required")
	}
	if newCategory == "" {
		return 0, invalidf("newCategory is required")
	}

	var updated int64
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if !domain.IsPredefinedCategory(newCategory) {
			if _, err := tx.Categories().GetCategoryByName(ctx, userID, newCategory); err != nil {
				return invalidf("Unknown category %q", newCategory)
			}
		}

		var err error
		updated, err = tx.Notes().BulkUpdateCategory(ctx, userID, noteIDs, newCategory)
		return err
	})
	return updated, err
}
