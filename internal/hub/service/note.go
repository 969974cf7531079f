package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mydigitalspace/knowledgehub/internal/hub/domain"
	"github.com/mydigitalspace/knowledgehub/internal/hub/store"
	"github.com/mydigitalspace/knowledgehub/pkg/idx"
	"github.com/mydigitalspace/knowledgehub/pkg/markdownx"
)

type NoteService struct {
	Store store.Store
}

// NoteInput is the caller-supplied shape for creating a note.
type NoteInput struct {
	Title       string
	Content     string
	Category    string
	Tags        []string
	SourceURL   *string
	SourceType  *string
	SourceTitle *string
}

// List runs the filtered-listing engine for notes. The filter is assumed
// to carry validated sort/order values.
func (s *NoteService) List(ctx context.Context, f store.NoteFilter) ([]domain.Note, int64, error) {
	return s.Store.Notes().ListNotes(ctx, f)
}

// Get returns a single note owned by the user.
func (s *NoteService) Get(ctx context.Context, userID, id string) (domain.Note, error) {
	return s.Store.Notes().GetNote(ctx, userID, id)
}

// GetHTML returns the note's content rendered from Markdown.
func (s *NoteService) GetHTML(ctx context.Context, userID, id string) (domain.Note, string, error) {
	note, err := s.Store.Notes().GetNote(ctx, userID, id)
	if err != nil {
		return domain.Note{}, "", err
	}

	html, err := markdownx.Render([]byte(note.Content))
	if err != nil {
		return domain.Note{}, "", err
	}
	return note, string(html), nil
}

// Create validates and inserts a new note.
func (s *NoteService) Create(ctx context.Context, userID string, in NoteInput) (domain.Note, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return domain.Note{}, invalidf("Title is required")
	}
	if in.Content == "" {
		return domain.Note{}, invalidf("Content is required")
	}
	if in.Category == "" {
		in.Category = "ideas"
	}
	if err := s.validateCategory(ctx, userID, in.Category); err != nil {
		return domain.Note{}, err
	}

	now := time.Now().UTC()
	note := domain.Note{
		ID:          idx.New().String(),
		UserID:      userID,
		Title:       in.Title,
		Content:     in.Content,
		Category:    in.Category,
		Tags:        domain.NormalizeTags(in.Tags),
		SourceURL:   in.SourceURL,
		SourceType:  in.SourceType,
		SourceTitle: in.SourceTitle,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Store.Notes().CreateNote(ctx, note); err != nil {
		return domain.Note{}, err
	}
	return note, nil
}

// Update applies a partial mutation. At least one field must be supplied.
func (s *NoteService) Update(ctx context.Context, userID, id string, upd store.NoteUpdate) (domain.Note, error) {
	if upd.Empty() {
		return domain.Note{}, ErrEmptyUpdate
	}

	if upd.Title != nil {
		trimmed := strings.TrimSpace(*upd.Title)
		if trimmed == "" {
			return domain.Note{}, invalidf("Title cannot be empty")
		}
		upd.Title = &trimmed
	}
	if upd.Category != nil {
		if err := s.validateCategory(ctx, userID, *upd.Category); err != nil {
			return domain.Note{}, err
		}
	}
	if upd.Tags != nil {
		normalized := domain.NormalizeTags(*upd.Tags)
		upd.Tags = &normalized
	}

	if err := s.Store.Notes().UpdateNote(ctx, userID, id, upd); err != nil {
		return domain.Note{}, err
	}
	return s.Store.Notes().GetNote(ctx, userID, id)
}

// Delete removes a note owned by the user.
func (s *NoteService) Delete(ctx context.Context, userID, id string) error {
	return s.Store.Notes().DeleteNote(ctx, userID, id)
}

// Duplicate copies a note under a " (Copy)" title.
func (s *NoteService) Duplicate(ctx context.Context, userID, id string) (domain.Note, error) {
	original, err := s.Store.Notes().GetNote(ctx, userID, id)
	if err != nil {
		return domain.Note{}, err
	}

	now := time.Now().UTC()
	copied := original
	copied.ID = idx.New().String()
	copied.Title = original.Title + " (Copy)"
	copied.SourceURL = nil
	copied.SourceType = nil
	copied.SourceTitle = nil
	copied.IsArchived = false
	copied.CreatedAt = now
	copied.UpdatedAt = now

	if err := s.Store.Notes().CreateNote(ctx, copied); err != nil {
		return domain.Note{}, err
	}
	return copied, nil
}

// Stats aggregates counts for the stats endpoint. An empty userID scopes to
// the shared pool.
func (s *NoteService) Stats(ctx context.Context, userID string) (domain.NoteStats, error) {
	return s.Store.Notes().GetNoteStats(ctx, userID)
}

// validateCategory accepts predefined categories and the user's own active
// custom ones.
func (s *NoteService) validateCategory(ctx context.Context, userID, category string) error {
	if domain.IsPredefinedCategory(category) {
		return nil
	}

	_, err := s.Store.Categories().GetCategoryByName(ctx, userID, category)
	if errors.Is(err, store.ErrNotFound) {
		return invalidf("Unknown category %q", category)
	}
	return err
}
