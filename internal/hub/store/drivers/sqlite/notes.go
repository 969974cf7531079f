package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/mydigitalspace/knowledgehub/internal/hub/domain"
	"github.com/mydigitalspace/knowledgehub/internal/hub/store"
)

type notesRepo struct {
	db dbtx
}

const noteColumns = `id, user_id, title, content, category, tags, source_url, source_type, source_title, is_archived, created_at, updated_at`

// noteSortColumns maps allow-listed sort names to columns. Client input
// never reaches the identifier position directly.
var noteSortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"title":      "title",
}

func scanNote(row interface{ Scan(...any) error }) (domain.Note, error) {
	var (
		n                                  domain.Note
		rawTags                            string
		sourceURL, sourceType, sourceTitle sql.NullString
	)
	err := row.Scan(
		&n.ID, &n.UserID, &n.Title, &n.Content, &n.Category, &rawTags,
		&sourceURL, &sourceType, &sourceTitle, &n.IsArchived,
		&n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return domain.Note{}, err
	}
	if n.Tags, err = decodeTags(rawTags); err != nil {
		return domain.Note{}, err
	}
	n.SourceURL = mapNullStringPtr(sourceURL)
	n.SourceType = mapNullStringPtr(sourceType)
	n.SourceTitle = mapNullStringPtr(sourceTitle)
	return n, nil
}

func (r *notesRepo) GetNote(ctx context.Context, userID, id string) (domain.Note, error) {
	n, err := scanNote(r.db.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil {
		return domain.Note{}, mapNotFound(err)
	}
	return n, nil
}

func (r *notesRepo) CreateNote(ctx context.Context, n domain.Note) error {
	tags, err := encodeTags(n.Tags)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO notes (id, user_id, title, content, category, tags, source_url, source_type, source_title, is_archived, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.Title, n.Content, n.Category, tags,
		mapOptionalString(n.SourceURL), mapOptionalString(n.SourceType),
		mapOptionalString(n.SourceTitle), n.IsArchived, n.CreatedAt, n.UpdatedAt,
	)
	return err
}

func (r *notesRepo) UpdateNote(ctx context.Context, userID, id string, upd store.NoteUpdate) error {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if upd.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *upd.Content)
	}
	if upd.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *upd.Category)
	}
	if upd.Tags != nil {
		tags, err := encodeTags(*upd.Tags)
		if err != nil {
			return err
		}
		sets = append(sets, "tags = ?")
		args = append(args, tags)
	}
	if upd.IsArchived != nil {
		sets = append(sets, "is_archived = ?")
		args = append(args, *upd.IsArchived)
	}
	args = append(args, id, userID)

	res, err := r.db.ExecContext(ctx,
		`UPDATE notes SET `+strings.Join(sets, ", ")+` WHERE id = ? AND user_id = ?`, args...)
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}

func (r *notesRepo) DeleteNote(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM notes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}

// noteWhere assembles the predicate list in a fixed order: scope, archived,
// category, tag intersection, free-text search. The same predicates feed
// both the page SELECT and the COUNT.
func noteWhere(f store.NoteFilter) (string, []any) {
	var (
		where []string
		args  []any
	)

	if f.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
		where = append(where, "is_archived = ?")
		args = append(args, f.Archived)
	} else {
		// Anonymous pool: everything live, never archived rows.
		where = append(where, "is_archived = 0")
	}

	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}

	if len(f.Tags) > 0 {
		per := make([]string, len(f.Tags))
		for i, tag := range f.Tags {
			per[i] = "EXISTS (SELECT 1 FROM json_each(notes.tags) WHERE json_each.value = ?)"
			args = append(args, tag)
		}
		where = append(where, "("+strings.Join(per, " OR ")+")")
	}

	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		where = append(where, "(lower(title) LIKE ? OR lower(content) LIKE ?)")
		args = append(args, pattern, pattern)
	}

	return strings.Join(where, " AND "), args
}

func (r *notesRepo) ListNotes(ctx context.Context, f store.NoteFilter) ([]domain.Note, int64, error) {
	where, args := noteWhere(f)

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notes WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortCol, ok := noteSortColumns[f.Sort]
	if !ok {
		sortCol = "updated_at"
	}
	dir := "DESC"
	if f.Order == "asc" {
		dir = "ASC"
	}
	limit, offset := store.ClampPage(f.Limit, f.Offset)

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE `+where+
			` ORDER BY `+sortCol+` `+dir+` LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	notes := []domain.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, 0, err
		}
		notes = append(notes, n)
	}
	return notes, total, rows.Err()
}

func (r *notesRepo) GetNoteStats(ctx context.Context, userID string) (domain.NoteStats, error) {
	scope := "is_archived = 0"
	var scopeArgs []any
	if userID != "" {
		scope = "user_id = ? AND is_archived = 0"
		scopeArgs = []any{userID}
	}

	stats := domain.NoteStats{ByCategory: make(map[string]int64)}

	var lastUpdated sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), MAX(updated_at) FROM notes WHERE `+scope, scopeArgs...).
		Scan(&stats.Total, &lastUpdated)
	if err != nil {
		return domain.NoteStats{}, err
	}
	stats.LastUpdated = mapNullTimePtr(lastUpdated)

	rows, err := r.db.QueryContext(ctx,
		`SELECT category, COUNT(*) FROM notes WHERE `+scope+` GROUP BY category`, scopeArgs...)
	if err != nil {
		return domain.NoteStats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			category string
			count    int64
		)
		if err := rows.Scan(&category, &count); err != nil {
			return domain.NoteStats{}, err
		}
		stats.ByCategory[category] = count
	}
	if err := rows.Err(); err != nil {
		return domain.NoteStats{}, err
	}

	tagRows, err := r.db.QueryContext(ctx,
		`SELECT json_each.value, COUNT(*) AS uses
		 FROM notes, json_each(notes.tags)
		 WHERE `+scope+`
		 GROUP BY json_each.value
		 ORDER BY uses DESC, json_each.value ASC
		 LIMIT 20`, scopeArgs...)
	if err != nil {
		return domain.NoteStats{}, err
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var tc domain.TagCount
		if err := tagRows.Scan(&tc.Tag, &tc.Count); err != nil {
			return domain.NoteStats{}, err
		}
		stats.TagCounts = append(stats.TagCounts, tc)
	}
	return stats, tagRows.Err()
}

func (r *notesRepo) ExistsBySourceURL(ctx context.Context, userID, sourceURL string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM notes WHERE user_id = ? AND source_url = ?)`,
		userID, sourceURL).Scan(&exists)
	return exists, err
}

func (r *notesRepo) CountByCategory(ctx context.Context, userID, category string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notes WHERE user_id = ? AND category = ?`,
		userID, category).Scan(&count)
	return count, err
}

func (r *notesRepo) ListUsedCategories(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM notes WHERE user_id = ? ORDER BY category`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *notesRepo) BulkUpdateCategory(ctx context.Context, userID string, noteIDs []string, newCategory string) (int64, error) {
	if len(noteIDs) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?, ", len(noteIDs)-1) + "?"
	args := []any{newCategory, time.Now().UTC(), userID}
	for _, id := range noteIDs {
		args = append(args, id)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE notes SET category = ?, updated_at = ? WHERE user_id = ? AND id IN (`+placeholders+`)`,
		args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
