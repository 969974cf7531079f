package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mydigitalspace/knowledgehub/internal/hub/domain"
	"github.com/mydigitalspace/knowledgehub/internal/hub/store"
)

type notesRepo struct {
	db dbtx
}

const noteColumns = `id, user_id, title, content, category, tags, source_url, source_type, source_title, is_archived, created_at, updated_at`

var noteSortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"title":      "title",
}

func scanNote(row pgx.Row) (domain.Note, error) {
	var n domain.Note
	err := row.Scan(
		&n.ID, &n.UserID, &n.Title, &n.Content, &n.Category, &n.Tags,
		&n.SourceURL, &n.SourceType, &n.SourceTitle, &n.IsArchived,
		&n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return domain.Note{}, err
	}
	n.Tags = emptyIfNil(n.Tags)
	return n, nil
}

func (r *notesRepo) GetNote(ctx context.Context, userID, id string) (domain.Note, error) {
	n, err := scanNote(r.db.QueryRow(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return domain.Note{}, mapNotFound(err)
	}
	return n, nil
}

func (r *notesRepo) CreateNote(ctx context.Context, n domain.Note) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO notes (id, user_id, title, content, category, tags, source_url, source_type, source_title, is_archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		n.ID, n.UserID, n.Title, n.Content, n.Category, emptyIfNil(n.Tags),
		n.SourceURL, n.SourceType, n.SourceTitle, n.IsArchived,
		n.CreatedAt, n.UpdatedAt,
	)
	return err
}

func (r *notesRepo) UpdateNote(ctx context.Context, userID, id string, upd store.NoteUpdate) error {
	var (
		sets []string
		a    argList
	)
	sets = append(sets, "updated_at = "+a.add(time.Now().UTC()))

	if upd.Title != nil {
		sets = append(sets, "title = "+a.add(*upd.Title))
	}
	if upd.Content != nil {
		sets = append(sets, "content = "+a.add(*upd.Content))
	}
	if upd.Category != nil {
		sets = append(sets, "category = "+a.add(*upd.Category))
	}
	if upd.Tags != nil {
		sets = append(sets, "tags = "+a.add(emptyIfNil(*upd.Tags)))
	}
	if upd.IsArchived != nil {
		sets = append(sets, "is_archived = "+a.add(*upd.IsArchived))
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE notes SET `+strings.Join(sets, ", ")+
			` WHERE id = `+a.add(id)+` AND user_id = `+a.add(userID),
		a.args...)
	if err != nil {
		return err
	}
	return requireRowChanged(tag)
}

func (r *notesRepo) DeleteNote(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM notes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return requireRowChanged(tag)
}

// noteWhere assembles the predicate list in a fixed order: scope, archived,
// category, tag intersection, free-text search. The same predicates feed
// both the page SELECT and the COUNT.
func noteWhere(f store.NoteFilter, a *argList) string {
	var where []string

	if f.UserID != "" {
		where = append(where, "user_id = "+a.add(f.UserID))
		where = append(where, "is_archived = "+a.add(f.Archived))
	} else {
		// Anonymous pool: everything live, never archived rows.
		where = append(where, "NOT is_archived")
	}

	if f.Category != "" {
		where = append(where, "category = "+a.add(f.Category))
	}

	if len(f.Tags) > 0 {
		// Array overlap is exactly "has at least one requested tag".
		where = append(where, "tags && "+a.add(f.Tags))
	}

	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		where = append(where, "(title ILIKE "+a.add(pattern)+" OR content ILIKE "+a.add(pattern)+")")
	}

	return strings.Join(where, " AND ")
}

func (r *notesRepo) ListNotes(ctx context.Context, f store.NoteFilter) ([]domain.Note, int64, error) {
	var count argList
	where := noteWhere(f, &count)

	var total int64
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notes WHERE `+where, count.args...).Scan(&total); err != nil {
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

	var page argList
	where = noteWhere(f, &page)
	rows, err := r.db.Query(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE `+where+
			` ORDER BY `+sortCol+` `+dir+
			` LIMIT `+page.add(limit)+` OFFSET `+page.add(offset),
		page.args...)
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
	scope := "NOT is_archived"
	var scopeArgs []any
	if userID != "" {
		scope = "user_id = $1 AND NOT is_archived"
		scopeArgs = []any{userID}
	}

	stats := domain.NoteStats{ByCategory: make(map[string]int64)}

	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*), MAX(updated_at) FROM notes WHERE `+scope, scopeArgs...).
		Scan(&stats.Total, &stats.LastUpdated)
	if err != nil {
		return domain.NoteStats{}, err
	}

	rows, err := r.db.Query(ctx,
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

	tagRows, err := r.db.Query(ctx,
		`SELECT tag, COUNT(*) AS uses
		 FROM notes, unnest(tags) AS tag
		 WHERE `+scope+`
		 GROUP BY tag
		 ORDER BY uses DESC, tag ASC
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
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM notes WHERE user_id = $1 AND source_url = $2)`,
		userID, sourceURL).Scan(&exists)
	return exists, err
}

func (r *notesRepo) CountByCategory(ctx context.Context, userID, category string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notes WHERE user_id = $1 AND category = $2`,
		userID, category).Scan(&count)
	return count, err
}

func (r *notesRepo) ListUsedCategories(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT category FROM notes WHERE user_id = $1 ORDER BY category`, userID)
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

	tag, err := r.db.Exec(ctx,
		`UPDATE notes SET category = $1, updated_at = $2 WHERE user_id = $3 AND id = ANY($4)`,
		newCategory, time.Now().UTC(), userID, noteIDs)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
