package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mydigitalspace/knowledgehub/internal/hub/domain"
	"github.com/mydigitalspace/knowledgehub/internal/hub/store"
)

type categoriesRepo struct {
	db dbtx
}

const categoryColumns = `id, user_id, name, display_name, description, is_active, created_at, updated_at`

func scanCategory(row pgx.Row) (domain.Category, error) {
	var c domain.Category
	err := row.Scan(
		&c.ID, &c.UserID, &c.Name, &c.DisplayName, &c.Description,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func (r *categoriesRepo) ListCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+categoryColumns+` FROM user_categories WHERE user_id = $1 AND is_active ORDER BY name`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *categoriesRepo) GetCategoryByName(ctx context.Context, userID, name string) (domain.Category, error) {
	c, err := scanCategory(r.db.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM user_categories WHERE user_id = $1 AND name = $2 AND is_active`,
		userID, name))
	if err != nil {
		return domain.Category{}, mapNotFound(err)
	}
	return c, nil
}

func (r *categoriesRepo) CreateCategory(ctx context.Context, c domain.Category) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_categories (id, user_id, name, display_name, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.UserID, c.Name, c.DisplayName, c.Description, c.IsActive,
		c.CreatedAt, c.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *categoriesRepo) UpdateCategory(ctx context.Context, userID, name string, displayName, description *string) error {
	var (
		sets []string
		a    argList
	)
	sets = append(sets, "updated_at = "+a.add(time.Now().UTC()))

	if displayName != nil {
		sets = append(sets, "display_name = "+a.add(*displayName))
	}
	if description != nil {
		sets = append(sets, "description = "+a.add(*description))
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE user_categories SET `+strings.Join(sets, ", ")+
			` WHERE user_id = `+a.add(userID)+` AND name = `+a.add(name),
		a.args...)
	if err != nil {
		return err
	}
	return requireRowChanged(tag)
}

func (r *categoriesRepo) DeleteCategory(ctx context.Context, userID, name string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM user_categories WHERE user_id = $1 AND name = $2`, userID, name)
	if err != nil {
		return err
	}
	return requireRowChanged(tag)
}
