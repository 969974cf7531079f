package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/mydigitalspace/knowledgehub/internal/hub/domain"
	"github.com/mydigitalspace/knowledgehub/internal/hub/store"
)

type categoriesRepo struct {
	db dbtx
}

const categoryColumns = `id, user_id, name, display_name, description, is_active, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }) (domain.Category, error) {
	var c domain.Category
	err := row.Scan(
		&c.ID, &c.UserID, &c.Name, &c.DisplayName, &c.Description,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func (r *categoriesRepo) ListCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM user_categories WHERE user_id = ? AND is_active = 1 ORDER BY name`,
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
	c, err := scanCategory(r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM user_categories WHERE user_id = ? AND name = ? AND is_active = 1`,
		userID, name))
	if err != nil {
		return domain.Category{}, mapNotFound(err)
	}
	return c, nil
}

func (r *categoriesRepo) CreateCategory(ctx context.Context, c domain.Category) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_categories (id, user_id, name, display_name, description, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Name, c.DisplayName, c.Description, c.IsActive,
		c.CreatedAt, c.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *categoriesRepo) UpdateCategory(ctx context.Context, userID, name string, displayName, description *string) error {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if displayName != nil {
		sets = append(sets, "display_name = ?")
		args = append(args, *displayName)
	}
	if description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *description)
	}
	args = append(args, userID, name)

	res, err := r.db.ExecContext(ctx,
		`UPDATE user_categories SET `+strings.Join(sets, ", ")+` WHERE user_id = ? AND name = ?`,
		args...)
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}

func (r *categoriesRepo) DeleteCategory(ctx context.Context, userID, name string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM user_categories WHERE user_id = ? AND name = ?`, userID, name)
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}
