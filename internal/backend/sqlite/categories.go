package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/models"
)

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, slug, description, created_at FROM categories ORDER BY name")
	if err != nil {
		return nil, backend.Fail("list categories", err)
	}
	defer rows.Close()

	var cats []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt); err != nil {
			return nil, backend.Fail("list categories", err)
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, backend.Fail("list categories", err)
	}
	return cats, nil
}

func (s *Store) getCategoryWhere(ctx context.Context, cond string, arg any) (*models.Category, error) {
	var c models.Category
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, slug, description, created_at FROM categories WHERE "+cond, arg,
	).Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, backend.NotFound("get category", "category")
	}
	if err != nil {
		return nil, backend.Fail("get category", err)
	}
	return &c, nil
}

func (s *Store) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	return s.getCategoryWhere(ctx, "id = ?", id)
}

func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return s.getCategoryWhere(ctx, "slug = ?", slug)
}

func (s *Store) CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	c := models.Category{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		CreatedAt:   s.utcNow(),
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (id, name, slug, description, created_at) VALUES (?, ?, ?, ?, ?)",
		c.ID, c.Name, c.Slug, c.Description, c.CreatedAt)
	if err != nil {
		return nil, categoryWriteError("create category", err)
	}
	return &c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, id string, in models.CategoryInput) (*models.Category, error) {
	const op = "update category"
	res, err := s.db.ExecContext(ctx,
		"UPDATE categories SET name = ?, slug = ?, description = ? WHERE id = ?",
		in.Name, in.Slug, in.Description, id)
	if err != nil {
		return nil, categoryWriteError(op, err)
	}
	if err := checkAffected(op, "category", res); err != nil {
		return nil, err
	}
	return s.GetCategory(ctx, id)
}

func categoryWriteError(op string, err error) error {
	if isUniqueViolation(err) {
		return &backend.Error{Op: op, Message: "a category with this name or slug already exists", Err: err}
	}
	return backend.Fail(op, err)
}

// DeleteCategory removes the category; its posts become uncategorized.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return backend.Fail("delete category", err)
	}
	return checkAffected("delete category", "category", res)
}
