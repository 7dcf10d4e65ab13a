package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/models"
)

const categorySelect = "SELECT id, name, slug, description, created_at FROM categories"

func scanCategory(row pgx.Row) (models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt)
	return c, err
}

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.pool.Query(ctx, categorySelect+" ORDER BY name")
	if err != nil {
		return nil, backend.Fail("list categories", err)
	}
	cats, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Category, error) {
		return scanCategory(row)
	})
	if err != nil {
		return nil, backend.Fail("list categories", err)
	}
	return cats, nil
}

func (s *Store) getCategoryWhere(ctx context.Context, cond string, arg any) (*models.Category, error) {
	c, err := scanCategory(s.pool.QueryRow(ctx, categorySelect+" WHERE "+cond, arg))
	if isNoRows(err) {
		return nil, backend.NotFound("get category", "category")
	}
	if err != nil {
		return nil, backend.Fail("get category", err)
	}
	return &c, nil
}

func (s *Store) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	return s.getCategoryWhere(ctx, "id = $1", id)
}

func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return s.getCategoryWhere(ctx, "slug = $1", slug)
}

func (s *Store) CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	c := models.Category{ID: uuid.NewString(), Name: in.Name, Slug: in.Slug, Description: in.Description, CreatedAt: s.utcNow()}
	_, err := s.pool.Exec(ctx,
		"INSERT INTO categories (id, name, slug, description, created_at) VALUES ($1, $2, $3, $4, $5)",
		c.ID, c.Name, c.Slug, c.Description, c.CreatedAt)
	if err != nil {
		return nil, categoryWriteError("create category", err)
	}
	return &c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, id string, in models.CategoryInput) (*models.Category, error) {
	const op = "update category"
	tag, err := s.pool.Exec(ctx,
		"UPDATE categories SET name = $1, slug = $2, description = $3 WHERE id = $4",
		in.Name, in.Slug, in.Description, id)
	if err != nil {
		return nil, categoryWriteError(op, err)
	}
	if err := checkAffected(op, "category", tag); err != nil {
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

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM categories WHERE id = $1", id)
	if err != nil {
		return backend.Fail("delete category", err)
	}
	return checkAffected("delete category", "category", tag)
}
