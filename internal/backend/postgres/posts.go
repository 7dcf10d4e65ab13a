package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/models"
)

const postSelect = `
	SELECT p.id, p.title, p.slug, p.content, p.excerpt, p.status, p.category_id,
		COALESCE(p.author_id, ''), p.view_count, p.featured_image, p.published_at,
		p.created_at, p.updated_at, COALESCE(pr.full_name, ''),
		c.id, c.name, c.slug, c.description, c.created_at
	FROM posts p
	LEFT JOIN profiles pr ON pr.id = p.author_id
	LEFT JOIN categories c ON c.id = p.category_id`

func scanPost(row pgx.Row) (models.Post, error) {
	var (
		p        models.Post
		cID      *string
		cName    *string
		cSlug    *string
		cDesc    *string
		cCreated *time.Time
	)
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.Status, &p.CategoryID,
		&p.AuthorID, &p.ViewCount, &p.FeaturedImage, &p.PublishedAt,
		&p.CreatedAt, &p.UpdatedAt, &p.AuthorName,
		&cID, &cName, &cSlug, &cDesc, &cCreated)
	if err != nil {
		return p, err
	}
	if cID != nil {
		p.Category = &models.Category{ID: *cID, Name: *cName, Slug: *cSlug, Description: *cDesc, CreatedAt: *cCreated}
	}
	return p, nil
}

func (s *Store) ListPosts(ctx context.Context, f models.PostFilter) ([]models.Post, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("p.status = $%d", len(args)))
	}
	if f.CategorySlug != "" {
		args = append(args, f.CategorySlug)
		where = append(where, fmt.Sprintf("c.slug = $%d", len(args)))
	}
	q := postSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY p.created_at DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, backend.Fail("list posts", err)
	}
	posts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Post, error) {
		return scanPost(row)
	})
	if err != nil {
		return nil, backend.Fail("list posts", err)
	}
	return posts, nil
}

func (s *Store) getPostWhere(ctx context.Context, cond string, arg any) (*models.Post, error) {
	p, err := scanPost(s.pool.QueryRow(ctx, postSelect+" WHERE "+cond, arg))
	if isNoRows(err) {
		return nil, backend.NotFound("get post", "post")
	}
	if err != nil {
		return nil, backend.Fail("get post", err)
	}
	return &p, nil
}

func (s *Store) GetPost(ctx context.Context, id string) (*models.Post, error) {
	return s.getPostWhere(ctx, "p.id = $1", id)
}

func (s *Store) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.getPostWhere(ctx, "p.slug = $1", slug)
}

func (s *Store) CreatePost(ctx context.Context, in models.PostInput) (*models.Post, error) {
	if in.Status == "" {
		in.Status = models.PostDraft
	}
	id := uuid.NewString()
	now := s.utcNow()
	var published *time.Time
	if in.Status == models.PostPublished {
		published = &now
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO posts (id, title, slug, content, excerpt, status, category_id, author_id,
			featured_image, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`,
		id, in.Title, in.Slug, in.Content, in.Excerpt, in.Status, nullable(in.CategoryID),
		nullable(&in.AuthorID), in.FeaturedImage, published, now)
	if err != nil {
		return nil, postWriteError("create post", err)
	}
	return s.GetPost(ctx, id)
}

func (s *Store) UpdatePost(ctx context.Context, id string, in models.PostInput) (*models.Post, error) {
	const op = "update post"
	if in.Status == "" {
		in.Status = models.PostDraft
	}
	now := s.utcNow()
	var published *time.Time
	if in.Status == models.PostPublished {
		published = &now
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE posts SET title = $1, slug = $2, content = $3, excerpt = $4, status = $5, category_id = $6,
			featured_image = $7, published_at = COALESCE(published_at, $8), updated_at = $9
		WHERE id = $10`,
		in.Title, in.Slug, in.Content, in.Excerpt, in.Status, nullable(in.CategoryID),
		in.FeaturedImage, published, now, id)
	if err != nil {
		return nil, postWriteError(op, err)
	}
	if err := checkAffected(op, "post", tag); err != nil {
		return nil, err
	}
	return s.GetPost(ctx, id)
}

func postWriteError(op string, err error) error {
	switch {
	case isUniqueViolation(err):
		return &backend.Error{Op: op, Message: "a post with this slug already exists", Err: err}
	case isForeignKeyViolation(err):
		return &backend.Error{Op: op, Message: "unknown category or author", Err: err}
	}
	return backend.Fail(op, err)
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM posts WHERE id = $1", id)
	if err != nil {
		return backend.Fail("delete post", err)
	}
	return checkAffected("delete post", "post", tag)
}

func (s *Store) IncrementViews(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "UPDATE posts SET view_count = view_count + 1 WHERE id = $1", id)
	if err != nil {
		return backend.Fail("increment views", err)
	}
	return checkAffected("increment views", "post", tag)
}
