package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (models.Post, error) {
	var (
		p         models.Post
		catID     sql.NullString
		published sql.NullTime
		cID       sql.NullString
		cName     sql.NullString
		cSlug     sql.NullString
		cDesc     sql.NullString
		cCreated  sql.NullTime
	)
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.Status, &catID,
		&p.AuthorID, &p.ViewCount, &p.FeaturedImage, &published,
		&p.CreatedAt, &p.UpdatedAt, &p.AuthorName,
		&cID, &cName, &cSlug, &cDesc, &cCreated)
	if err != nil {
		return p, err
	}
	p.CategoryID = stringPtr(catID)
	if published.Valid {
		t := published.Time
		p.PublishedAt = &t
	}
	if cID.Valid {
		p.Category = &models.Category{
			ID:          cID.String,
			Name:        cName.String,
			Slug:        cSlug.String,
			Description: cDesc.String,
			CreatedAt:   cCreated.Time,
		}
	}
	return p, nil
}

func (s *Store) ListPosts(ctx context.Context, f models.PostFilter) ([]models.Post, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		where = append(where, "p.status = ?")
		args = append(args, f.Status)
	}
	if f.CategorySlug != "" {
		where = append(where, "c.slug = ?")
		args = append(args, f.CategorySlug)
	}
	q := postSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY p.created_at DESC"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, backend.Fail("list posts", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, backend.Fail("list posts", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, backend.Fail("list posts", err)
	}
	return posts, nil
}

func (s *Store) getPostWhere(ctx context.Context, op, cond string, arg any) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, postSelect+" WHERE "+cond, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, backend.NotFound(op, "post")
	}
	if err != nil {
		return nil, backend.Fail(op, err)
	}
	return &p, nil
}

func (s *Store) GetPost(ctx context.Context, id string) (*models.Post, error) {
	return s.getPostWhere(ctx, "get post", "p.id = ?", id)
}

func (s *Store) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.getPostWhere(ctx, "get post", "p.slug = ?", slug)
}

func (s *Store) CreatePost(ctx context.Context, in models.PostInput) (*models.Post, error) {
	const op = "create post"
	if in.Status == "" {
		in.Status = models.PostDraft
	}
	id := uuid.NewString()
	now := s.utcNow()
	var published any
	if in.Status == models.PostPublished {
		published = now
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (id, title, slug, content, excerpt, status, category_id, author_id,
			featured_image, published_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, in.Title, in.Slug, in.Content, in.Excerpt, in.Status, nullString(in.CategoryID),
		nullString(&in.AuthorID), in.FeaturedImage, published, now, now)
	if err != nil {
		return nil, postWriteError(op, err)
	}
	return s.GetPost(ctx, id)
}

func (s *Store) UpdatePost(ctx context.Context, id string, in models.PostInput) (*models.Post, error) {
	const op = "update post"
	if in.Status == "" {
		in.Status = models.PostDraft
	}
	now := s.utcNow()
	var published any
	if in.Status == models.PostPublished {
		published = now
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE posts SET title = ?, slug = ?, content = ?, excerpt = ?, status = ?, category_id = ?,
			featured_image = ?, published_at = COALESCE(published_at, ?), updated_at = ?
		WHERE id = ?`,
		in.Title, in.Slug, in.Content, in.Excerpt, in.Status, nullString(in.CategoryID),
		in.FeaturedImage, published, now, id)
	if err != nil {
		return nil, postWriteError(op, err)
	}
	if err := checkAffected(op, "post", res); err != nil {
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
	res, err := s.db.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id)
	if err != nil {
		return backend.Fail("delete post", err)
	}
	return checkAffected("delete post", "post", res)
}

func (s *Store) IncrementViews(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE posts SET view_count = view_count + 1 WHERE id = ?", id)
	if err != nil {
		return backend.Fail("increment views", err)
	}
	return checkAffected("increment views", "post", res)
}
