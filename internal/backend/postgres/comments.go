package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/models"
)

const commentSelect = `
	SELECT c.id, c.post_id, c.author_name, c.author_email, c.content, c.status, c.created_at,
		COALESCE(p.title, '')
	FROM comments c LEFT JOIN posts p ON p.id = c.post_id`

func (s *Store) queryComments(ctx context.Context, op, q string, args ...any) ([]models.Comment, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, backend.Fail(op, err)
	}
	comments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Comment, error) {
		var c models.Comment
		err := row.Scan(&c.ID, &c.PostID, &c.AuthorName, &c.AuthorEmail, &c.Content, &c.Status, &c.CreatedAt, &c.PostTitle)
		return c, err
	})
	if err != nil {
		return nil, backend.Fail(op, err)
	}
	return comments, nil
}

func (s *Store) ListComments(ctx context.Context) ([]models.Comment, error) {
	return s.queryComments(ctx, "list comments", commentSelect+" ORDER BY c.created_at DESC")
}

func (s *Store) ListPostComments(ctx context.Context, postID string, status models.CommentStatus) ([]models.Comment, error) {
	if status == "" {
		return s.queryComments(ctx, "list post comments",
			commentSelect+" WHERE c.post_id = $1 ORDER BY c.created_at ASC", postID)
	}
	return s.queryComments(ctx, "list post comments",
		commentSelect+" WHERE c.post_id = $1 AND c.status = $2 ORDER BY c.created_at ASC", postID, status)
}

func (s *Store) CreateComment(ctx context.Context, in models.CommentInput) (*models.Comment, error) {
	const op = "create comment"
	if in.Status == "" {
		in.Status = models.CommentPending
	}
	if !in.Status.Valid() {
		return nil, &backend.Error{Op: op, Message: "invalid comment status"}
	}
	c := models.Comment{
		ID:          uuid.NewString(),
		PostID:      in.PostID,
		AuthorName:  in.AuthorName,
		AuthorEmail: in.AuthorEmail,
		Content:     in.Content,
		Status:      in.Status,
		CreatedAt:   s.utcNow(),
	}
	_, err := s.pool.Exec(ctx,
		"INSERT INTO comments (id, post_id, author_name, author_email, content, status, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		c.ID, c.PostID, c.AuthorName, c.AuthorEmail, c.Content, c.Status, c.CreatedAt)
	if isForeignKeyViolation(err) {
		return nil, backend.NotFound(op, "post")
	}
	if err != nil {
		return nil, backend.Fail(op, err)
	}
	return &c, nil
}

func (s *Store) UpdateCommentStatus(ctx context.Context, id string, status models.CommentStatus) error {
	const op = "update comment"
	if !status.Valid() {
		return &backend.Error{Op: op, Message: "invalid comment status"}
	}
	tag, err := s.pool.Exec(ctx, "UPDATE comments SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		return backend.Fail(op, err)
	}
	return checkAffected(op, "comment", tag)
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM comments WHERE id = $1", id)
	if err != nil {
		return backend.Fail("delete comment", err)
	}
	return checkAffected("delete comment", "comment", tag)
}
