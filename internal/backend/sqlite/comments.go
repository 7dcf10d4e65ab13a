package sqlite

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/models"
)

const commentSelect = `
	SELECT c.id, c.post_id, c.author_name, c.author_email, c.content, c.status, c.created_at,
		COALESCE(p.title, '')
	FROM comments c LEFT JOIN posts p ON p.id = c.post_id`

func (s *Store) queryComments(ctx context.Context, op, q string, args ...any) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, backend.Fail(op, err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorName, &c.AuthorEmail, &c.Content, &c.Status, &c.CreatedAt, &c.PostTitle); err != nil {
			return nil, backend.Fail(op, err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, backend.Fail(op, err)
	}
	return comments, nil
}

func (s *Store) ListComments(ctx context.Context) ([]models.Comment, error) {
	return s.queryComments(ctx, "list comments", commentSelect+" ORDER BY c.created_at DESC")
}

// ListPostComments returns the comments of a post, oldest first. An empty
// status matches every status.
func (s *Store) ListPostComments(ctx context.Context, postID string, status models.CommentStatus) ([]models.Comment, error) {
	if status == "" {
		return s.queryComments(ctx, "list post comments",
			commentSelect+" WHERE c.post_id = ? ORDER BY c.created_at ASC", postID)
	}
	return s.queryComments(ctx, "list post comments",
		commentSelect+" WHERE c.post_id = ? AND c.status = ? ORDER BY c.created_at ASC", postID, status)
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
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO comments (id, post_id, author_name, author_email, content, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
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
	res, err := s.db.ExecContext(ctx, "UPDATE comments SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return backend.Fail(op, err)
	}
	return checkAffected(op, "comment", res)
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM comments WHERE id = ?", id)
	if err != nil {
		return backend.Fail("delete comment", err)
	}
	return checkAffected("delete comment", "comment", res)
}
