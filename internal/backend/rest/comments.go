package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/models"
)

const commentSelect = "*,post:posts(title)"

func (c *Client) listComments(ctx context.Context, op string, q url.Values) ([]models.Comment, error) {
	var rows []commentRow
	if _, err := c.do(ctx, request{op: op, method: http.MethodGet, path: table("comments"), query: q}, &rows); err != nil {
		return nil, err
	}
	comments := make([]models.Comment, 0, len(rows))
	for _, r := range rows {
		comments = append(comments, r.model())
	}
	return comments, nil
}

func (c *Client) ListComments(ctx context.Context) ([]models.Comment, error) {
	return c.listComments(ctx, "list comments", url.Values{"select": {commentSelect}, "order": {"created_at.desc"}})
}

func (c *Client) ListPostComments(ctx context.Context, postID string, status models.CommentStatus) ([]models.Comment, error) {
	q := url.Values{"select": {commentSelect}, "post_id": {eq(postID)}, "order": {"created_at.asc"}}
	if status != "" {
		q.Set("status", eq(string(status)))
	}
	return c.listComments(ctx, "list post comments", q)
}

func (c *Client) CreateComment(ctx context.Context, in models.CommentInput) (*models.Comment, error) {
	const op = "create comment"
	if in.Status == "" {
		in.Status = models.CommentPending
	}
	var rows []commentRow
	_, err := c.do(ctx, request{
		op:     op,
		method: http.MethodPost,
		path:   table("comments"),
		query:  url.Values{"select": {commentSelect}},
		body: map[string]string{
			"post_id":      in.PostID,
			"author_name":  in.AuthorName,
			"author_email": in.AuthorEmail,
			"content":      in.Content,
			"status":       string(in.Status),
		},
		prefer: "return=representation",
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &backend.Error{Op: op, Message: "create comment returned no row"}
	}
	cm := rows[0].model()
	return &cm, nil
}

func (c *Client) UpdateCommentStatus(ctx context.Context, id string, status models.CommentStatus) error {
	const op = "update comment"
	if !status.Valid() {
		return &backend.Error{Op: op, Message: "invalid comment status"}
	}
	var rows []struct {
		ID string `json:"id"`
	}
	_, err := c.do(ctx, request{
		op:     op,
		method: http.MethodPatch,
		path:   table("comments"),
		query:  url.Values{"id": {eq(id)}, "select": {"id"}},
		body:   map[string]string{"status": string(status)},
		prefer: "return=representation",
	}, &rows)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return backend.NotFound(op, "comment")
	}
	return nil
}

func (c *Client) DeleteComment(ctx context.Context, id string) error {
	return c.deleteByID(ctx, "delete comment", "comments", "comment", id)
}
