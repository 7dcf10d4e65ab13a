package rest

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/models"
)

const postSelect = "*,author:profiles(full_name),category:categories(*)"

func (c *Client) ListPosts(ctx context.Context, f models.PostFilter) ([]models.Post, error) {
	q := url.Values{"select": {postSelect}, "order": {"created_at.desc"}}
	if f.Status != "" {
		q.Set("status", eq(string(f.Status)))
	}
	if f.CategorySlug != "" {
		// An inner join drops posts whose category does not match.
		q.Set("select", "*,author:profiles(full_name),category:categories!inner(*)")
		q.Set("category.slug", eq(f.CategorySlug))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	var rows []postRow
	if _, err := c.do(ctx, request{op: "list posts", method: http.MethodGet, path: table("posts"), query: q}, &rows); err != nil {
		return nil, err
	}
	posts := make([]models.Post, 0, len(rows))
	for _, r := range rows {
		posts = append(posts, r.model())
	}
	return posts, nil
}

func (c *Client) getPost(ctx context.Context, column, value string) (*models.Post, error) {
	var rows []postRow
	q := url.Values{"select": {postSelect}, column: {eq(value)}}
	if _, err := c.do(ctx, request{op: "get post", method: http.MethodGet, path: table("posts"), query: q}, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, backend.NotFound("get post", "post")
	}
	p := rows[0].model()
	return &p, nil
}

func (c *Client) GetPost(ctx context.Context, id string) (*models.Post, error) {
	return c.getPost(ctx, "id", id)
}

func (c *Client) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return c.getPost(ctx, "slug", slug)
}

func (c *Client) postBody(in models.PostInput, publish bool) postWrite {
	if in.Status == "" {
		in.Status = models.PostDraft
	}
	w := postWrite{
		Title:         in.Title,
		Slug:          in.Slug,
		Content:       in.Content,
		Excerpt:       in.Excerpt,
		Status:        string(in.Status),
		CategoryID:    in.CategoryID,
		AuthorID:      optional(in.AuthorID),
		FeaturedImage: in.FeaturedImage,
		UpdatedAt:     c.now().UTC(),
	}
	if publish && in.Status == models.PostPublished {
		t := w.UpdatedAt
		w.PublishedAt = &t
	}
	return w
}

func (c *Client) CreatePost(ctx context.Context, in models.PostInput) (*models.Post, error) {
	var rows []postRow
	_, err := c.do(ctx, request{
		op:     "create post",
		method: http.MethodPost,
		path:   table("posts"),
		query:  url.Values{"select": {postSelect}},
		body:   c.postBody(in, true),
		prefer: "return=representation",
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &backend.Error{Op: "create post", Message: "create post returned no row"}
	}
	p := rows[0].model()
	return &p, nil
}

func (c *Client) UpdatePost(ctx context.Context, id string, in models.PostInput) (*models.Post, error) {
	current, err := c.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	// published_at is set on the first transition to published only.
	body := c.postBody(in, current.PublishedAt == nil)

	var rows []postRow
	_, err = c.do(ctx, request{
		op:     "update post",
		method: http.MethodPatch,
		path:   table("posts"),
		query:  url.Values{"select": {postSelect}, "id": {eq(id)}},
		body:   body,
		prefer: "return=representation",
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, backend.NotFound("update post", "post")
	}
	p := rows[0].model()
	return &p, nil
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.deleteByID(ctx, "delete post", "posts", "post", id)
}

// IncrementViews reads then writes the counter; concurrent views may be
// lost, as with any read-modify-write over the table API.
func (c *Client) IncrementViews(ctx context.Context, id string) error {
	const op = "increment views"
	var rows []struct {
		ViewCount int `json:"view_count"`
	}
	q := url.Values{"select": {"view_count"}, "id": {eq(id)}}
	if _, err := c.do(ctx, request{op: op, method: http.MethodGet, path: table("posts"), query: q}, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return backend.NotFound(op, "post")
	}
	_, err := c.do(ctx, request{
		op:     op,
		method: http.MethodPatch,
		path:   table("posts"),
		query:  url.Values{"id": {eq(id)}},
		body:   map[string]int{"view_count": rows[0].ViewCount + 1},
	}, nil)
	return err
}

// deleteByID deletes one row and reports not found when nothing matched.
func (c *Client) deleteByID(ctx context.Context, op, tbl, what, id string) error {
	var rows []struct {
		ID string `json:"id"`
	}
	_, err := c.do(ctx, request{
		op:     op,
		method: http.MethodDelete,
		path:   table(tbl),
		query:  url.Values{"id": {eq(id)}, "select": {"id"}},
		prefer: "return=representation",
	}, &rows)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return backend.NotFound(op, what)
	}
	return nil
}
