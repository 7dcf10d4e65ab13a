package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/models"
)

type categoryWrite struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var rows []categoryRow
	q := url.Values{"select": {"*"}, "order": {"name.asc"}}
	if _, err := c.do(ctx, request{op: "list categories", method: http.MethodGet, path: table("categories"), query: q}, &rows); err != nil {
		return nil, err
	}
	cats := make([]models.Category, 0, len(rows))
	for _, r := range rows {
		cats = append(cats, r.model())
	}
	return cats, nil
}

func (c *Client) getCategory(ctx context.Context, column, value string) (*models.Category, error) {
	var rows []categoryRow
	q := url.Values{"select": {"*"}, column: {eq(value)}}
	if _, err := c.do(ctx, request{op: "get category", method: http.MethodGet, path: table("categories"), query: q}, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, backend.NotFound("get category", "category")
	}
	cat := rows[0].model()
	return &cat, nil
}

func (c *Client) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	return c.getCategory(ctx, "id", id)
}

func (c *Client) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return c.getCategory(ctx, "slug", slug)
}

func (c *Client) writeCategory(ctx context.Context, op, method string, q url.Values, in models.CategoryInput) (*models.Category, error) {
	var rows []categoryRow
	_, err := c.do(ctx, request{
		op:     op,
		method: method,
		path:   table("categories"),
		query:  q,
		body:   categoryWrite{Name: in.Name, Slug: in.Slug, Description: in.Description},
		prefer: "return=representation",
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, backend.NotFound(op, "category")
	}
	cat := rows[0].model()
	return &cat, nil
}

func (c *Client) CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	return c.writeCategory(ctx, "create category", http.MethodPost, url.Values{"select": {"*"}}, in)
}

func (c *Client) UpdateCategory(ctx context.Context, id string, in models.CategoryInput) (*models.Category, error) {
	return c.writeCategory(ctx, "update category", http.MethodPatch, url.Values{"select": {"*"}, "id": {eq(id)}}, in)
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.deleteByID(ctx, "delete category", "categories", "category", id)
}
