package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/models"
)

func (c *Client) ListMedia(ctx context.Context) ([]models.Media, error) {
	var rows []mediaRow
	q := url.Values{"select": {"*"}, "order": {"created_at.desc"}}
	if _, err := c.do(ctx, request{op: "list media", method: http.MethodGet, path: table("media"), query: q}, &rows); err != nil {
		return nil, err
	}
	items := make([]models.Media, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.model())
	}
	return items, nil
}

func (c *Client) GetMedia(ctx context.Context, id string) (*models.Media, error) {
	var rows []mediaRow
	q := url.Values{"select": {"*"}, "id": {eq(id)}}
	if _, err := c.do(ctx, request{op: "get media", method: http.MethodGet, path: table("media"), query: q}, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, backend.NotFound("get media", "media")
	}
	m := rows[0].model()
	return &m, nil
}

func (c *Client) CreateMedia(ctx context.Context, in models.MediaInput) (*models.Media, error) {
	const op = "create media"
	var rows []mediaRow
	_, err := c.do(ctx, request{
		op:     op,
		method: http.MethodPost,
		path:   table("media"),
		query:  url.Values{"select": {"*"}},
		body: map[string]any{
			"filename":    in.Filename,
			"url":         in.URL,
			"mime_type":   in.MimeType,
			"size_bytes":  in.SizeBytes,
			"alt_text":    in.AltText,
			"uploaded_by": in.UploadedBy,
		},
		prefer: "return=representation",
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &backend.Error{Op: op, Message: "create media returned no row"}
	}
	m := rows[0].model()
	return &m, nil
}

func (c *Client) DeleteMedia(ctx context.Context, id string) error {
	return c.deleteByID(ctx, "delete media", "media", "media", id)
}
