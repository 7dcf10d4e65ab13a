package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/models"
)

func (c *Client) ListUsers(ctx context.Context) ([]models.Profile, error) {
	var rows []profileRow
	q := url.Values{"select": {"*"}, "order": {"created_at.desc"}}
	if _, err := c.do(ctx, request{op: "list users", method: http.MethodGet, path: table("profiles"), query: q}, &rows); err != nil {
		return nil, err
	}
	users := make([]models.Profile, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.model())
	}
	return users, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (*models.Profile, error) {
	var rows []profileRow
	q := url.Values{"select": {"*"}, "id": {eq(id)}}
	if _, err := c.do(ctx, request{op: "get user", method: http.MethodGet, path: table("profiles"), query: q}, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, backend.NotFound("get user", "user")
	}
	p := rows[0].model()
	return &p, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, in models.ProfileInput) (*models.Profile, error) {
	const op = "update user"
	if !in.Role.Valid() {
		return nil, &backend.Error{Op: op, Message: "invalid role"}
	}
	var rows []profileRow
	_, err := c.do(ctx, request{
		op:     op,
		method: http.MethodPatch,
		path:   table("profiles"),
		query:  url.Values{"select": {"*"}, "id": {eq(id)}},
		body:   map[string]string{"full_name": in.FullName, "role": string(in.Role)},
		prefer: "return=representation",
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, backend.NotFound(op, "user")
	}
	c.Publish(backend.AuthEvent{Type: backend.EventUserUpdated, UserID: id})
	p := rows[0].model()
	return &p, nil
}

// DeleteUser calls the delete_user database function, which removes the
// auth account and its profile.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	_, err := c.do(ctx, request{
		op:     "delete user",
		method: http.MethodPost,
		path:   "/rest/v1/rpc/delete_user",
		body:   map[string]string{"user_id_to_delete": id},
	}, nil)
	if err != nil {
		return err
	}
	c.Publish(backend.AuthEvent{Type: backend.EventUserDeleted, UserID: id})
	return nil
}
