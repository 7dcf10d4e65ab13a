package rest

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/models"
)

type authUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type tokenResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"`
	ExpiresAt    int64    `json:"expires_at"`
	User         authUser `json:"user"`
}

func (c *Client) SignIn(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	const op = "sign in"
	var tok tokenResponse
	_, err := c.do(ctx, request{
		op:     op,
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": {"password"}},
		body:   map[string]string{"email": strings.TrimSpace(creds.Email), "password": creds.Password},
		token:  c.AnonKey,
	}, &tok)
	if err != nil {
		return nil, err
	}

	expires := c.now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	if tok.ExpiresAt > 0 {
		expires = time.Unix(tok.ExpiresAt, 0)
	}
	profile, err := c.profileFor(ctx, tok.AccessToken, tok.User)
	if err != nil {
		return nil, err
	}

	sess := &models.Session{AccessToken: tok.AccessToken, ExpiresAt: expires.UTC(), User: profile}
	c.Publish(backend.AuthEvent{Type: backend.EventSignedIn, AccessToken: tok.AccessToken, UserID: profile.ID, Session: sess})
	return sess, nil
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	_, err := c.do(ctx, request{op: "sign out", method: http.MethodPost, path: "/auth/v1/logout", token: accessToken}, nil)
	// An expired or unknown token is already signed out.
	var se *StatusError
	if err != nil && !(errors.As(err, &se) && (se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden || se.Code == http.StatusNotFound)) {
		return err
	}
	c.Publish(backend.AuthEvent{Type: backend.EventSignedOut, AccessToken: accessToken})
	return nil
}

func (c *Client) SignUp(ctx context.Context, u models.NewUser) (*models.Profile, error) {
	if u.Role == "" {
		u.Role = models.RoleAuthor
	}
	// The signup endpoint answers with either the user or a session holding
	// the user, depending on whether email confirmation is enabled.
	var resp struct {
		authUser
		User *authUser `json:"user"`
	}
	_, err := c.do(ctx, request{
		op:     "sign up",
		method: http.MethodPost,
		path:   "/auth/v1/signup",
		body: map[string]any{
			"email":    strings.TrimSpace(u.Email),
			"password": u.Password,
			"data":     map[string]string{"full_name": strings.TrimSpace(u.FullName), "role": string(u.Role)},
		},
		token: c.AnonKey,
	}, &resp)
	if err != nil {
		return nil, err
	}
	user := resp.authUser
	if resp.User != nil {
		user = *resp.User
	}
	return &models.Profile{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  strings.TrimSpace(u.FullName),
		Role:      u.Role,
		CreatedAt: c.now().UTC(),
	}, nil
}

// GetSession asks the auth API who owns accessToken. A rejected token means
// there is no session.
func (c *Client) GetSession(ctx context.Context, accessToken string) (*models.Session, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, nil
	}
	var user authUser
	_, err := c.do(ctx, request{op: "get session", method: http.MethodGet, path: "/auth/v1/user", token: accessToken}, &user)
	var se *StatusError
	if errors.As(err, &se) && (se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	profile, err := c.profileFor(ctx, accessToken, user)
	if err != nil {
		return nil, err
	}
	return &models.Session{AccessToken: accessToken, ExpiresAt: tokenExpiry(accessToken), User: profile}, nil
}

// profileFor loads the profile row of user, falling back to the auth
// record when the row is missing.
func (c *Client) profileFor(ctx context.Context, token string, user authUser) (models.Profile, error) {
	var rows []profileRow
	_, err := c.do(ctx, request{
		op:     "get profile",
		method: http.MethodGet,
		path:   table("profiles"),
		query:  url.Values{"select": {"*"}, "id": {eq(user.ID)}},
		token:  token,
	}, &rows)
	if err != nil {
		return models.Profile{}, err
	}
	if len(rows) == 0 {
		return models.Profile{ID: user.ID, Email: user.Email, Role: models.RoleAuthor}, nil
	}
	p := rows[0].model()
	if p.Email == "" {
		p.Email = user.Email
	}
	return p, nil
}

// tokenExpiry reads the exp claim without verifying the signature; the auth
// API has already vouched for the token.
func tokenExpiry(token string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time.UTC()
}
