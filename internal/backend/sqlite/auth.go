package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ghazighazi3030/blogueee/internal/auth"
	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/models"
)

func (s *Store) SignIn(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	const op = "sign in"
	email := strings.TrimSpace(creds.Email)

	var (
		p    models.Profile
		hash string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, email, password, full_name, role, avatar_url, created_at FROM profiles WHERE email = ?", email,
	).Scan(&p.ID, &p.Email, &hash, &p.FullName, &p.Role, &p.AvatarURL, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &backend.Error{Op: op, Message: "Invalid login credentials", Err: auth.ErrUserNotFound}
	}
	if err != nil {
		return nil, backend.Fail(op, err)
	}
	if err := auth.CheckPasswordHash(hash, creds.Password); err != nil {
		return nil, &backend.Error{Op: op, Message: "Invalid login credentials", Err: auth.ErrInvalidPassword}
	}

	sessionID := uuid.NewString()
	token, expires, err := s.tokens.Issue(p.ID, sessionID)
	if err != nil {
		return nil, backend.Fail(op, err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO sessions (id, user_id, expires, created_at) VALUES (?, ?, ?, ?)",
		sessionID, p.ID, expires.UTC(), s.utcNow())
	if err != nil {
		return nil, backend.Fail(op, err)
	}

	sess := &models.Session{AccessToken: token, ExpiresAt: expires, User: p}
	s.Publish(backend.AuthEvent{Type: backend.EventSignedIn, AccessToken: token, UserID: p.ID, Session: sess})
	return sess, nil
}

// SignOut revokes the session behind accessToken. A token that no longer
// verifies is treated as already signed out.
func (s *Store) SignOut(ctx context.Context, accessToken string) error {
	claims, err := s.tokens.Parse(accessToken)
	if err == nil {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", claims.SessionID); err != nil {
			return backend.Fail("sign out", err)
		}
	}
	ev := backend.AuthEvent{Type: backend.EventSignedOut, AccessToken: accessToken}
	if claims != nil {
		ev.UserID = claims.Subject
	}
	s.Publish(ev)
	return nil
}

func (s *Store) SignUp(ctx context.Context, u models.NewUser) (*models.Profile, error) {
	const op = "sign up"
	u.Email = strings.TrimSpace(u.Email)
	u.FullName = strings.TrimSpace(u.FullName)
	if err := auth.ValidateNewUser(u.Email, u.FullName, u.Password); err != nil {
		return nil, &backend.Error{Op: op, Message: err.Error(), Err: err}
	}
	if u.Role == "" {
		u.Role = models.RoleAuthor
	}
	if !u.Role.Valid() {
		return nil, &backend.Error{Op: op, Message: "invalid role", Err: auth.ErrInvalidInput}
	}
	hash, err := auth.HashPassword(u.Password)
	if err != nil {
		return nil, backend.Fail(op, err)
	}

	p := models.Profile{
		ID:        uuid.NewString(),
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		CreatedAt: s.utcNow(),
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO profiles (id, email, password, full_name, role, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		p.ID, p.Email, hash, p.FullName, p.Role, p.CreatedAt)
	if isUniqueViolation(err) {
		return nil, &backend.Error{Op: op, Message: "User already registered", Err: auth.ErrEmailExists}
	}
	if err != nil {
		return nil, backend.Fail(op, err)
	}
	return &p, nil
}

// GetSession returns the live session for accessToken, or nil when the token
// is invalid, expired or revoked.
func (s *Store) GetSession(ctx context.Context, accessToken string) (*models.Session, error) {
	claims, err := s.tokens.Parse(accessToken)
	if err != nil {
		return nil, nil
	}

	var (
		sess    models.Session
		expires time.Time
	)
	err = s.db.QueryRowContext(ctx, `
		SELECT s.expires, p.id, p.email, p.full_name, p.role, p.avatar_url, p.created_at
		FROM sessions s JOIN profiles p ON p.id = s.user_id
		WHERE s.id = ? AND s.user_id = ? AND s.expires > ?`,
		claims.SessionID, claims.Subject, s.utcNow(),
	).Scan(&expires, &sess.User.ID, &sess.User.Email, &sess.User.FullName, &sess.User.Role, &sess.User.AvatarURL, &sess.User.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, backend.Fail("get session", err)
	}
	sess.AccessToken = accessToken
	sess.ExpiresAt = expires
	return &sess, nil
}
