package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/models"
)

const profileSelect = "SELECT id, email, full_name, role, avatar_url, created_at FROM profiles"

func (s *Store) ListUsers(ctx context.Context) ([]models.Profile, error) {
	rows, err := s.db.QueryContext(ctx, profileSelect+" ORDER BY created_at DESC")
	if err != nil {
		return nil, backend.Fail("list users", err)
	}
	defer rows.Close()

	var users []models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.AvatarURL, &p.CreatedAt); err != nil {
			return nil, backend.Fail("list users", err)
		}
		users = append(users, p)
	}
	if err := rows.Err(); err != nil {
		return nil, backend.Fail("list users", err)
	}
	return users, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	err := s.db.QueryRowContext(ctx, profileSelect+" WHERE id = ?", id).
		Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.AvatarURL, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, backend.NotFound("get user", "user")
	}
	if err != nil {
		return nil, backend.Fail("get user", err)
	}
	return &p, nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, in models.ProfileInput) (*models.Profile, error) {
	const op = "update user"
	if !in.Role.Valid() {
		return nil, &backend.Error{Op: op, Message: "invalid role"}
	}
	res, err := s.db.ExecContext(ctx, "UPDATE profiles SET full_name = ?, role = ? WHERE id = ?", in.FullName, in.Role, id)
	if err != nil {
		return nil, backend.Fail(op, err)
	}
	if err := checkAffected(op, "user", res); err != nil {
		return nil, err
	}
	s.Publish(backend.AuthEvent{Type: backend.EventUserUpdated, UserID: id})
	return s.GetUser(ctx, id)
}

// DeleteUser removes the profile. Sessions cascade; authored posts and
// uploads keep their rows with a null owner.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM profiles WHERE id = ?", id)
	if err != nil {
		return backend.Fail("delete user", err)
	}
	if err := checkAffected("delete user", "user", res); err != nil {
		return err
	}
	s.Publish(backend.AuthEvent{Type: backend.EventUserDeleted, UserID: id})
	return nil
}
