package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/models"
)

const profileSelect = "SELECT id, email, full_name, role, avatar_url, created_at FROM profiles"

func scanProfile(row pgx.Row) (models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.AvatarURL, &p.CreatedAt)
	return p, err
}

func (s *Store) ListUsers(ctx context.Context) ([]models.Profile, error) {
	rows, err := s.pool.Query(ctx, profileSelect+" ORDER BY created_at DESC")
	if err != nil {
		return nil, backend.Fail("list users", err)
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Profile, error) {
		return scanProfile(row)
	})
	if err != nil {
		return nil, backend.Fail("list users", err)
	}
	return users, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.Profile, error) {
	p, err := scanProfile(s.pool.QueryRow(ctx, profileSelect+" WHERE id = $1", id))
	if isNoRows(err) {
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
	tag, err := s.pool.Exec(ctx, "UPDATE profiles SET full_name = $1, role = $2 WHERE id = $3", in.FullName, in.Role, id)
	if err != nil {
		return nil, backend.Fail(op, err)
	}
	if err := checkAffected(op, "user", tag); err != nil {
		return nil, err
	}
	s.Publish(backend.AuthEvent{Type: backend.EventUserUpdated, UserID: id})
	return s.GetUser(ctx, id)
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM profiles WHERE id = $1", id)
	if err != nil {
		return backend.Fail("delete user", err)
	}
	if err := checkAffected("delete user", "user", tag); err != nil {
		return err
	}
	s.Publish(backend.AuthEvent{Type: backend.EventUserDeleted, UserID: id})
	return nil
}
