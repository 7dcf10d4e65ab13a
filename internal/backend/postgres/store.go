// Package postgres implements backend.Client on a self-hosted Postgres
// database reached through pgxpool.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ghazighazi3030/blogueee/internal/auth"
	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/database"
)

var _ backend.Client = (*Store)(nil)

// Store is a backend.Client over a pgx connection pool.
type Store struct {
	backend.Notifier

	pool   *pgxpool.Pool
	tokens *auth.TokenIssuer
	now    func() time.Time
}

func New(pool *pgxpool.Pool, tokens *auth.TokenIssuer) *Store {
	return &Store{pool: pool, tokens: tokens, now: time.Now}
}

// Open connects to url, creates the schema and returns a Store.
func Open(ctx context.Context, url string, tokens *auth.TokenIssuer) (*Store, error) {
	pool, err := database.OpenPostgres(ctx, url)
	if err != nil {
		return nil, err
	}
	return New(pool, tokens), nil
}

// Pool exposes the pool for maintenance jobs.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) utcNow() time.Time { return s.now().UTC() }

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool     { return pgCode(err) == "23505" }
func isForeignKeyViolation(err error) bool { return pgCode(err) == "23503" }

func isNoRows(err error) bool { return errors.Is(err, pgx.ErrNoRows) }

func checkAffected(op, what string, tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return backend.NotFound(op, what)
	}
	return nil
}

func nullable(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	return p
}
