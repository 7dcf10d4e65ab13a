// Package sqlite implements backend.Client on an embedded SQLite database.
package sqlite

import (
	"database/sql"
	"errors"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/ghazighazi3030/blogueee/internal/auth"
	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/database"
)

var _ backend.Client = (*Store)(nil)

// Store is a backend.Client over *sql.DB. Auth events are published through
// the embedded Notifier.
type Store struct {
	backend.Notifier

	db     *sql.DB
	tokens *auth.TokenIssuer
	now    func() time.Time
}

// New wraps an open database whose schema was created by
// database.OpenSQLite.
func New(db *sql.DB, tokens *auth.TokenIssuer) *Store {
	return &Store{db: db, tokens: tokens, now: time.Now}
}

// Open opens the database at dsn and returns a Store over it.
func Open(dsn string, tokens *auth.TokenIssuer) (*Store, error) {
	db, err := database.OpenSQLite(dsn)
	if err != nil {
		return nil, err
	}
	return New(db, tokens), nil
}

// DB exposes the underlying handle for maintenance jobs.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) utcNow() time.Time { return s.now().UTC() }

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

func isForeignKeyViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintForeignKey
}

// checkAffected turns a zero-row update or delete into a not-found error.
func checkAffected(op, what string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return backend.Fail(op, err)
	}
	if n == 0 {
		return backend.NotFound(op, what)
	}
	return nil
}

func nullString(p *string) sql.NullString {
	if p == nil || *p == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
