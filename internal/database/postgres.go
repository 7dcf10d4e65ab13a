package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OpenPostgres connects a pool to the Postgres database at url and makes sure
// the schema exists.
func OpenPostgres(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	cfg.MaxConns = 20
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement
	cfg.ConnConfig.StatementCacheCapacity = 256

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	log.Printf("Successfully connected to Postgres at %s", cfg.ConnConfig.Host)

	if err := initPostgresSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		password TEXT NOT NULL,
		full_name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'author' CHECK (role IN ('admin', 'editor', 'author')),
		avatar_url TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		expires TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		slug TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		content TEXT NOT NULL DEFAULT '',
		excerpt TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'published', 'scheduled', 'archived')),
		category_id TEXT REFERENCES categories(id) ON DELETE SET NULL,
		author_id TEXT REFERENCES profiles(id) ON DELETE SET NULL,
		view_count INTEGER NOT NULL DEFAULT 0,
		featured_image TEXT NOT NULL DEFAULT '',
		published_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id TEXT PRIMARY KEY,
		post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		author_name TEXT NOT NULL,
		author_email TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected', 'spam')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS media (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		url TEXT NOT NULL,
		mime_type TEXT NOT NULL DEFAULT '',
		size_bytes BIGINT NOT NULL DEFAULT 0,
		alt_text TEXT NOT NULL DEFAULT '',
		uploaded_by TEXT REFERENCES profiles(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_profiles_email ON profiles (lower(email))`,
	`CREATE INDEX IF NOT EXISTS idx_posts_status_created ON posts(status, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_post_created ON comments(post_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id)`,
}

func initPostgresSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, q := range postgresSchema {
		if _, err := pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("failed to init schema: %w", err)
		}
	}

	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("error counting categories: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, c := range DefaultCategories {
		_, err := pool.Exec(ctx,
			"INSERT INTO categories (id, name, slug, description) VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING",
			uuid.NewString(), c.Name, c.Slug, c.Description)
		if err != nil {
			return fmt.Errorf("error inserting category '%s': %w", c.Name, err)
		}
	}
	return nil
}

// CleanupExpiredPostgresSessions deletes expired sessions every interval until
// ctx is cancelled.
func CleanupExpiredPostgresSessions(ctx context.Context, pool *pgxpool.Pool, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tag, err := pool.Exec(ctx, "DELETE FROM sessions WHERE expires < now()")
			if err != nil {
				log.Printf("Error cleaning up expired sessions: %v", err)
				continue
			}
			if n := tag.RowsAffected(); n > 0 {
				log.Printf("Cleaned up %d expired sessions.", n)
			}
		}
	}
}
