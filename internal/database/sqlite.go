package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// OpenSQLite opens the SQLite database at dsn and makes sure the schema is
// current.
func OpenSQLite(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	if strings.Contains(dsn, ":memory:") {
		// Every pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	log.Printf("Successfully connected to SQLite database using DSN: %s", dsn)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

const sqliteSchema = `
	PRAGMA foreign_keys = ON;

	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE COLLATE NOCASE,
		password TEXT NOT NULL,
		full_name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'author' CHECK (role IN ('admin', 'editor', 'author')),
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		expires DATETIME NOT NULL,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES profiles(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		slug TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		content TEXT NOT NULL DEFAULT '',
		excerpt TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'published', 'scheduled', 'archived')),
		category_id TEXT,
		author_id TEXT,
		view_count INTEGER NOT NULL DEFAULT 0,
		published_at DATETIME,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE SET NULL,
		FOREIGN KEY (author_id) REFERENCES profiles(id) ON DELETE SET NULL
	);

	CREATE TABLE IF NOT EXISTS comments (
		id TEXT PRIMARY KEY,
		post_id TEXT NOT NULL,
		author_name TEXT NOT NULL,
		author_email TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected', 'spam')),
		created_at DATETIME NOT NULL,
		FOREIGN KEY (post_id) REFERENCES posts(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS media (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		url TEXT NOT NULL,
		mime_type TEXT NOT NULL DEFAULT '',
		size_bytes INTEGER NOT NULL DEFAULT 0,
		alt_text TEXT NOT NULL DEFAULT '',
		uploaded_by TEXT,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (uploaded_by) REFERENCES profiles(id) ON DELETE SET NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_posts_status_created ON posts(status, created_at);
	CREATE INDEX IF NOT EXISTS idx_posts_category ON posts(category_id);
	CREATE INDEX IF NOT EXISTS idx_comments_post_created ON comments(post_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
`

// createTables creates all tables, applies column migrations and seeds the
// default categories.
func createTables(db *sql.DB) error {
	if _, err := db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("error creating tables: %w", err)
	}
	log.Println("Database tables created or already exist.")

	if err := applyMigrations(db); err != nil {
		log.Printf("Warning: Failed to apply migrations: %v", err)
	}

	return insertDefaultCategories(db)
}

// applyMigrations adds columns introduced after the first schema version.
func applyMigrations(db *sql.DB) error {
	if err := addColumnIfNotExists(db, "profiles", "avatar_url", "TEXT NOT NULL DEFAULT ''"); err != nil {
		return fmt.Errorf("error adding avatar_url column to profiles: %w", err)
	}
	if err := addColumnIfNotExists(db, "posts", "featured_image", "TEXT NOT NULL DEFAULT ''"); err != nil {
		return fmt.Errorf("error adding featured_image column to posts: %w", err)
	}
	return nil
}

// addColumnIfNotExists adds a column to a table when it is missing.
func addColumnIfNotExists(db *sql.DB, tableName, columnName, columnDef string) error {
	var exists int
	err := db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, tableName, columnName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("error checking column existence: %w", err)
	}
	if exists > 0 {
		return nil
	}

	alterQuery := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", tableName, columnName, columnDef)
	if _, err := db.Exec(alterQuery); err != nil {
		return fmt.Errorf("error adding column: %w", err)
	}
	log.Printf("Added column %s to table %s", columnName, tableName)
	return nil
}

// DefaultCategories are created on an empty database.
var DefaultCategories = []struct{ Name, Slug, Description string }{
	{"Football", "football", "Match reports, transfers and tactics."},
	{"Basketball", "basketball", "Courtside news and analysis."},
	{"Tennis", "tennis", "Tours, majors and rankings."},
	{"Athletics", "athletics", "Track and field coverage."},
}

// insertDefaultCategories adds the default categories when none exist.
func insertDefaultCategories(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("error counting categories: %w", err)
	}
	if count > 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, c := range DefaultCategories {
		_, err := db.Exec("INSERT OR IGNORE INTO categories (id, name, slug, description, created_at) VALUES (?, ?, ?, ?, ?)",
			uuid.NewString(), c.Name, c.Slug, c.Description, now)
		if err != nil {
			return fmt.Errorf("error inserting category '%s': %w", c.Name, err)
		}
	}
	log.Println("Default categories ensured.")
	return nil
}

// CleanupExpiredSessions deletes expired sessions every interval until ctx
// is cancelled.
func CleanupExpiredSessions(ctx context.Context, db *sql.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := DeleteExpiredSessions(ctx, db, time.Now().UTC())
			if err != nil {
				log.Printf("Error cleaning up expired sessions: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("Cleaned up %d expired sessions.", n)
			}
		}
	}
}

// DeleteExpiredSessions removes sessions that expired before now.
func DeleteExpiredSessions(ctx context.Context, db *sql.DB, now time.Time) (int64, error) {
	result, err := db.ExecContext(ctx, "DELETE FROM sessions WHERE expires < ?", now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
