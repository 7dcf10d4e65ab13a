package database

import (
	"context"
	"testing"
	"time"
)

func TestOpenSQLiteCreatesSchema(t *testing.T) {
	db, err := OpenSQLite(":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	for _, table := range []string{"profiles", "sessions", "categories", "posts", "comments", "media", "settings"} {
		var n int
		if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&n); err != nil {
			t.Fatalf("lookup %s: %v", table, err)
		}
		if n != 1 {
			t.Fatalf("table %s missing", table)
		}
	}

	var categories int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&categories); err != nil {
		t.Fatalf("count categories: %v", err)
	}
	if categories != len(DefaultCategories) {
		t.Fatalf("expected %d default categories, got %d", len(DefaultCategories), categories)
	}

	// A second pass must be a no-op.
	if err := createTables(db); err != nil {
		t.Fatalf("re-run schema: %v", err)
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	db, err := OpenSQLite(":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mustExec := func(q string, args ...any) {
		t.Helper()
		if _, err := db.Exec(q, args...); err != nil {
			t.Fatalf("%s: %v", q, err)
		}
	}
	mustExec("INSERT INTO profiles (id, email, password, created_at) VALUES ('u1', 'a@b.co', 'x', ?)", now)
	mustExec("INSERT INTO sessions (id, user_id, expires, created_at) VALUES ('old', 'u1', ?, ?)", now.Add(-time.Hour), now)
	mustExec("INSERT INTO sessions (id, user_id, expires, created_at) VALUES ('new', 'u1', ?, ?)", now.Add(time.Hour), now)

	n, err := DeleteExpiredSessions(context.Background(), db, now)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 expired session removed, got %d", n)
	}
}
