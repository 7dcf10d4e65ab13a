package connect

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ghazighazi3030/blogueee/config"
	"github.com/ghazighazi3030/blogueee/internal/backend/rest"
	"github.com/ghazighazi3030/blogueee/internal/backend/sqlite"
)

func TestOpenPicksAdapter(t *testing.T) {
	t.Setenv("BLOG_SQLITE_DSN", filepath.Join(t.TempDir(), "blog.db")+"?_foreign_keys=on")
	cfg, err := config.Parse()
	if err != nil {
		t.Fatal(err)
	}

	client, err := Open(context.Background(), cfg, false)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer client.Close()
	if _, ok := client.(*sqlite.Store); !ok {
		t.Fatalf("expected sqlite store, got %T", client)
	}

	cfg.Backend.Kind = config.BackendREST
	cfg.Backend.URL = "http://backend.invalid"
	cfg.Backend.AnonKey = "anon"
	client, err = Open(context.Background(), cfg, false)
	if err != nil {
		t.Fatalf("open rest: %v", err)
	}
	if _, ok := client.(*rest.Client); !ok {
		t.Fatalf("expected rest client, got %T", client)
	}

	cfg.Backend.Kind = "mongo"
	if _, err := Open(context.Background(), cfg, false); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
