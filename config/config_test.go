package config

import (
	"strings"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("expected default addr :8080, got %q", cfg.Server.Addr)
	}
	if cfg.Backend.Kind != BackendSQLite {
		t.Fatalf("expected sqlite backend by default, got %q", cfg.Backend.Kind)
	}
	if cfg.Session.Expiration != 24*time.Hour {
		t.Fatalf("expected 24h session lifetime, got %s", cfg.Session.Expiration)
	}
	if cfg.Query.StaleTime != 30*time.Second {
		t.Fatalf("expected 30s stale time, got %s", cfg.Query.StaleTime)
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("BLOG_ADDR", ":9999")
	t.Setenv("BLOG_BACKEND", "POSTGRES")
	t.Setenv("BLOG_POSTGRES_URL", "postgres://localhost/blog")
	t.Setenv("BLOG_COOKIE_SECURE", "true")
	t.Setenv("BLOG_JWT_SECRET", "a-long-random-production-secret")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Backend.Kind != BackendPostgres {
		t.Fatalf("backend = %q", cfg.Backend.Kind)
	}
	if !cfg.Server.CookieSecure {
		t.Fatal("expected secure cookies")
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad duration", map[string]string{"BLOG_SESSION_LIFETIME": "soon"}, "parse env:"},
		{"unknown backend", map[string]string{"BLOG_BACKEND": "mongo"}, "unknown backend"},
		{"postgres without url", map[string]string{"BLOG_BACKEND": "postgres"}, "BLOG_POSTGRES_URL"},
		{"default secret with secure cookies", map[string]string{"BLOG_COOKIE_SECURE": "true"}, "BLOG_JWT_SECRET"},
		{"blank secret", map[string]string{"BLOG_JWT_SECRET": " "}, "BLOG_JWT_SECRET"},
		{"rest without key", map[string]string{"BLOG_BACKEND": "rest", "BLOG_BACKEND_URL": "http://x"}, "BLOG_BACKEND_ANON_KEY"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			for k, v := range c.env {
				t.Setenv(k, v)
			}
			_, err := Parse()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), c.want) {
				t.Fatalf("expected %q in error, got %v", c.want, err)
			}
		})
	}
}

func TestDevSecretAllowedWithoutSecureCookies(t *testing.T) {
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Backend.JWTSecret != DevJWTSecret {
		t.Fatalf("secret = %q", cfg.Backend.JWTSecret)
	}

	t.Setenv("BLOG_BACKEND", "rest")
	t.Setenv("BLOG_BACKEND_URL", "http://backend.example")
	t.Setenv("BLOG_BACKEND_ANON_KEY", "anon")
	t.Setenv("BLOG_COOKIE_SECURE", "true")
	if _, err := Parse(); err != nil {
		t.Fatalf("rest backend does not sign tokens, got %v", err)
	}
}
