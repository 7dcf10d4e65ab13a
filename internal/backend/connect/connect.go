// Package connect opens the backend adapter named by the configuration.
package connect

import (
	"context"
	"fmt"
	"log"

	"github.com/ghazighazi3030/blogueee/config"
	"github.com/ghazighazi3030/blogueee/internal/auth"
	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/backend/postgres"
	"github.com/ghazighazi3030/blogueee/internal/backend/rest"
	"github.com/ghazighazi3030/blogueee/internal/backend/sqlite"
	"github.com/ghazighazi3030/blogueee/internal/database"
)

// Open connects the configured adapter. With sweep set, the SQL adapters
// also get a background cleanup of expired sessions that stops with ctx.
func Open(ctx context.Context, cfg *config.Config, sweep bool) (backend.Client, error) {
	b := cfg.Backend
	tokens := auth.NewTokenIssuer(b.JWTSecret, cfg.Session.Expiration)

	switch b.Kind {
	case config.BackendSQLite:
		s, err := sqlite.Open(b.SQLiteDSN, tokens)
		if err != nil {
			return nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		if sweep {
			go database.CleanupExpiredSessions(ctx, s.DB(), cfg.Session.CleanupInterval)
		}
		log.Printf("Using sqlite backend (%s)", b.SQLiteDSN)
		return s, nil
	case config.BackendPostgres:
		s, err := postgres.Open(ctx, b.PostgresURL, tokens)
		if err != nil {
			return nil, fmt.Errorf("open postgres backend: %w", err)
		}
		if sweep {
			go database.CleanupExpiredPostgresSessions(ctx, s.Pool(), cfg.Session.CleanupInterval)
		}
		log.Println("Using postgres backend")
		return s, nil
	case config.BackendREST:
		log.Printf("Using REST backend at %s", b.URL)
		return rest.NewClient(b.URL, b.AnonKey, b.RequestTimeout), nil
	}
	return nil, fmt.Errorf("unknown backend %q", b.Kind)
}
