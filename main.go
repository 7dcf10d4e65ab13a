package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ghazighazi3030/blogueee/config"
	"github.com/ghazighazi3030/blogueee/internal/backend/connect"
	"github.com/ghazighazi3030/blogueee/internal/handlers"
	"github.com/ghazighazi3030/blogueee/internal/media"
	"github.com/ghazighazi3030/blogueee/internal/middleware"
	"github.com/ghazighazi3030/blogueee/internal/query"
	"github.com/ghazighazi3030/blogueee/internal/server"
	"github.com/ghazighazi3030/blogueee/internal/session"
	"github.com/ghazighazi3030/blogueee/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry.Endpoint, cfg.Telemetry.ServiceName)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			log.Printf("ERROR: telemetry shutdown: %v", err)
		}
	}()

	client, err := connect.Open(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Printf("ERROR: Failed to close backend: %v", err)
		} else {
			log.Println("Backend closed successfully.")
		}
	}()

	store, err := media.NewDiskStore(cfg.Media.UploadDir, cfg.Media.MaxUploadBytes)
	if err != nil {
		return err
	}

	cache := query.New(cfg.Query.StaleTime)
	tracker := session.NewTracker(client, cache, cfg.Session.ResolveTimeout)
	tracker.Start()
	defer tracker.Close()

	sm := session.NewManager(cfg.Session.Expiration, cfg.Server.CookieSecure)
	h := handlers.New(client, cache, sm, store)

	routes := server.Routes(server.Deps{
		Handler:   h,
		Tracker:   tracker,
		Limiter:   middleware.NewRateLimiter(ctx, cfg.Server.LoginAttempts, cfg.Server.LoginWindow),
		StaticDir: cfg.Server.StaticDir,
	})
	return server.Run(ctx, cfg.Server.Addr, routes, cfg.Server.ShutdownTimeout)
}
