package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Backend kinds accepted by BLOG_BACKEND.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendREST     = "rest"
)

// DevJWTSecret is the token secret used when BLOG_JWT_SECRET is unset. It is
// only accepted while cookies are not marked secure.
const DevJWTSecret = "change-me-in-production"

// Config holds every setting of the blog server.
type Config struct {
	Server struct {
		Addr            string        `env:"ADDR" envDefault:":8080"`
		CookieSecure    bool          `env:"COOKIE_SECURE" envDefault:"false"`
		ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
		StaticDir       string        `env:"STATIC_DIR" envDefault:"./static"`
		// LoginAttempts sign-in POSTs are allowed per client IP each LoginWindow.
		LoginAttempts int           `env:"LOGIN_ATTEMPTS" envDefault:"10"`
		LoginWindow   time.Duration `env:"LOGIN_WINDOW" envDefault:"1m"`
	} `envPrefix:"BLOG_"`

	Backend struct {
		Kind string `env:"BACKEND" envDefault:"sqlite"`
		// SQLiteDSN is used when Kind is sqlite, e.g. "blog.db?_foreign_keys=on".
		SQLiteDSN   string `env:"SQLITE_DSN" envDefault:"blog.db?_foreign_keys=on"`
		PostgresURL string `env:"POSTGRES_URL"`
		URL         string `env:"BACKEND_URL"`
		AnonKey     string `env:"BACKEND_ANON_KEY"`
		// JWTSecret signs access tokens issued by the SQL backends.
		JWTSecret      string        `env:"JWT_SECRET" envDefault:"change-me-in-production"`
		RequestTimeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`
	} `envPrefix:"BLOG_"`

	Session struct {
		Expiration      time.Duration `env:"SESSION_LIFETIME" envDefault:"24h"`
		ResolveTimeout  time.Duration `env:"SESSION_RESOLVE_TIMEOUT" envDefault:"3s"`
		CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"30m"`
	} `envPrefix:"BLOG_"`

	Query struct {
		StaleTime time.Duration `env:"QUERY_STALE_TIME" envDefault:"30s"`
	} `envPrefix:"BLOG_"`

	Media struct {
		UploadDir      string `env:"UPLOAD_DIR" envDefault:"./uploads"`
		MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
	} `envPrefix:"BLOG_"`

	Telemetry struct {
		Endpoint    string `env:"OTEL_ENDPOINT"`
		ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"asa-sports-blog"`
	} `envPrefix:"BLOG_"`
}

// AppConfig is the configuration loaded at startup.
var AppConfig *Config

// LoadConfig reads an optional .env file, then parses the environment into
// AppConfig. It must be called once from main.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("WARNING: could not read .env file: %v", err)
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	AppConfig = cfg
	log.Println("Configuration loaded successfully.")
	return cfg, nil
}

// Parse builds a Config from the current environment without touching .env
// files or the global AppConfig.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements that env tags cannot express.
func (c *Config) Validate() error {
	c.Backend.Kind = strings.ToLower(strings.TrimSpace(c.Backend.Kind))
	switch c.Backend.Kind {
	case BackendSQLite:
		if c.Backend.SQLiteDSN == "" {
			return errors.New("config: BLOG_SQLITE_DSN is required for the sqlite backend")
		}
	case BackendPostgres:
		if c.Backend.PostgresURL == "" {
			return errors.New("config: BLOG_POSTGRES_URL is required for the postgres backend")
		}
	case BackendREST:
		if c.Backend.URL == "" || c.Backend.AnonKey == "" {
			return errors.New("config: BLOG_BACKEND_URL and BLOG_BACKEND_ANON_KEY are required for the rest backend")
		}
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend.Kind)
	}
	if c.Backend.Kind != BackendREST {
		if err := c.checkJWTSecret(); err != nil {
			return err
		}
	}
	if c.Session.Expiration <= 0 {
		return errors.New("config: BLOG_SESSION_LIFETIME must be positive")
	}
	if c.Server.LoginAttempts <= 0 || c.Server.LoginWindow <= 0 {
		return errors.New("config: BLOG_LOGIN_ATTEMPTS and BLOG_LOGIN_WINDOW must be positive")
	}
	if c.Media.MaxUploadBytes <= 0 {
		return errors.New("config: BLOG_MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// checkJWTSecret refuses the development secret once the server runs with
// secure cookies, and warns about it otherwise.
func (c *Config) checkJWTSecret() error {
	switch strings.TrimSpace(c.Backend.JWTSecret) {
	case "":
		return errors.New("config: BLOG_JWT_SECRET is required for the sqlite and postgres backends")
	case DevJWTSecret:
		if c.Server.CookieSecure {
			return errors.New("config: BLOG_JWT_SECRET must be changed from the development default when BLOG_COOKIE_SECURE is set")
		}
		log.Println("WARNING: BLOG_JWT_SECRET is the development default; set a random secret before going live.")
	}
	return nil
}
