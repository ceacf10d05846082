package homepage

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Mode represents the application running mode.
type Mode string

const (
	ModeProduction  Mode = "production"
	ModeDevelopment Mode = "development"
)

// IsDevelopment returns true if the mode is development.
func (m Mode) IsDevelopment() bool {
	return m == ModeDevelopment
}

// Page sources.
const (
	SourceDir    = "dir"
	SourceSQLite = "sqlite"
)

// Config holds the runtime settings of a homepage server. Site metadata
// lives in site.Config; this is only what differs between deployments.
type Config struct {
	Mode         Mode          `env:"HOMEPAGE_MODE" envDefault:"production"`
	Addr         string        `env:"HOMEPAGE_ADDR" envDefault:":3000"`
	URL          string        `env:"HOMEPAGE_URL" envDefault:"http://localhost:3000"`
	ContentDir   string        `env:"HOMEPAGE_CONTENT_DIR" envDefault:"content"`
	Source       string        `env:"HOMEPAGE_SOURCE" envDefault:"dir"`
	DatabasePath string        `env:"HOMEPAGE_DATABASE_PATH" envDefault:"data/pages.db"`
	StaticDir    string        `env:"HOMEPAGE_STATIC_DIR" envDefault:"public"`
	Watch        bool          `env:"HOMEPAGE_WATCH" envDefault:"true"`
	// CacheTTL of zero or less keeps pages until the watcher invalidates them.
	CacheTTL     time.Duration `env:"HOMEPAGE_CACHE_TTL" envDefault:"5m"`

	PreviewPassword string `env:"HOMEPAGE_PREVIEW_PASSWORD"`
	SessionSecret   string `env:"HOMEPAGE_SESSION_SECRET"`
	CookieSecure    bool   `env:"HOMEPAGE_COOKIE_SECURE"`
}

// LoadConfig reads configuration from the environment, after loading a
// .env file if one exists.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("homepage: parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown sources and half-configured preview.
func (c Config) Validate() error {
	switch c.Source {
	case SourceDir, SourceSQLite:
	default:
		return fmt.Errorf("homepage: unknown source %q (want %q or %q)", c.Source, SourceDir, SourceSQLite)
	}
	if c.PreviewPassword != "" && c.SessionSecret == "" {
		return fmt.Errorf("homepage: HOMEPAGE_SESSION_SECRET is required when preview is enabled")
	}
	return nil
}

// PreviewEnabled reports whether draft preview routes are served.
func (c Config) PreviewEnabled() bool {
	return c.PreviewPassword != "" && c.SessionSecret != ""
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithLogger sets the logger used for request and lifecycle logs.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithViews replaces the default view components.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}

// WithStaticDir sets the directory served under /public/.
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.Config.StaticDir = dir
	}
}
