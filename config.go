package pubcms

import (
	"log/slog"
	"time"
)

// SiteConfig holds all configuration for a pubcms site.
type SiteConfig struct {
	Name        string // Site name (default "Blog")
	URL         string // Canonical URL (default "http://localhost:5000")
	Description string // Site description for RSS

	Addr         string // Listen address (default ":5000")
	DatabasePath string // SQLite path (default "data/data.db")
	StaticDir    string // Public directory served at /static (default "static")

	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	BootstrapUser     string // First account created on an empty database (default "admin")
	BootstrapPassword string // Its password; generated and logged when empty

	DefaultCategories []string // Seeded on every start (default politics, geopolitics, history)

	MaxUploadSize int64 // Per-file upload limit in bytes (default 10MB)
	MaxImageWidth int   // PNG/JPEG wider than this are downscaled (default 1600, negative disables)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:5000"
	}
	if c.Addr == "" {
		c.Addr = ":5000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/data.db"
	}
	if c.StaticDir == "" {
		c.StaticDir = "static"
	}
	if c.BootstrapUser == "" {
		c.BootstrapUser = "admin"
	}
	if len(c.DefaultCategories) == 0 {
		c.DefaultCategories = DefaultCategories
	}
	if c.MaxUploadSize == 0 {
		c.MaxUploadSize = 10 << 20
	}
	if c.MaxImageWidth == 0 {
		c.MaxImageWidth = 1600
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithLogger replaces the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithHasher replaces the bcrypt password hasher.
func WithHasher(h PasswordHasher) Option {
	return func(a *App) {
		a.hasher = h
	}
}

// WithClock overrides the clock used to timestamp new articles.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}
