// Package pubcms is a small content-management blog built with Go, Echo, and
// templ. Visitors read visible articles grouped by category and like them;
// authenticated users write articles with inline images and manage accounts.
//
// Hosts provide templ components via the ViewFuncs struct, and pubcms handles
// the handler logic, middleware, sessions, and database operations.
package pubcms

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// ViewFuncs holds host-provided templ components that pubcms calls when
// rendering pages.
type ViewFuncs struct {
	Home          func(page HomePage) templ.Component
	Article       func(page ArticlePage) templ.Component
	Login         func(message, csrfToken string) templ.Component
	AdminPanel    func(page AdminPage, categories []Category) templ.Component
	AdminAddUser  func(page AdminPage, users []string) templ.Component
	AdminProfile  func(page AdminPage) templ.Component
	AdminArticles func(page AdminPage, articles []Article) templ.Component
	AdminEdit     func(page AdminPage, article Article) templ.Component
	NotFound      func() templ.Component
	ServerError   func() templ.Component
}

// App is the central pubcms application. It wires together the store, image
// storage, handlers, middleware, and host-provided templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Images *ImageStore
	Views  ViewFuncs
	Logger *slog.Logger

	hasher       PasswordHasher
	now          func() time.Time
	customRoutes []func(*App)
	ready        bool
}

// New creates a new pubcms App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  views,
		Logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(a)
	}

	a.Echo.HideBanner = true
	return a
}

// Setup opens the database, seeds categories and the bootstrap account, and
// registers middleware and routes. Start calls it; tests call it directly and
// serve a.Echo.
func (a *App) Setup(ctx context.Context) error {
	if a.ready {
		return nil
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("pubcms: SessionSecret is required")
	}

	store, err := NewStore(a.Config.DatabasePath, a.hasher)
	if err != nil {
		return fmt.Errorf("pubcms: init store: %w", err)
	}
	if a.now != nil {
		store.now = a.now
	}
	a.Store = store

	if err := a.Store.EnsureCategories(ctx, a.Config.DefaultCategories...); err != nil {
		return fmt.Errorf("pubcms: seed categories: %w", err)
	}
	created, generated, err := a.Store.EnsureBootstrapUser(ctx, a.Config.BootstrapUser, a.Config.BootstrapPassword)
	if err != nil {
		return fmt.Errorf("pubcms: bootstrap user: %w", err)
	}
	if created {
		a.Logger.Warn("created bootstrap account; change its password at /admin/profil",
			"username", a.Config.BootstrapUser)
		if generated != "" {
			a.Logger.Warn("generated bootstrap password", "password", generated)
		}
	}

	a.Images = NewImageStore(filepath.Join(a.Config.StaticDir, uploadsSubdir), "/static/"+uploadsSubdir,
		a.Config.MaxUploadSize, a.Config.MaxImageWidth)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.ready = true
	return nil
}

// Start initializes the app and starts the server.
func (a *App) Start() error {
	if err := a.Setup(context.Background()); err != nil {
		return err
	}
	a.Logger.Info("listening", "addr", a.Config.Addr)
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/static", a.Config.StaticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	// Public routes
	e.GET("/", a.handleHome)
	e.GET("/login", a.handleLoginForm)
	e.POST("/login", a.handleLogin)
	e.GET("/logout", handleLogout)
	e.GET("/articol/:id", a.handleArticle)

	// Like routes need a user but no password rotation.
	e.POST("/toggle_like/:id", a.handleToggleLike, requireUser)
	e.POST("/api/like/:id", a.handleAPILike, requireUserJSON)

	// Admin routes
	admin := e.Group("/admin", requireUser)
	admin.GET("/profil", a.handleProfileForm)
	admin.POST("/profil", a.handleProfile)

	rotated := admin.Group("", a.requireRotated)
	rotated.GET("", a.handleAdminPanel)
	rotated.POST("", a.handleCreateArticle)
	rotated.GET("/adauga-utilizator", a.handleAddUserForm)
	rotated.POST("/adauga-utilizator", a.handleAddUser)
	rotated.GET("/articole", a.handleArticleList)
	rotated.GET("/editeaza/:id", a.handleEditForm)
	rotated.POST("/editeaza/:id", a.handleEditArticle)
	rotated.POST("/sterge/:id", a.handleDeleteArticle)

	// Category pages take any single segment the static routes above leave.
	e.GET("/:category", a.handleCategory)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
