// Package homepage serves a personal homepage from a tree of Markdown pages:
// a home page with recent posts, post and tag listings, RSS, and a sitemap.
//
// Views are plain templ components, supplied through the ViewFuncs struct so
// a site can replace any of them. The defaults live in the views package.
package homepage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/homepage/content"
	"github.com/eringen/homepage/site"
	"github.com/eringen/homepage/views"
)

// shutdownTimeout bounds how long in-flight requests may run after Start's
// context is cancelled.
const shutdownTimeout = 10 * time.Second

// ViewFuncs holds the templ components the handlers render.
type ViewFuncs struct {
	Home         func(s views.Site, intro *content.Page, posts []content.Page, tags []string) templ.Component
	PostList     func(s views.Site, posts []content.Page, activeTag string, tags []string) templ.Component
	Post         func(s views.Site, post content.Page, related []content.Page) templ.Component
	Page         func(s views.Site, page content.Page) templ.Component
	Tags         func(s views.Site, counts []views.TagCount) templ.Component
	PreviewLogin func(s views.Site, showError bool, csrfToken string) templ.Component
	NotFound     func(s views.Site) templ.Component
	ServerError  func(s views.Site) templ.Component
}

// DefaultViews returns the components of the views package.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:         views.Home,
		PostList:     views.PostList,
		Post:         views.Post,
		Page:         views.Page,
		Tags:         views.Tags,
		PreviewLogin: views.PreviewLogin,
		NotFound:     views.NotFound,
		ServerError:  views.ServerError,
	}
}

// App is the central homepage application. It wires together the page
// source, cache, handlers, middleware, and views.
type App struct {
	Config Config
	Site   site.Config
	Echo   *echo.Echo
	Source Source
	Cache  *PageCache
	Views  ViewFuncs
	Logger *slog.Logger

	loginLimiter *LoginLimiter
	avatar       avatarCache
	customRoutes []func(*App)
}

// New creates an App that serves pages from src. Routes are registered
// immediately, so the returned App can be used as an http.Handler through
// its Echo field.
func New(cfg Config, siteCfg site.Config, src Source, opts ...Option) *App {
	cfg.setDefaults()
	siteCfg.SetDefaults()

	a := &App{
		Config: cfg,
		Site:   siteCfg,
		Echo:   echo.New(),
		Source: src,
		Cache:  NewPageCache(src, cfg.CacheTTL),
		Views:  DefaultViews(),
		Logger: slog.Default(),
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	a.Cache.SetLogger(a.Logger)

	if cfg.PreviewEnabled() {
		a.loginLimiter = NewLoginLimiter(5, time.Minute)
	}

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return a
}

// OpenSource returns the page source selected by cfg.Source.
func OpenSource(cfg Config) (Source, error) {
	switch cfg.Source {
	case SourceDir, "":
		return content.Dir{Root: cfg.ContentDir}, nil
	case SourceSQLite:
		store, err := NewStore(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("homepage: open store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("homepage: unknown source %q", cfg.Source)
	}
}

// Start serves HTTP on Config.Addr until ctx is cancelled, then shuts the
// server down gracefully.
func (a *App) Start(ctx context.Context) error {
	if _, err := a.Cache.Index(ctx, false); err != nil {
		return fmt.Errorf("homepage: load pages: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("server listening", "addr", a.Config.Addr, "url", a.Config.URL)
		if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("homepage: shutdown: %w", err)
	}
	return <-errCh
}

func (a *App) setupRoutes() {
	e := a.Echo

	// The embedded stylesheet is served under /public/ ahead of the
	// user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/homepage.css", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.Static("/public", a.Config.StaticDir)

	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/avatar.jpg", a.handleAvatar)

	e.GET("/", a.handleHome)
	e.GET("/posts/", a.handlePosts)
	e.GET("/tags/", a.handleTags)
	e.GET("/tags/:tag/", a.handleTag)

	if a.Config.PreviewEnabled() {
		e.GET("/preview/", a.handlePreview)
		e.POST("/preview/login/", a.handlePreviewLogin)
		e.POST("/preview/logout/", a.handlePreviewLogout)
	}

	e.GET("/*", a.handlePage)
}

// Close releases the page source and background workers.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Close()
	}
	if c, ok := a.Source.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
