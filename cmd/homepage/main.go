package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/alecthomas/kong"

	"github.com/eringen/homepage"
	"github.com/eringen/homepage/content"
	"github.com/eringen/homepage/site"
)

// version is set at build time via ldflags.
var version = "dev"

var CLI struct {
	Site string `short:"s" help:"Site configuration file" default:"site.yaml" type:"path"`

	Serve struct {
		Static string `help:"Directory served under /public/, overriding HOMEPAGE_STATIC_DIR"`
	} `cmd:"" help:"Serve the homepage over HTTP"`

	Posts struct {
		Tag string `short:"t" help:"Only list posts carrying this tag"`
	} `cmd:"" help:"List published posts, newest first"`

	Tags struct{} `cmd:"" help:"List the tags used by published posts"`

	Import struct{} `cmd:"" help:"Copy every page of the content directory into the SQLite store"`

	New struct {
		Name string `arg:"" help:"Directory name or module path of the new site"`
	} `cmd:"" help:"Create a new homepage project"`

	Version struct{} `cmd:"" help:"Print the homepage version"`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("homepage"),
		kong.Description("A personal homepage served from Markdown pages."),
	)

	var err error
	switch kctx.Command() {
	case "serve":
		err = runServe()
	case "posts":
		err = runPosts(CLI.Posts.Tag)
	case "tags":
		err = runTags()
	case "import":
		err = runImport()
	case "new <name>":
		err = runNew(CLI.New.Name)
	case "version":
		fmt.Printf("homepage %s\n", version)
	default:
		err = fmt.Errorf("unknown command %q", kctx.Command())
	}
	if err != nil {
		slog.Error("command failed", "command", kctx.Command(), "error", err)
		os.Exit(1)
	}
}

func newLogger(mode homepage.Mode) *slog.Logger {
	if mode.IsDevelopment() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func runServe() error {
	cfg, err := homepage.LoadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Mode)
	slog.SetDefault(logger)

	siteCfg, err := site.Load(CLI.Site)
	if err != nil {
		return err
	}
	logger.Info("configuration loaded",
		"mode", cfg.Mode,
		"addr", cfg.Addr,
		"url", cfg.URL,
		"source", cfg.Source,
		"title", siteCfg.Title,
		"preview", cfg.PreviewEnabled(),
	)

	src, err := homepage.OpenSource(cfg)
	if err != nil {
		return err
	}
	opts := []homepage.Option{homepage.WithLogger(logger)}
	if CLI.Serve.Static != "" {
		opts = append(opts, homepage.WithStaticDir(CLI.Serve.Static))
	}
	app := homepage.New(cfg, siteCfg, src, opts...)
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Source == homepage.SourceDir && cfg.Watch {
		watcher, err := homepage.NewContentWatcher(cfg.ContentDir, app.Cache, logger)
		if err != nil {
			return fmt.Errorf("watch %s: %w", cfg.ContentDir, err)
		}
		go watcher.Run(ctx)
		logger.Info("watching content", "dir", cfg.ContentDir)
	}

	return app.Start(ctx)
}

// loadIndex reads the configured source and indexes its published posts.
func loadIndex(ctx context.Context) (content.Index, error) {
	cfg, err := homepage.LoadConfig()
	if err != nil {
		return content.Index{}, err
	}
	src, err := homepage.OpenSource(cfg)
	if err != nil {
		return content.Index{}, err
	}
	if store, ok := src.(*homepage.Store); ok {
		defer store.Close()
	}
	pages, err := src.LoadPages(ctx)
	if err != nil {
		return content.Index{}, err
	}
	return content.BuildIndex(content.Published(pages)), nil
}

func runPosts(tag string) error {
	idx, err := loadIndex(context.Background())
	if err != nil {
		return err
	}
	posts := idx.Posts
	if tag != "" {
		posts = content.FilterByTag(posts, tag)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, p := range posts {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Date(), p.Title(), p.Link())
	}
	return w.Flush()
}

func runTags() error {
	idx, err := loadIndex(context.Background())
	if err != nil {
		return err
	}
	for _, t := range idx.Tags {
		fmt.Println(t)
	}
	return nil
}

func runImport() error {
	cfg, err := homepage.LoadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()
	pages, err := content.Dir{Root: cfg.ContentDir}.LoadPages(ctx)
	if err != nil {
		return err
	}
	store, err := homepage.NewStore(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.ImportPages(ctx, pages); err != nil {
		return err
	}
	stored, err := store.ListPages(ctx)
	if err != nil {
		return err
	}
	for _, path := range stored {
		fmt.Printf("  %s\n", path)
	}
	fmt.Printf("imported %d pages from %s into %s\n", len(stored), cfg.ContentDir, cfg.DatabasePath)
	return nil
}
