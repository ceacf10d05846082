package homepage

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/eringen/homepage/content"
)

// ErrNotFound is returned when a requested page does not exist.
var ErrNotFound = errors.New("homepage: page not found")

// Source loads the page registry.
type Source interface {
	LoadPages(ctx context.Context) ([]content.Page, error)
}

// snapshot is one load of the registry plus everything derived from it.
// It is never modified after construction.
type snapshot struct {
	pages   []content.Page
	byLink  map[string]content.Page
	public  content.Index
	preview content.Index
}

// newSnapshot indexes pages by link. When two files share a link, such as
// about.md and about/index.md, the first one loaded is served; both
// sources load in path order.
func newSnapshot(pages []content.Page, logger *slog.Logger) *snapshot {
	byLink := make(map[string]content.Page, len(pages))
	for _, p := range pages {
		link := p.Link()
		if prev, ok := byLink[link]; ok {
			logger.Warn("duplicate page link, ignoring page", "link", link, "kept", prev.Path, "ignored", p.Path)
			continue
		}
		byLink[link] = p
	}
	return &snapshot{
		pages:   pages,
		byLink:  byLink,
		public:  content.BuildIndex(content.Published(pages)),
		preview: content.BuildIndex(pages),
	}
}

// PageCache is an in-memory snapshot of the page registry and the post
// index derived from it. The snapshot is rebuilt after Invalidate or once
// the TTL has passed.
type PageCache struct {
	mu      sync.RWMutex
	snap    *snapshot
	fetched time.Time
	ttl     time.Duration
	source  Source
	logger  *slog.Logger
}

// NewPageCache creates a PageCache backed by the given Source.
// A ttl of zero or less keeps the snapshot until Invalidate.
func NewPageCache(s Source, ttl time.Duration) *PageCache {
	return &PageCache{source: s, ttl: ttl, logger: slog.Default()}
}

// SetLogger sets the logger used for load warnings.
func (c *PageCache) SetLogger(l *slog.Logger) {
	c.mu.Lock()
	c.logger = l
	c.mu.Unlock()
}

func (c *PageCache) valid() bool {
	return c.snap != nil && (c.ttl <= 0 || time.Since(c.fetched) < c.ttl)
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PageCache) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.mu.Unlock()
}

func (c *PageCache) load(ctx context.Context) error {
	if c.valid() {
		return nil
	}
	pages, err := c.source.LoadPages(ctx)
	if err != nil {
		return err
	}
	c.snap = newSnapshot(pages, c.logger)
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns a fresh snapshot. It tries a read lock first and
// only takes the write lock when a reload is needed.
func (c *PageCache) ensureLoaded(ctx context.Context) (*snapshot, error) {
	c.mu.RLock()
	if c.valid() {
		snap := c.snap
		c.mu.RUnlock()
		return snap, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return nil, err
	}
	return c.snap, nil
}

// Index returns the posts and tags. Drafts are included only for preview.
// The slices are copies; the cached snapshot is never exposed.
func (c *PageCache) Index(ctx context.Context, preview bool) (content.Index, error) {
	snap, err := c.ensureLoaded(ctx)
	if err != nil {
		return content.Index{}, err
	}
	idx := snap.public
	if preview {
		idx = snap.preview
	}
	return content.Index{Posts: slices.Clone(idx.Posts), Tags: slices.Clone(idx.Tags)}, nil
}

// ListPosts returns posts newest first, optionally filtered by tag.
func (c *PageCache) ListPosts(ctx context.Context, tag string, preview bool) ([]content.Page, error) {
	idx, err := c.Index(ctx, preview)
	if err != nil {
		return nil, err
	}
	if tag == "" {
		return idx.Posts, nil
	}
	return content.FilterByTag(idx.Posts, tag), nil
}

// ListTags returns the tag set of the visible posts.
func (c *PageCache) ListTags(ctx context.Context, preview bool) ([]string, error) {
	idx, err := c.Index(ctx, preview)
	return idx.Tags, err
}

// Pages returns every visible page in source path order.
func (c *PageCache) Pages(ctx context.Context, preview bool) ([]content.Page, error) {
	snap, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	if preview {
		return slices.Clone(snap.pages), nil
	}
	return content.Published(snap.pages), nil
}

// Page returns the page served at link.
func (c *PageCache) Page(ctx context.Context, link string, preview bool) (content.Page, error) {
	snap, err := c.ensureLoaded(ctx)
	if err != nil {
		return content.Page{}, err
	}
	p, ok := snap.byLink[link]
	if !ok || (p.Frontmatter.Draft() && !preview) {
		return content.Page{}, ErrNotFound
	}
	return p, nil
}
