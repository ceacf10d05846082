package homepage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/homepage/content"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "pages.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGetPage(t *testing.T) {
	s := setupTestStore(t)
	ctx := t.Context()
	updated := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	p := content.Page{
		Path: "posts/test.md",
		Frontmatter: content.Frontmatter{
			"layout": "post",
			"title":  "Test Post",
			"date":   "2024-01-15",
			"tags":   []any{"go", "testing"},
		},
		Content:     "# Test Content\n\nThis is test content.",
		LastUpdated: updated,
	}
	require.NoError(t, s.SavePage(ctx, p))

	got, err := s.GetPage(ctx, "posts/test.md")
	require.NoError(t, err)
	assert.Equal(t, p.Content, got.Content)
	assert.Equal(t, "Test Post", got.Title())
	assert.True(t, got.IsPost())
	assert.Equal(t, "2024-01-15", got.Date())
	assert.Equal(t, []string{"go", "testing"}, got.Frontmatter.Tags())
	assert.True(t, updated.Equal(got.LastUpdated))
}

func TestGetPageNotFound(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.GetPage(t.Context(), "missing.md")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSavePageUpserts(t *testing.T) {
	s := setupTestStore(t)
	ctx := t.Context()

	require.NoError(t, s.SavePage(ctx, content.Page{Path: "about.md", Frontmatter: content.Frontmatter{"title": "Old"}}))
	require.NoError(t, s.SavePage(ctx, content.Page{Path: "about.md", Frontmatter: content.Frontmatter{"title": "New"}}))

	pages, err := s.LoadPages(ctx)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "New", pages[0].Title())
	assert.False(t, pages[0].LastUpdated.IsZero())
}

func TestDeletePage(t *testing.T) {
	s := setupTestStore(t)
	ctx := t.Context()

	require.NoError(t, s.SavePage(ctx, content.Page{Path: "about.md"}))
	require.NoError(t, s.DeletePage(ctx, "about.md"))

	_, err := s.GetPage(ctx, "about.md")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestImportPagesReplacesEverything(t *testing.T) {
	s := setupTestStore(t)
	ctx := t.Context()

	require.NoError(t, s.SavePage(ctx, content.Page{Path: "stale.md"}))
	require.NoError(t, s.ImportPages(ctx, []content.Page{
		{Path: "posts/b.md", Frontmatter: content.Frontmatter{"layout": "post"}},
		{Path: "index.md", Frontmatter: content.Frontmatter{}},
		{Path: "posts/a.md", Frontmatter: content.Frontmatter{"layout": "post"}},
	}))

	pages, err := s.LoadPages(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"index.md", "posts/a.md", "posts/b.md"}, pagePaths(pages))

	paths, err := s.ListPages(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"index.md", "posts/a.md", "posts/b.md"}, paths)
}

func TestStoreAsSource(t *testing.T) {
	s := setupTestStore(t)
	ctx := t.Context()

	require.NoError(t, s.ImportPages(ctx, []content.Page{
		{Path: "posts/old.md", Frontmatter: content.Frontmatter{"layout": "post", "date": "2020-01-01", "tags": []any{"go"}}},
		{Path: "posts/new.md", Frontmatter: content.Frontmatter{"layout": "post", "date": "2023-01-01", "tags": []any{"web", "go"}}},
	}))

	idx, err := NewPageCache(s, 0).Index(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"posts/new.md", "posts/old.md"}, pagePaths(idx.Posts))
	assert.Equal(t, []string{"web", "go"}, idx.Tags)
}

func pagePaths(pages []content.Page) []string {
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.Path
	}
	return out
}
