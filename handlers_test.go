package homepage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/homepage/content"
	"github.com/eringen/homepage/site"
	"github.com/eringen/homepage/views"
)

const testPreviewPassword = "let-me-see"

func testPages() []content.Page {
	about := content.Page{
		Path:        "about.md",
		Frontmatter: content.Frontmatter{"title": "About me"},
		Content:     "I write **Go**.",
	}
	index := content.Page{
		Path:        "index.md",
		Frontmatter: content.Frontmatter{"title": "Welcome"},
		Content:     "Hello from the intro.",
	}
	return []content.Page{
		about,
		index,
		post("posts/a.md", "2020-01-01", "go"),
		post("posts/b.md", "2021-01-01", "web"),
		post("posts/c.md", "2022-01-01", "go", "web"),
		draft(post("posts/d.md", "2023-01-01", "secret")),
	}
}

func newTestApp(t *testing.T, src Source, opts ...func(*Config, *site.Config)) *App {
	t.Helper()
	cfg := Config{
		URL:       "https://example.com",
		Source:    SourceDir,
		StaticDir: t.TempDir(),
	}
	siteCfg := site.Config{
		Title:       "Test Site",
		Description: "A site for tests",
		PersonalInfo: site.PersonalInfo{
			Nickname: "Tester",
		},
	}
	for _, opt := range opts {
		opt(&cfg, &siteCfg)
	}
	app := New(cfg, siteCfg, src)
	t.Cleanup(func() { app.Close() })
	return app
}

func withPreview(cfg *Config, _ *site.Config) {
	cfg.PreviewPassword = testPreviewPassword
	cfg.SessionSecret = "0123456789abcdef0123456789abcdef"
}

func doRequest(app *App, method, target string, body url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(body.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	return rec
}

func fixedSource(pages ...content.Page) *fakeSource {
	src := &fakeSource{}
	src.set(pages...)
	return src
}

func TestHomeListsPostsAndIntro(t *testing.T) {
	app := newTestApp(t, fixedSource(testPages()...))

	rec := doRequest(app, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Hello from the intro.")
	assert.Contains(t, body, `href="/posts/c/"`)
	assert.Contains(t, body, `href="/posts/a/"`)
	assert.NotContains(t, body, "/posts/d/", "drafts are hidden")
	assert.Less(t, strings.Index(body, "/posts/c/"), strings.Index(body, "/posts/a/"), "newest first")
}

func TestPostsFilteredByTag(t *testing.T) {
	app := newTestApp(t, fixedSource(testPages()...))

	rec := doRequest(app, http.MethodGet, "/posts/?tag=go", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `href="/posts/c/"`)
	assert.Contains(t, body, `href="/posts/a/"`)
	assert.NotContains(t, body, `href="/posts/b/"`)
}

func TestTagPage(t *testing.T) {
	app := newTestApp(t, fixedSource(testPages()...))

	rec := doRequest(app, http.MethodGet, "/tags/web/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `href="/posts/b/"`)
	assert.Contains(t, body, `href="/posts/c/"`)
	assert.NotContains(t, body, `href="/posts/a/"`)

	rec = doRequest(app, http.MethodGet, "/tags/secret/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "tags of drafts are hidden")

	rec = doRequest(app, http.MethodGet, "/tags/nope/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTagLinksRoundTrip(t *testing.T) {
	tags := []string{"100%", "a%20b", "c++ & go", "a/b", "日本語"}
	var pages []content.Page
	for i, tag := range tags {
		pages = append(pages, post(fmt.Sprintf("posts/p%d.md", i), fmt.Sprintf("2020-01-0%d", i+1), tag))
	}
	app := newTestApp(t, fixedSource(pages...))

	for i, tag := range tags {
		rec := doRequest(app, http.MethodGet, views.TagLink(tag), nil)
		require.Equal(t, http.StatusOK, rec.Code, "tag %q via %s", tag, views.TagLink(tag))
		assert.Contains(t, rec.Body.String(), fmt.Sprintf(`href="/posts/p%d/"`, i), "tag %q", tag)
	}
}

func TestTagsPageCounts(t *testing.T) {
	app := newTestApp(t, fixedSource(testPages()...))

	rec := doRequest(app, http.MethodGet, "/tags/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `href="/tags/go/"`)
	assert.Contains(t, body, `href="/tags/web/"`)
	assert.NotContains(t, body, "secret")
}

func TestTagCounts(t *testing.T) {
	idx := content.BuildIndex(content.Published(testPages()))
	counts := TagCounts(idx)
	require.Len(t, counts, 2)
	assert.Equal(t, "go", counts[0].Tag)
	assert.Equal(t, 2, counts[0].Count)
	assert.Equal(t, "web", counts[1].Tag)
	assert.Equal(t, 2, counts[1].Count)
}

func TestContentPages(t *testing.T) {
	app := newTestApp(t, fixedSource(testPages()...))

	rec := doRequest(app, http.MethodGet, "/about/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<strong>Go</strong>")

	rec = doRequest(app, http.MethodGet, "/posts/b/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Body of posts/b.md")

	rec = doRequest(app, http.MethodGet, "/about", nil)
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/about/", rec.Header().Get("Location"))
}

func TestUnknownPageIsNotFound(t *testing.T) {
	app := newTestApp(t, fixedSource(testPages()...))

	for _, target := range []string{"/missing/", "/posts/d/", "/preview/"} {
		rec := doRequest(app, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html", target)
	}
}

func TestSourceErrorRendersServerError(t *testing.T) {
	src := &fakeSource{err: errors.New("disk on fire")}
	app := newTestApp(t, src)

	rec := doRequest(app, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk on fire")
}

func TestFeed(t *testing.T) {
	app := newTestApp(t, fixedSource(testPages()...))

	rec := doRequest(app, http.MethodGet, "/feed.xml", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/rss+xml")
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "<?xml"))
	assert.Contains(t, body, "<title>Test Site</title>")
	assert.Contains(t, body, "<link>https://example.com/posts/c/</link>")
	assert.Contains(t, body, "<category>web</category>")
	assert.NotContains(t, body, "posts/d")
	assert.Less(t, strings.Index(body, "/posts/c/"), strings.Index(body, "/posts/a/"))
}

func TestBuildFeedLimit(t *testing.T) {
	app := newTestApp(t, fixedSource())
	posts := make([]content.Page, feedLimit+5)
	for i := range posts {
		posts[i] = post("posts/p.md", "2020-01-01")
	}
	feed := app.buildFeed(posts)
	assert.Len(t, feed.Channel.Items, feedLimit)
	assert.Equal(t, "en-US", feed.Channel.Language)
}

func TestSitemap(t *testing.T) {
	app := newTestApp(t, fixedSource(testPages()...))

	rec := doRequest(app, http.MethodGet, "/sitemap.xml", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, 1, strings.Count(body, "<loc>https://example.com/</loc>"), "index.md shares the root url")
	assert.Contains(t, body, "<loc>https://example.com/posts/</loc>")
	assert.Contains(t, body, "<loc>https://example.com/about/</loc>")
	assert.Contains(t, body, "<lastmod>2022-01-01</lastmod>")
	assert.NotContains(t, body, "posts/d")
}

func TestRobots(t *testing.T) {
	app := newTestApp(t, fixedSource())

	rec := doRequest(app, http.MethodGet, "/robots.txt", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sitemap: https://example.com/sitemap.xml")
}

func TestEmbeddedStylesheet(t *testing.T) {
	app := newTestApp(t, fixedSource())

	rec := doRequest(app, http.MethodGet, "/public/homepage.css", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
	assert.Equal(t, "public, max-age=31536000, immutable", rec.Header().Get("Cache-Control"))
}

func TestStaticFiles(t *testing.T) {
	app := newTestApp(t, fixedSource())
	require.NoError(t, os.WriteFile(filepath.Join(app.Config.StaticDir, "hello.txt"), []byte("hi"), 0o644))

	rec := doRequest(app, http.MethodGet, "/public/hello.txt", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hi", rec.Body.String())
}

func TestWithStaticDirOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("from option"), 0o644))

	cfg := Config{URL: "https://example.com", Source: SourceDir, StaticDir: t.TempDir()}
	app := New(cfg, site.Config{}, fixedSource(), WithStaticDir(dir))
	t.Cleanup(func() { app.Close() })

	rec := doRequest(app, http.MethodGet, "/public/hello.txt", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "from option", rec.Body.String())
}

func TestAvatarThumbnail(t *testing.T) {
	app := newTestApp(t, fixedSource(), func(_ *Config, s *site.Config) {
		s.PersonalInfo.Avatar = "/img/me.png"
	})

	src := image.NewRGBA(image.Rect(0, 0, 600, 300))
	for x := range 600 {
		for y := range 300 {
			src.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 80, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))
	path := filepath.Join(app.Config.StaticDir, "img", "me.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	rec := doRequest(app, http.MethodGet, "/avatar.jpg", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	img, err := jpeg.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, maxAvatarWidth, img.Bounds().Dx())
	assert.Equal(t, maxAvatarWidth/2, img.Bounds().Dy())
}

func TestAvatarMissing(t *testing.T) {
	app := newTestApp(t, fixedSource())
	rec := doRequest(app, http.MethodGet, "/avatar.jpg", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	remote := newTestApp(t, fixedSource(), func(_ *Config, s *site.Config) {
		s.PersonalInfo.Avatar = "https://cdn.example.com/me.jpg"
	})
	rec = doRequest(remote, http.MethodGet, "/avatar.jpg", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://cdn.example.com/me.jpg", rec.Header().Get("Location"))
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestPreviewLoginShowsDrafts(t *testing.T) {
	app := newTestApp(t, fixedSource(testPages()...), withPreview)

	rec := doRequest(app, http.MethodGet, "/preview/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	csrf := cookieNamed(rec, "_csrf")
	require.NotNil(t, csrf)
	assert.Contains(t, rec.Body.String(), `value="`+csrf.Value+`"`)

	rec = doRequest(app, http.MethodPost, "/preview/login/", url.Values{
		"password": {"wrong"},
		"_csrf":    {csrf.Value},
	}, csrf)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Wrong password.")

	rec = doRequest(app, http.MethodPost, "/preview/login/", url.Values{
		"password": {testPreviewPassword},
		"_csrf":    {csrf.Value},
	}, csrf)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	sess := cookieNamed(rec, sessionName)
	require.NotNil(t, sess)

	rec = doRequest(app, http.MethodGet, "/posts/d/", nil, sess)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "draft-badge")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	rec = doRequest(app, http.MethodGet, "/tags/secret/", nil, sess)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(app, http.MethodGet, "/posts/d/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPreviewLoginRequiresCSRF(t *testing.T) {
	app := newTestApp(t, fixedSource(testPages()...), withPreview)

	rec := doRequest(app, http.MethodPost, "/preview/login/", url.Values{
		"password": {testPreviewPassword},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPreviewLoginRateLimited(t *testing.T) {
	app := newTestApp(t, fixedSource(), withPreview)

	rec := doRequest(app, http.MethodGet, "/preview/", nil)
	csrf := cookieNamed(rec, "_csrf")
	require.NotNil(t, csrf)

	form := url.Values{"password": {"wrong"}, "_csrf": {csrf.Value}}
	for range 5 {
		rec = doRequest(app, http.MethodPost, "/preview/login/", form, csrf)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec = doRequest(app, http.MethodPost, "/preview/login/", form, csrf)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestPreviewLogout(t *testing.T) {
	app := newTestApp(t, fixedSource(testPages()...), withPreview)

	rec := doRequest(app, http.MethodGet, "/preview/", nil)
	csrf := cookieNamed(rec, "_csrf")
	require.NotNil(t, csrf)
	rec = doRequest(app, http.MethodPost, "/preview/login/", url.Values{
		"password": {testPreviewPassword},
		"_csrf":    {csrf.Value},
	}, csrf)
	sess := cookieNamed(rec, sessionName)
	require.NotNil(t, sess)

	rec = doRequest(app, http.MethodPost, "/preview/logout/", url.Values{"_csrf": {csrf.Value}}, csrf, sess)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	cleared := cookieNamed(rec, sessionName)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{Source: SourceDir}.Validate())
	assert.NoError(t, Config{Source: SourceSQLite}.Validate())
	assert.Error(t, Config{Source: "s3"}.Validate())
	assert.Error(t, Config{Source: SourceDir, PreviewPassword: "x"}.Validate())

	cfg := Config{Source: SourceDir, PreviewPassword: "x", SessionSecret: "y"}
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.PreviewEnabled())
}

func TestZeroCacheTTLNeverExpires(t *testing.T) {
	src := fixedSource(testPages()...)
	app := newTestApp(t, src)
	assert.Zero(t, app.Config.CacheTTL)

	for range 3 {
		rec := doRequest(app, http.MethodGet, "/", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.EqualValues(t, 1, src.loads.Load())
}

func TestLoadConfigZeroCacheTTL(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOMEPAGE_CACHE_TTL", "0s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Zero(t, cfg.CacheTTL)
	assert.Zero(t, New(cfg, site.Config{}, fixedSource()).Config.CacheTTL)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOMEPAGE_SOURCE", "sqlite")
	t.Setenv("HOMEPAGE_CACHE_TTL", "30s")
	t.Setenv("HOMEPAGE_WATCH", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, SourceSQLite, cfg.Source)
	assert.Equal(t, "30s", cfg.CacheTTL.String())
	assert.False(t, cfg.Watch)
	assert.Equal(t, ModeProduction, cfg.Mode)
	assert.Equal(t, ":3000", cfg.Addr)
}
