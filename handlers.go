package homepage

import (
	"errors"
	"net/http"
	"net/url"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/eringen/homepage/content"
	"github.com/eringen/homepage/views"
)

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	preview := IsPreview(c)
	idx, err := a.Cache.Index(ctx, preview)
	if err != nil {
		return err
	}
	var intro *content.Page
	if p, err := a.Cache.Page(ctx, "/", preview); err == nil {
		intro = &p
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	return Render(c, a.Views.Home(a.siteFor(c), intro, idx.Posts, idx.Tags))
}

func (a *App) handlePosts(c echo.Context) error {
	preview := IsPreview(c)
	tag := c.QueryParam("tag")
	posts, err := a.Cache.ListPosts(c.Request().Context(), tag, preview)
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags(c.Request().Context(), preview)
	if err != nil {
		return err
	}
	return Render(c, a.Views.PostList(a.siteFor(c), posts, tag, tags))
}

func (a *App) handleTag(c echo.Context) error {
	// Echo routes on RawPath when the request carries one, and then the
	// param is still escaped.
	tag := c.Param("tag")
	if c.Request().URL.RawPath != "" {
		unescaped, err := url.PathUnescape(tag)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid tag")
		}
		tag = unescaped
	}
	preview := IsPreview(c)
	idx, err := a.Cache.Index(c.Request().Context(), preview)
	if err != nil {
		return err
	}
	if !slices.Contains(idx.Tags, tag) {
		return echo.ErrNotFound
	}
	return Render(c, a.Views.PostList(a.siteFor(c), content.FilterByTag(idx.Posts, tag), tag, idx.Tags))
}

func (a *App) handleTags(c echo.Context) error {
	idx, err := a.Cache.Index(c.Request().Context(), IsPreview(c))
	if err != nil {
		return err
	}
	return Render(c, a.Views.Tags(a.siteFor(c), TagCounts(idx)))
}

// handlePage serves every other content page by its link.
func (a *App) handlePage(c echo.Context) error {
	ctx := c.Request().Context()
	preview := IsPreview(c)
	page, err := a.Cache.Page(ctx, c.Request().URL.Path, preview)
	if errors.Is(err, ErrNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	if !page.IsPost() {
		return Render(c, a.Views.Page(a.siteFor(c), page))
	}
	idx, err := a.Cache.Index(ctx, preview)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Post(a.siteFor(c), page, content.RelatedPosts(page, idx.Posts)))
}

func (a *App) handleSitemap(c echo.Context) error {
	pages, err := a.Cache.Pages(c.Request().Context(), false)
	if err != nil {
		return err
	}
	return a.renderSitemap(c, pages)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts(c.Request().Context(), "", false)
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nAllow: /\nDisallow: /preview/\nSitemap: " + BuildURL(a.Config.URL) + "sitemap.xml\n"
	return c.String(http.StatusOK, body)
}

// TagCounts pairs every tag with the number of posts carrying it, in tag
// set order.
func TagCounts(idx content.Index) []views.TagCount {
	groups := content.GroupByTag(idx.Posts)
	counts := make([]views.TagCount, 0, len(idx.Tags))
	for _, t := range idx.Tags {
		counts = append(counts, views.TagCount{Tag: t, Count: len(groups[t])})
	}
	return counts
}

func (a *App) siteFor(c echo.Context) views.Site {
	return views.Site{
		Config:  a.Site,
		URL:     a.Config.URL,
		Path:    c.Request().URL.Path,
		Preview: IsPreview(c),
	}
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.siteFor(c)))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("server error", "path", c.Request().URL.Path, "error", err)
		_ = RenderStatus(c, code, a.Views.ServerError(a.siteFor(c)))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
