package homepage

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/homepage/content"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (a *App) buildSitemap(pages []content.Page) sitemapURLSet {
	base := a.Config.URL
	seen := map[string]bool{"/": true}
	urls := []sitemapURL{{Loc: BuildURL(base)}}
	add := func(link, lastMod string) {
		if seen[link] {
			return
		}
		seen[link] = true
		urls = append(urls, sitemapURL{Loc: BuildURL(base, link), LastMod: lastMod})
	}
	add("/posts/", "")
	add("/tags/", "")
	for _, p := range pages {
		lastMod := ""
		if !p.LastUpdated.IsZero() {
			lastMod = p.LastUpdated.UTC().Format("2006-01-02")
		} else if t, ok := p.Frontmatter.Date(); ok {
			lastMod = t.Format("2006-01-02")
		}
		add(p.Link(), lastMod)
	}
	return sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
}

func (a *App) renderSitemap(c echo.Context, pages []content.Page) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(a.buildSitemap(pages))
}
