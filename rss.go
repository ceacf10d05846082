package homepage

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/homepage/content"
	"github.com/eringen/homepage/views"
)

// feedLimit caps the number of items in feed.xml.
const feedLimit = 20

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language,omitempty"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate,omitempty"`
	GUID        string   `xml:"guid"`
	Categories  []string `xml:"category"`
}

func (a *App) buildFeed(posts []content.Page) rssXML {
	base := a.Config.URL
	if len(posts) > feedLimit {
		posts = posts[:feedLimit]
	}
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		pubDate := ""
		if t, ok := p.Frontmatter.Date(); ok {
			pubDate = t.Format(time.RFC1123Z)
		}
		postURL := BuildURL(base, p.Link())
		items = append(items, rssItem{
			Title:       p.Title(),
			Link:        postURL,
			Description: views.Summary(p),
			PubDate:     pubDate,
			GUID:        postURL,
			Categories:  p.Frontmatter.Tags(),
		})
	}
	return rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Site.Title,
			Link:        BuildURL(base),
			Description: a.Site.Description,
			Language:    a.Site.Locale("/").Lang,
			Items:       items,
		},
	}
}

func (a *App) renderRSS(c echo.Context, posts []content.Page) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(a.buildFeed(posts))
}
