package views

import "github.com/eringen/homepage/site"

// Site carries site-wide settings into every component so nothing is
// hardcoded in templates.
type Site struct {
	Config  site.Config
	URL     string // canonical base URL, e.g. "https://example.com"
	Path    string // request path, used for nav state and locale
	Preview bool   // drafts are visible
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	JSONLD      string
}

// TagCount is a tag with the number of posts carrying it.
type TagCount struct {
	Tag   string
	Count int
}
