// Package content models the pages of a homepage and derives the post
// listing and tag set from them.
//
// Pages are read-only values. Every function in this package returns fresh
// slices and never modifies the pages or slices it is given.
package content

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// LayoutPost marks a page as a blog post.
const LayoutPost = "post"

// Page is a unit of site content: Markdown body plus frontmatter.
type Page struct {
	Path        string // slash-separated, relative to the content root, e.g. "posts/hello.md"
	Frontmatter Frontmatter
	Content     string
	LastUpdated time.Time
}

// IsPost reports whether the page's layout is "post".
func (p Page) IsPost() bool {
	return p.Frontmatter.Layout() == LayoutPost
}

// Title returns the frontmatter title, or a title derived from the file name.
func (p Page) Title() string {
	if t := p.Frontmatter.Title(); t != "" {
		return t
	}
	stem := strings.TrimSuffix(path.Base(p.Path), path.Ext(p.Path))
	if isIndexStem(stem) {
		stem = path.Base(path.Dir(p.Path))
		if stem == "." || stem == "/" {
			return ""
		}
	}
	return strings.ReplaceAll(stem, "-", " ")
}

// Link returns the URL path the page is served under.
// index.md maps to "/", dir/index.md and dir/README.md to "/dir/",
// and dir/name.md to "/dir/name/".
func (p Page) Link() string {
	clean := strings.TrimPrefix(path.Clean("/"+p.Path), "/")
	stem := strings.TrimSuffix(clean, path.Ext(clean))
	dir, base := path.Split(stem)
	if isIndexStem(base) {
		stem = strings.TrimSuffix(dir, "/")
	}
	if stem == "" {
		return "/"
	}
	return "/" + stem + "/"
}

// Date formats the post date for display, falling back to the raw value.
func (p Page) Date() string {
	if t, ok := p.Frontmatter.Date(); ok {
		return t.Format("2006-01-02")
	}
	return p.Frontmatter.RawDate()
}

func (p Page) String() string {
	return fmt.Sprintf("%s (%s)", p.Path, p.Frontmatter.Layout())
}

func isIndexStem(s string) bool {
	return s == "index" || strings.EqualFold(s, "readme")
}
