package views

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/eringen/homepage/content"
	"github.com/eringen/homepage/markdown"
	"github.com/eringen/homepage/site"
)

var reLineBreak = regexp.MustCompile(`(?i)<br\s*/?>|\n`)

// buildURL joins path segments onto a base URL, ensuring a trailing slash.
func buildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// TagLink returns the listing URL for a tag.
func TagLink(tag string) string {
	return "/tags/" + url.PathEscape(tag) + "/"
}

// TagClass returns CSS classes for a tag pill, with active variant.
func TagClass(active bool) string {
	if active {
		return "tag tag-active"
	}
	return "tag"
}

// NavClass returns CSS classes for a nav link on the current path.
func NavClass(item site.NavItem, currentPath string) string {
	if item.Active(currentPath) {
		return "nav-link nav-link-active"
	}
	return "nav-link"
}

// HeaderStyle returns the inline style for the page header. An explicit
// image URL wins; otherwise UseGeo derives a gradient from the title so
// every site gets a stable colour.
func HeaderStyle(cfg site.Config) string {
	bg := cfg.HeaderBackground
	if u := markdown.SafeURL(bg.URL); u != "" {
		return fmt.Sprintf("background-image: url(%q); background-size: cover;", u)
	}
	if !bg.UseGeo {
		return ""
	}
	h := fnv.New32a()
	h.Write([]byte(cfg.Title))
	sum := h.Sum32()
	hue1 := sum % 360
	hue2 := (sum / 360) % 360
	return fmt.Sprintf("background: linear-gradient(135deg, hsl(%d, 55%%, 45%%), hsl(%d, 55%%, 30%%));", hue1, hue2)
}

// Lines splits profile text on <br> tags and newlines.
func Lines(s string) []string {
	var out []string
	for _, part := range reLineBreak.Split(s, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Summary returns the post summary, falling back to the excerpt before the
// more marker.
func Summary(p content.Page) string {
	if s := p.Frontmatter.Summary(); s != "" {
		return s
	}
	if ex, ok := markdown.Excerpt(p.Content); ok {
		return ex
	}
	return ""
}

// JoinTags formats a tag slice as a comma-separated string.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block using cfg values.
func WebsiteJsonLD(s Site) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     s.Config.Title,
		"url":      buildURL(s.URL),
	}
	if s.Config.Description != "" {
		data["description"] = s.Config.Description
	}
	if nick := s.Config.PersonalInfo.Nickname; nick != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  nick,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJsonLD produces a Schema.org BlogPosting JSON-LD block for a post.
func BlogPostingJsonLD(s Site, post content.Page) string {
	postURL := buildURL(s.URL, post.Link())
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      post.Title(),
		"description":   Summary(post),
		"datePublished": post.Date(),
		"url":           postURL,
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  s.Config.Title,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if !post.LastUpdated.IsZero() {
		data["dateModified"] = post.LastUpdated.UTC().Format("2006-01-02")
	}
	if nick := s.Config.PersonalInfo.Nickname; nick != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  nick,
		}
	}
	if tags := post.Frontmatter.Tags(); len(tags) > 0 {
		data["keywords"] = JoinTags(tags)
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
