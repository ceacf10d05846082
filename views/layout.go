package views

import (
	"maps"
	"regexp"
	"slices"

	"github.com/a-h/templ"

	"github.com/eringen/homepage/markdown"
	"github.com/eringen/homepage/site"
)

var reAttrName = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9:-]*$`)

// Layout wraps body in the site chrome: head, header, nav and footer.
func Layout(s Site, meta PageMeta, body templ.Component) templ.Component {
	return component(func(h *htmlWriter) {
		cfg := s.Config
		loc := cfg.Locale(s.Path)
		title := cfg.Title
		if loc.Title != "" {
			title = loc.Title
		}
		pageTitle := title
		if meta.Title != "" && meta.Title != title {
			pageTitle = meta.Title + " | " + title
		}
		description := meta.Description
		if description == "" {
			description = cfg.Description
			if loc.Description != "" {
				description = loc.Description
			}
		}
		ogType := meta.OGType
		if ogType == "" {
			ogType = "website"
		}

		h.raw("<!DOCTYPE html>")
		h.open("html", "lang", loc.Lang)
		h.raw("<head>")
		h.raw(`<meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.elem("title", pageTitle)
		h.open("meta", "name", "description", "content", description)
		h.open("meta", "property", "og:title", "content", pageTitle)
		h.open("meta", "property", "og:type", "content", ogType)
		h.open("meta", "property", "og:description", "content", description)
		if meta.URL != "" {
			h.open("meta", "property", "og:url", "content", meta.URL)
			h.open("link", "rel", "canonical", "href", meta.URL)
		}
		h.open("link", "rel", "alternate", "type", "application/rss+xml", "title", title, "href", "/feed.xml")
		h.open("link", "rel", "stylesheet", "href", "/public/homepage.css")
		for _, tag := range cfg.Head {
			headTag(h, tag)
		}
		if meta.JSONLD != "" {
			h.raw(`<script type="application/ld+json">`)
			h.raw(meta.JSONLD)
			h.raw("</script>")
		}
		if s.Preview {
			h.open("meta", "name", "robots", "content", "noindex")
		}
		h.raw("</head><body>")

		h.open("header", "class", "site-header", "style", HeaderStyle(cfg))
		h.open("a", "class", "site-title", "href", "/")
		h.text(title)
		h.close("a")
		h.open("nav", "class", "site-nav")
		for _, item := range cfg.Nav {
			h.elem("a", item.Text, "class", NavClass(item, s.Path), "href", markdown.SafeURL(item.Link))
		}
		h.close("nav")
		h.close("header")

		if s.Preview {
			h.raw(`<div class="preview-banner">Preview mode: drafts are visible. `)
			h.raw(`<a href="/preview/">Manage</a></div>`)
		}

		h.raw(`<main class="site-main">`)
		h.component(body)
		h.raw("</main>")

		h.raw(`<footer class="site-footer">`)
		socialLinks(h, cfg)
		h.open("p", "class", "copyright")
		h.text("© " + firstNonEmpty(cfg.PersonalInfo.Nickname, title))
		h.close("p")
		h.raw("</footer></body></html>")
	})
}

// headTag emits a configured head element. Only a small set of void tags
// is allowed.
func headTag(h *htmlWriter, tag site.HeadTag) {
	switch tag.Tag {
	case "link", "meta":
	default:
		return
	}
	attrs := make([]string, 0, 2*len(tag.Attrs))
	for _, name := range slices.Sorted(maps.Keys(tag.Attrs)) {
		if !reAttrName.MatchString(name) {
			continue
		}
		attrs = append(attrs, name, tag.Attrs[name])
	}
	h.open(tag.Tag, attrs...)
}

func socialLinks(h *htmlWriter, cfg site.Config) {
	names := cfg.SNSNames()
	if len(names) == 0 {
		return
	}
	h.raw(`<ul class="sns">`)
	for _, name := range names {
		acct := cfg.PersonalInfo.SNS[name]
		link := markdown.SafeURL(acct.Link)
		h.open("li", "class", "sns-"+name)
		if link != "" {
			h.open("a", "href", link, "title", acct.Account, "rel", "me noopener")
			h.text(name)
			h.close("a")
		} else {
			h.text(name + ": " + acct.Account)
		}
		h.close("li")
	}
	h.raw("</ul>")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
