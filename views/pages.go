package views

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/homepage/content"
	"github.com/eringen/homepage/markdown"
)

// recentPosts is how many posts the home page lists.
const recentPosts = 5

// Home renders the profile card, the optional index.md body, recent posts
// and the tag list.
func Home(s Site, intro *content.Page, posts []content.Page, tags []string) templ.Component {
	meta := PageMeta{
		URL:    buildURL(s.URL),
		JSONLD: WebsiteJsonLD(s),
	}
	return Layout(s, meta, component(func(h *htmlWriter) {
		profile(h, s)
		if intro != nil && intro.Content != "" {
			h.raw(`<section class="intro">`)
			h.component(markdown.Markdown(intro.Content))
			h.raw("</section>")
		}
		h.raw(`<section class="recent-posts"><h2>Recent posts</h2>`)
		shown := posts
		if len(shown) > recentPosts {
			shown = shown[:recentPosts]
		}
		postItems(h, shown)
		if len(posts) > recentPosts {
			h.raw(`<p><a href="/posts/">All posts</a></p>`)
		}
		h.raw("</section>")
		tagPills(h, tags, "")
	}))
}

// PostList renders posts, optionally narrowed to activeTag.
func PostList(s Site, posts []content.Page, activeTag string, tags []string) templ.Component {
	heading := "Posts"
	canonical := buildURL(s.URL, "posts")
	if activeTag != "" {
		heading = "Posts tagged " + activeTag
		canonical = buildURL(s.URL, "tags", activeTag)
	}
	meta := PageMeta{Title: heading, URL: canonical}
	return Layout(s, meta, component(func(h *htmlWriter) {
		h.elem("h1", heading)
		tagPills(h, tags, activeTag)
		if len(posts) == 0 {
			h.elem("p", "No posts yet.", "class", "empty")
			return
		}
		postItems(h, posts)
	}))
}

// Post renders a single post with its related posts.
func Post(s Site, post content.Page, related []content.Page) templ.Component {
	meta := PageMeta{
		Title:       post.Title(),
		Description: Summary(post),
		URL:         buildURL(s.URL, post.Link()),
		OGType:      "article",
		JSONLD:      BlogPostingJsonLD(s, post),
	}
	return Layout(s, meta, component(func(h *htmlWriter) {
		h.raw(`<article class="post">`)
		h.elem("h1", post.Title())
		h.raw(`<p class="post-meta">`)
		h.elem("time", post.Date(), "datetime", post.Date())
		if post.Frontmatter.Draft() {
			h.elem("span", "draft", "class", "draft-badge")
		}
		h.raw("</p>")
		tagPills(h, post.Frontmatter.Tags(), "")
		h.raw(`<div class="post-content">`)
		h.component(markdown.Markdown(post.Content))
		h.raw("</div>")
		lastUpdated(h, s, post)
		h.raw("</article>")
		if len(related) > 0 {
			h.raw(`<aside class="related"><h2>Related posts</h2>`)
			postItems(h, related)
			h.raw("</aside>")
		}
	}))
}

// Page renders a plain content page such as /about/.
func Page(s Site, page content.Page) templ.Component {
	meta := PageMeta{
		Title:       page.Title(),
		Description: page.Frontmatter.Summary(),
		URL:         buildURL(s.URL, page.Link()),
	}
	return Layout(s, meta, component(func(h *htmlWriter) {
		h.raw(`<article class="page">`)
		if t := page.Title(); t != "" {
			h.elem("h1", t)
		}
		h.component(markdown.Markdown(page.Content))
		lastUpdated(h, s, page)
		h.raw("</article>")
	}))
}

// Tags renders every tag with its post count.
func Tags(s Site, counts []TagCount) templ.Component {
	meta := PageMeta{Title: "Tags", URL: buildURL(s.URL, "tags")}
	return Layout(s, meta, component(func(h *htmlWriter) {
		h.elem("h1", "Tags")
		if len(counts) == 0 {
			h.elem("p", "No tags yet.", "class", "empty")
			return
		}
		h.raw(`<ul class="tag-cloud">`)
		for _, tc := range counts {
			h.raw("<li>")
			h.open("a", "class", TagClass(false), "href", TagLink(tc.Tag))
			h.text(tc.Tag)
			h.close("a")
			h.elem("span", strconv.Itoa(tc.Count), "class", "tag-count")
			h.raw("</li>")
		}
		h.raw("</ul>")
	}))
}

func profile(h *htmlWriter, s Site) {
	info := s.Config.PersonalInfo
	if info.Nickname == "" && info.Description == "" {
		return
	}
	h.raw(`<section class="profile">`)
	if info.Avatar != "" {
		h.open("img", "class", "avatar", "src", "/avatar.jpg", "alt", info.Nickname, "width", "128", "height", "128")
	}
	h.elem("h1", info.Nickname)
	for _, line := range Lines(info.Description) {
		h.elem("p", line, "class", "profile-line")
	}
	if info.Location != "" {
		h.elem("p", info.Location, "class", "profile-location")
	}
	if info.Email != "" {
		h.elem("a", info.Email, "class", "profile-email", "href", markdown.SafeURL("mailto:"+info.Email))
	}
	h.raw("</section>")
}

func postItems(h *htmlWriter, posts []content.Page) {
	h.raw(`<ul class="post-list">`)
	for _, p := range posts {
		h.raw(`<li class="post-item">`)
		h.elem("time", p.Date(), "datetime", p.Date())
		h.elem("a", p.Title(), "class", "post-title", "href", p.Link())
		if sum := Summary(p); sum != "" {
			h.elem("p", sum, "class", "post-summary")
		}
		h.raw("</li>")
	}
	h.raw("</ul>")
}

func tagPills(h *htmlWriter, tags []string, active string) {
	if len(tags) == 0 {
		return
	}
	h.raw(`<div class="tags">`)
	for _, t := range tags {
		h.elem("a", t, "class", TagClass(t == active), "href", TagLink(t))
	}
	h.raw("</div>")
}

func lastUpdated(h *htmlWriter, s Site, p content.Page) {
	if !s.Config.LastUpdated || p.LastUpdated.IsZero() {
		return
	}
	h.raw(`<p class="last-updated">Last updated: `)
	when := p.LastUpdated.UTC().Format("2006-01-02 15:04")
	h.elem("time", when, "datetime", p.LastUpdated.UTC().Format("2006-01-02T15:04:05Z07:00"))
	h.raw("</p>")
}
