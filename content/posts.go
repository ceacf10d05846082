package content

import (
	"slices"
	"strings"
)

// Index is the result of one indexing pass over the page registry.
type Index struct {
	Posts []Page
	Tags  []string
}

// BuildIndex lists the posts in pages and the tags used by those posts.
func BuildIndex(pages []Page) Index {
	posts := ListPosts(pages)
	return Index{Posts: posts, Tags: ListTags(posts)}
}

// ListPosts returns the pages whose layout is "post", newest first.
// Posts with equal dates keep their relative input order.
func ListPosts(pages []Page) []Page {
	posts := make([]Page, 0, len(pages))
	for _, p := range pages {
		if p.IsPost() {
			posts = append(posts, p)
		}
	}
	slices.SortStableFunc(posts, func(a, b Page) int {
		return ComparePostDates(b, a)
	})
	return posts
}

// ComparePostDates orders a before b when a is older. Pages with a
// parseable date rank newer than pages without one; two undated pages
// compare by their raw date text.
func ComparePostDates(a, b Page) int {
	ta, aok := a.Frontmatter.Date()
	tb, bok := b.Frontmatter.Date()
	switch {
	case aok && bok:
		return ta.Compare(tb)
	case aok:
		return 1
	case bok:
		return -1
	default:
		return strings.Compare(a.Frontmatter.RawDate(), b.Frontmatter.RawDate())
	}
}

// ListTags returns every tag used by posts, once each, in order of first
// appearance. Posts without tags contribute nothing.
func ListTags(posts []Page) []string {
	seen := make(map[string]struct{})
	tags := make([]string, 0)
	for _, p := range posts {
		for _, t := range p.Frontmatter.Tags() {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	return tags
}

// FilterByTag returns the posts carrying tag, in their original order.
func FilterByTag(posts []Page, tag string) []Page {
	var out []Page
	for _, p := range posts {
		if slices.Contains(p.Frontmatter.Tags(), tag) {
			out = append(out, p)
		}
	}
	return out
}

// GroupByTag maps each tag to the posts carrying it.
func GroupByTag(posts []Page) map[string][]Page {
	groups := make(map[string][]Page)
	for _, p := range posts {
		for _, t := range slices.Compact(slices.Sorted(slices.Values(p.Frontmatter.Tags()))) {
			groups[t] = append(groups[t], p)
		}
	}
	return groups
}

// RelatedPosts returns posts that share at least one tag with current.
func RelatedPosts(current Page, posts []Page) []Page {
	tagSet := make(map[string]struct{})
	for _, t := range current.Frontmatter.Tags() {
		tagSet[t] = struct{}{}
	}
	var related []Page
	for _, p := range posts {
		if p.Path == current.Path {
			continue
		}
		for _, t := range p.Frontmatter.Tags() {
			if _, ok := tagSet[t]; ok {
				related = append(related, p)
				break
			}
		}
	}
	return related
}

// Published drops pages marked as drafts.
func Published(pages []Page) []Page {
	out := make([]Page, 0, len(pages))
	for _, p := range pages {
		if !p.Frontmatter.Draft() {
			out = append(out, p)
		}
	}
	return out
}
