package content

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document opened a YAML
// frontmatter block but never closed it.
var ErrMissingClosingDelimiter = errors.New("content: frontmatter start delimiter found but closing delimiter is missing")

// dateLayouts are tried in order when a date is given as a string.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Frontmatter is the structured metadata at the head of a page.
type Frontmatter map[string]any

// String returns the value under key if it is a scalar, formatted as text.
func (f Frontmatter) String(key string) string {
	switch v := f[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case time.Time:
		return v.Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	case bool, int, int64, float64:
		return fmt.Sprint(v)
	default:
		return ""
	}
}

func (f Frontmatter) Layout() string { return f.String("layout") }
func (f Frontmatter) Title() string  { return f.String("title") }

// Summary returns "summary", then "description".
func (f Frontmatter) Summary() string {
	if s := f.String("summary"); s != "" {
		return s
	}
	return f.String("description")
}

// RawDate returns the date field as written.
func (f Frontmatter) RawDate() string {
	if t, ok := f["date"].(time.Time); ok {
		return t.Format("2006-01-02")
	}
	return f.String("date")
}

// Date parses the date field. It accepts a time.Time (as produced by some
// YAML decoders) or a string in one of the supported layouts.
func (f Frontmatter) Date() (time.Time, bool) {
	switch v := f["date"].(type) {
	case time.Time:
		return v, !v.IsZero()
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// Tags returns the tags field. A single string counts as one tag.
// Blank entries are dropped; order is kept.
func (f Frontmatter) Tags() []string {
	var out []string
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	switch v := f["tags"].(type) {
	case string:
		add(v)
	case []string:
		for _, s := range v {
			add(s)
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				add(s)
			} else if item != nil {
				add(fmt.Sprint(item))
			}
		}
	}
	return out
}

// Draft reports whether the page is marked as a draft.
func (f Frontmatter) Draft() bool {
	switch v := f["draft"].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	}
	return false
}

// SplitFrontmatter separates a `---` delimited YAML head from the Markdown
// body. If the document has no head, had is false and body is the input.
func SplitFrontmatter(doc []byte) (head, body []byte, had bool, err error) {
	nl := "\n"
	if i := bytes.IndexByte(doc, '\n'); i > 0 && doc[i-1] == '\r' {
		nl = "\r\n"
	}
	open := []byte("---" + nl)
	if !bytes.HasPrefix(doc, open) {
		return nil, doc, false, nil
	}
	rest := doc[len(open):]
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, nil
	}

	closing := []byte(nl + "---")
	idx := bytes.Index(rest, closing)
	for idx >= 0 {
		after := rest[idx+len(closing):]
		if len(after) == 0 {
			return rest[:idx+len(nl)], nil, true, nil
		}
		if bytes.HasPrefix(after, []byte(nl)) {
			return rest[:idx+len(nl)], after[len(nl):], true, nil
		}
		next := bytes.Index(after, closing)
		if next < 0 {
			break
		}
		idx += len(closing) + next
	}
	return nil, nil, false, ErrMissingClosingDelimiter
}

// ParseFrontmatter decodes raw YAML (without delimiters) into Frontmatter.
func ParseFrontmatter(raw []byte) (Frontmatter, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Frontmatter{}, nil
	}
	var fm Frontmatter
	if err := yaml.Unmarshal(raw, &fm); err != nil {
		return nil, fmt.Errorf("content: parse frontmatter: %w", err)
	}
	if fm == nil {
		fm = Frontmatter{}
	}
	return fm, nil
}

// ParsePage builds a Page from a Markdown document with optional frontmatter.
func ParsePage(path string, doc []byte) (Page, error) {
	head, body, _, err := SplitFrontmatter(doc)
	if err != nil {
		return Page{}, fmt.Errorf("%s: %w", path, err)
	}
	fm, err := ParseFrontmatter(head)
	if err != nil {
		return Page{}, fmt.Errorf("%s: %w", path, err)
	}
	return Page{Path: path, Frontmatter: fm, Content: string(body)}, nil
}
