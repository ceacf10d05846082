// Package site holds the declarative description of the homepage: title,
// locales, author profile, header background and navigation.
package site

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTitle = "Homepage"
	DefaultLang  = "en-US"
)

// Config is the site.yaml document.
type Config struct {
	Title            string            `yaml:"title"`
	Description      string            `yaml:"description"`
	Head             []HeadTag         `yaml:"head"`
	Locales          map[string]Locale `yaml:"locales"`
	PersonalInfo     PersonalInfo      `yaml:"personalInfo"`
	HeaderBackground HeaderBackground  `yaml:"headerBackground"`
	LastUpdated      bool              `yaml:"lastUpdated"`
	Nav              []NavItem         `yaml:"nav"`
}

// HeadTag is an extra element emitted into <head>, e.g. a favicon link.
type HeadTag struct {
	Tag   string            `yaml:"tag"`
	Attrs map[string]string `yaml:"attrs"`
}

// Locale carries per-path language settings. The "/" locale applies to the
// whole site unless a longer path prefix matches.
type Locale struct {
	Lang        string `yaml:"lang"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// PersonalInfo describes the site owner.
type PersonalInfo struct {
	Nickname    string                `yaml:"nickname"`
	Description string                `yaml:"description"`
	Email       string                `yaml:"email"`
	Location    string                `yaml:"location"`
	Avatar      string                `yaml:"avatar"`
	SNS         map[string]SNSAccount `yaml:"sns"`
}

// SNSAccount is one social network profile.
type SNSAccount struct {
	Account string `yaml:"account"`
	Link    string `yaml:"link"`
}

// HeaderBackground selects the page header background.
// URL wins over UseGeo.
type HeaderBackground struct {
	URL    string `yaml:"url"`
	UseGeo bool   `yaml:"useGeo"`
}

// NavItem is one navigation entry. Exact items are active only on their
// own path; others are active for every path below them.
type NavItem struct {
	Text  string `yaml:"text"`
	Link  string `yaml:"link"`
	Exact bool   `yaml:"exact"`
}

// Active reports whether the nav item should be highlighted on urlPath.
func (n NavItem) Active(urlPath string) bool {
	if n.Exact {
		return urlPath == n.Link
	}
	return strings.HasPrefix(urlPath, n.Link)
}

// Load reads and validates a site.yaml file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("site: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a site.yaml document, applying defaults.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("site: parse config: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults fills in a title and a root locale.
func (c *Config) SetDefaults() {
	if c.Title == "" {
		c.Title = DefaultTitle
	}
	if c.Locales == nil {
		c.Locales = map[string]Locale{}
	}
	root := c.Locales["/"]
	if root.Lang == "" {
		root.Lang = DefaultLang
	}
	c.Locales["/"] = root
}

// Validate checks the navigation and social links.
func (c Config) Validate() error {
	var errs []error
	for i, item := range c.Nav {
		if item.Text == "" {
			errs = append(errs, fmt.Errorf("nav[%d]: text is required", i))
		}
		if !validLink(item.Link) {
			errs = append(errs, fmt.Errorf("nav[%d]: link %q must be a path starting with / or an absolute URL", i, item.Link))
		}
	}
	for name, acct := range c.PersonalInfo.SNS {
		if acct.Link != "" && !validLink(acct.Link) {
			errs = append(errs, fmt.Errorf("personalInfo.sns.%s: invalid link %q", name, acct.Link))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("site: invalid config: %w", err)
	}
	return nil
}

// Locale returns the locale whose path is the longest prefix of urlPath.
func (c Config) Locale(urlPath string) Locale {
	best := ""
	for prefix := range c.Locales {
		if strings.HasPrefix(urlPath, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	loc := c.Locales[best]
	if loc.Lang == "" {
		loc.Lang = DefaultLang
	}
	return loc
}

// SNSNames returns the configured social networks in a stable order.
func (c Config) SNSNames() []string {
	names := make([]string, 0, len(c.PersonalInfo.SNS))
	for name := range c.PersonalInfo.SNS {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func validLink(link string) bool {
	if strings.HasPrefix(link, "/") {
		return true
	}
	u, err := url.Parse(link)
	return err == nil && u.Scheme != "" && u.Host != ""
}
