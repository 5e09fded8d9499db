// Package catalog holds the static topic knowledge used to pick forums:
// known entities, topic categories, gossip keywords and stop words.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// maxSubreddits caps how many forums a single plan searches.
const maxSubreddits = 8

//go:embed catalog.yaml
var defaultCatalog []byte

// Entity is a well-known subject with its own forums.
type Entity struct {
	Name       string   `yaml:"name"`
	Aliases    []string `yaml:"aliases"`
	Subreddits []string `yaml:"subreddits"`
}

// Category groups topic keywords with the forums that discuss them.
type Category struct {
	Name       string   `yaml:"name"`
	Keywords   []string `yaml:"keywords"`
	Subreddits []string `yaml:"subreddits"`
}

// Catalog is the parsed catalog file.
type Catalog struct {
	DefaultSubreddits []string   `yaml:"default_subreddits"`
	Categories        []Category `yaml:"categories"`
	Entities          []Entity   `yaml:"entities"`
	GossipKeywords    []string   `yaml:"gossip_keywords"`
	StopWords         []string   `yaml:"stop_words"`

	stop map[string]bool
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes a catalog from YAML.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	for i, kw := range c.GossipKeywords {
		c.GossipKeywords[i] = strings.ToLower(strings.TrimSpace(kw))
	}
	c.stop = make(map[string]bool, len(c.StopWords))
	for _, w := range c.StopWords {
		c.stop[strings.ToLower(w)] = true
	}
	return &c, nil
}

// IsStopWord reports whether w is ignored when building search tokens.
func (c *Catalog) IsStopWord(w string) bool {
	return c.stop[strings.ToLower(w)]
}

// SubredditsFor returns the forums worth searching for the given tokens:
// matched entities first, then matched categories, then the defaults.
func (c *Catalog) SubredditsFor(tokens []string) []string {
	text := " " + strings.Join(tokens, " ") + " "

	var out []string
	seen := make(map[string]bool)
	add := func(subs []string) {
		for _, s := range subs {
			key := strings.ToLower(s)
			if seen[key] || len(out) >= maxSubreddits {
				continue
			}
			seen[key] = true
			out = append(out, s)
		}
	}

	for _, e := range c.Entities {
		if entityMatches(text, e) {
			add(e.Subreddits)
		}
	}
	for _, cat := range c.Categories {
		for _, kw := range cat.Keywords {
			if containsWord(text, kw) {
				add(cat.Subreddits)
				break
			}
		}
	}
	add(c.DefaultSubreddits)
	return out
}

// MatchEntity returns the first entity named (or aliased) in text.
func (c *Catalog) MatchEntity(text string) (Entity, bool) {
	padded := " " + normalizeSpace(text) + " "
	for _, e := range c.Entities {
		if entityMatches(padded, e) {
			return e, true
		}
	}
	return Entity{}, false
}

func entityMatches(padded string, e Entity) bool {
	if containsWord(padded, e.Name) {
		return true
	}
	for _, a := range e.Aliases {
		if containsWord(padded, a) {
			return true
		}
	}
	return false
}

// containsWord reports whether phrase occurs in padded on word boundaries.
// padded must already be lowercased and wrapped in single spaces.
func containsWord(padded, phrase string) bool {
	phrase = normalizeSpace(phrase)
	if phrase == "" {
		return false
	}
	return strings.Contains(padded, " "+phrase+" ")
}

func normalizeSpace(s string) string {
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '.', ',', '!', '?', ';', ':', '"', '(', ')', '\'':
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
