// Package topic turns a player's free-text topic into search plans and
// suggests alternatives when nothing matches.
package topic

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/hoanghai1803/spillcheck/internal/catalog"
)

// ErrEmptyTopic is returned when the topic is blank after trimming.
var ErrEmptyTopic = errors.New("topic is empty")

// Query is a normalized topic.
type Query struct {
	Raw    string   // trimmed input with collapsed whitespace
	Text   string   // search text sent to the forum API
	Tokens []string // lowercase terms used for relevance checks
}

// Plan is one search attempt.
type Plan struct {
	Name       string // "query" or "entity"
	Query      string
	Tokens     []string
	Subreddits []string
}

// TrendSource supplies currently trending topics.
type TrendSource interface {
	Topics(ctx context.Context) []string
}

// Normalize builds a Query from raw user input.
func Normalize(raw string, stop func(string) bool) (Query, error) {
	collapsed := strings.Join(strings.Fields(raw), " ")
	if collapsed == "" {
		return Query{}, ErrEmptyTopic
	}

	words := tokenize(collapsed)
	var tokens []string
	seen := make(map[string]bool)
	for _, w := range words {
		if len([]rune(w)) < 2 || seen[w] || (stop != nil && stop(w)) {
			continue
		}
		seen[w] = true
		tokens = append(tokens, w)
	}

	// A topic made only of stop words still has to search for something.
	if len(tokens) == 0 {
		for _, w := range words {
			if !seen[w] {
				seen[w] = true
				tokens = append(tokens, w)
			}
		}
	}
	if len(tokens) == 0 {
		return Query{}, ErrEmptyTopic
	}

	return Query{
		Raw:    collapsed,
		Text:   strings.Join(tokens, " "),
		Tokens: tokens,
	}, nil
}

// tokenize lowercases s and splits it on anything that is not a letter,
// digit or apostrophe. Apostrophes are then dropped ("what's" -> "whats").
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '’'
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.NewReplacer("'", "", "’", "").Replace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Resolver produces search plans and fallback suggestions.
type Resolver struct {
	catalog *catalog.Catalog
	trends  TrendSource
}

// NewResolver creates a Resolver. trends may be nil.
func NewResolver(c *catalog.Catalog, trends TrendSource) *Resolver {
	return &Resolver{catalog: c, trends: trends}
}

// Normalize normalizes raw using the catalog stop words.
func (r *Resolver) Normalize(raw string) (Query, error) {
	return Normalize(raw, r.catalog.IsStopWord)
}

// Plans returns the ordered search attempts for q. The first plan searches
// for the query itself; a second, entity-only plan is added when the query
// names a known entity but says more than its name.
func (r *Resolver) Plans(q Query) []Plan {
	plans := []Plan{{
		Name:       "query",
		Query:      q.Text,
		Tokens:     q.Tokens,
		Subreddits: r.catalog.SubredditsFor(q.Tokens),
	}}

	entity, ok := r.catalog.MatchEntity(q.Raw)
	if !ok {
		return plans
	}

	name := strings.ToLower(entity.Name)
	if name == q.Text || name == strings.ToLower(q.Raw) {
		return plans
	}

	tokens := tokenize(name)
	subs := append([]string(nil), entity.Subreddits...)
	for _, s := range r.catalog.DefaultSubreddits {
		if !containsFold(subs, s) {
			subs = append(subs, s)
		}
	}

	plans = append(plans, Plan{
		Name:       "entity",
		Query:      name,
		Tokens:     tokens,
		Subreddits: subs,
	})
	return plans
}

// Suggest returns an alternative topic to offer when exclude produced no
// stories: the first trending topic that differs from exclude, or a catalog
// entity when trends are unavailable.
func (r *Resolver) Suggest(ctx context.Context, exclude string) string {
	exclude = strings.ToLower(strings.TrimSpace(exclude))

	if r.trends != nil {
		for _, t := range r.trends.Topics(ctx) {
			if t = strings.TrimSpace(t); t != "" && strings.ToLower(t) != exclude {
				return t
			}
		}
	}

	for _, e := range r.catalog.Entities {
		if strings.ToLower(e.Name) != exclude {
			return e.Name
		}
	}
	return ""
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
