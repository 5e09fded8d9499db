// Package excerpt turns a ranked post into a short, gossip-flavoured passage.
package excerpt

import (
	"sort"
	"strings"

	"github.com/hoanghai1803/spillcheck/internal/models"
)

// Options bounds the excerpt size.
type Options struct {
	MinSentences int
	MaxSentences int
	MaxChars     int
	Keywords     []string
}

// Excerpt is the passage shown to the player.
type Excerpt struct {
	Text          string
	SentenceCount int
	WordCount     int
	SubjectMatch  bool
}

// hearsay marks first-person or second-hand telling.
var hearsay = []string{
	" i ", " my ", " me ", " we ", " our ", "i'm", "i've", "apparently",
	"allegedly", "reportedly", "rumor", "heard", "sources", "insider",
	"my friend", "my cousin", "told me",
}

// GossipScore rates how much a sentence reads like gossip about the topic.
func GossipScore(sentence string, tokens, keywords []string) float64 {
	lower := " " + strings.ToLower(sentence) + " "
	var score float64

	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, kw) {
			score += 2
		}
	}
	for _, tok := range tokens {
		if tok != "" && strings.Contains(lower, tok) {
			score += 1.5
		}
	}
	for _, h := range hearsay {
		if strings.Contains(lower, h) {
			score += 0.5
		}
	}
	if strings.ContainsAny(sentence, "\"“”") {
		score += 1
	}
	if strings.HasSuffix(strings.TrimRight(sentence, "\"'”’)"), "!") ||
		strings.HasSuffix(strings.TrimRight(sentence, "\"'”’)"), "?") {
		score += 0.5
	}
	if n := len(sentence); n >= 60 && n <= 220 {
		score += 1
	}
	return score
}

type candidate struct {
	text  string
	pos   int
	score float64
}

// Build assembles the excerpt for post. The title leads; the best sentences
// from the body and then the top comments follow in that order.
func Build(post models.RankedPost, tokens []string, opts Options) Excerpt {
	opts = normalizeOptions(opts)

	lead := strings.Join(strings.Fields(post.Title), " ")
	if lead != "" && !isTerminal([]rune(lead)[len([]rune(lead))-1]) {
		lead += "."
	}

	body := PlainText(post.Body, post.BodyHTML)
	pool := candidates(Sentences(body), 0, tokens, opts.Keywords)
	var comments []string
	for _, c := range post.TopComments {
		comments = append(comments, Sentences(PlainText(c, ""))...)
	}
	pool = append(pool, candidates(comments, len(pool), tokens, opts.Keywords)...)

	var text string
	switch {
	case len(pool) > 0:
		text = assemble(lead, pool, opts)
	case body != "":
		text = truncateChars(strings.TrimSpace(lead+" "+strings.ReplaceAll(body, "\n", " ")), opts.MaxChars)
	default:
		text = truncateChars(lead, opts.MaxChars)
	}

	return Excerpt{
		Text:          text,
		SentenceCount: max(1, len(Sentences(text))),
		WordCount:     CountWords(text),
		SubjectMatch:  mentions(text, tokens),
	}
}

func normalizeOptions(o Options) Options {
	if o.MinSentences < 1 {
		o.MinSentences = 2
	}
	if o.MaxSentences < o.MinSentences {
		o.MaxSentences = max(o.MinSentences, 4)
	}
	if o.MaxChars <= 0 {
		o.MaxChars = 700
	}
	return o
}

func candidates(sentences []string, offset int, tokens, keywords []string) []candidate {
	out := make([]candidate, len(sentences))
	for i, s := range sentences {
		out[i] = candidate{text: s, pos: offset + i, score: GossipScore(s, tokens, keywords)}
	}
	return out
}

// assemble picks the highest scoring sentences, restores their order and
// adds them after the lead while the text stays within MaxChars.
func assemble(lead string, pool []candidate, opts Options) string {
	best := append([]candidate(nil), pool...)
	sort.SliceStable(best, func(i, j int) bool { return best[i].score > best[j].score })

	limit := opts.MaxSentences
	if lead != "" {
		limit--
	}
	limit = max(limit, 1)
	if len(best) > limit {
		best = best[:limit]
	}
	sort.Slice(best, func(i, j int) bool { return best[i].pos < best[j].pos })

	parts := []string{}
	size := 0
	if lead != "" {
		lead = truncateChars(lead, opts.MaxChars)
		parts = append(parts, lead)
		size = len(lead)
	}
	for _, c := range best {
		if size+1+len(c.text) > opts.MaxChars {
			continue
		}
		parts = append(parts, c.text)
		size += 1 + len(c.text)
	}

	// Nothing fit beside the lead: use a trimmed version of the best one.
	if len(parts) == 0 || (lead != "" && len(parts) == 1 && size < opts.MaxChars/2) {
		room := opts.MaxChars - size - 1
		if room > minSentenceChars {
			parts = append(parts, truncateChars(best[0].text, room))
		}
	}
	return strings.Join(parts, " ")
}

func mentions(text string, tokens []string) bool {
	lower := strings.ToLower(text)
	for _, tok := range tokens {
		if tok != "" && strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}
