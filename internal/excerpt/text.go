package excerpt

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	mdLinkPattern     = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	mdEmphasisPattern = regexp.MustCompile(`(\*\*|__|~~|\*|\^)`)
	mdQuotePattern    = regexp.MustCompile(`(?m)^\s*(&gt;|>)+\s?`)
	mdHeadingPattern  = regexp.MustCompile(`(?m)^\s*#{1,6}\s+`)
	mdListPattern     = regexp.MustCompile(`(?m)^\s*([-*+]|\d+\.)\s+`)
	bareURLPattern    = regexp.MustCompile(`https?://\S+`)
)

// blockElements end a line of text when they close.
var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true,
	atom.Blockquote: true, atom.Pre: true, atom.Tr: true, atom.Hr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Ul: true, atom.Ol: true, atom.Table: true,
}

// PlainText converts a post body to plain text. bodyHTML is preferred when
// present; otherwise the markdown body is stripped of its markup. Lines are
// separated by a single newline and whitespace within a line is collapsed.
func PlainText(body, bodyHTML string) string {
	if strings.TrimSpace(bodyHTML) != "" {
		if text, err := htmlText(bodyHTML); err == nil && strings.TrimSpace(text) != "" {
			return cleanLines(text)
		}
	}
	return cleanLines(markdownText(body))
}

func htmlText(s string) (string, error) {
	doc, err := nethtml.Parse(strings.NewReader(s))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var walk func(n *nethtml.Node)
	walk = func(n *nethtml.Node) {
		switch n.Type {
		case nethtml.TextNode:
			b.WriteString(n.Data)
			return
		case nethtml.ElementNode:
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == nethtml.ElementNode && blockElements[n.DataAtom] {
			b.WriteByte('\n')
		}
	}
	walk(doc)
	return b.String(), nil
}

func markdownText(s string) string {
	s = mdLinkPattern.ReplaceAllString(s, "$1")
	s = bareURLPattern.ReplaceAllString(s, "")
	s = mdQuotePattern.ReplaceAllString(s, "")
	s = mdHeadingPattern.ReplaceAllString(s, "")
	s = mdListPattern.ReplaceAllString(s, "")
	s = mdEmphasisPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "&#x200B;", "")
	return html.UnescapeString(s)
}

// cleanLines collapses whitespace within each line and drops empty lines.
func cleanLines(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(strings.ReplaceAll(line, "\u200b", "")), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// minSentenceChars drops fragments like "Edit:" or "lol".
const minSentenceChars = 20

// Sentences splits text into sentences at '.', '!' or '?' followed by a space
// or the end of the text, and at line breaks. Fragments shorter than 20
// characters or with no letters are dropped.
func Sentences(text string) []string {
	var out []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if len(s) < minSentenceChars || !strings.ContainsFunc(s, unicode.IsLetter) {
			return
		}
		out = append(out, s)
	}

	for _, line := range strings.Split(text, "\n") {
		runes := []rune(line)
		start := 0
		for i := 0; i < len(runes); i++ {
			if !isTerminal(runes[i]) {
				continue
			}
			// Absorb runs like "?!" and closing quotes.
			j := i + 1
			for j < len(runes) && (isTerminal(runes[j]) || isCloser(runes[j])) {
				j++
			}
			if j == len(runes) || unicode.IsSpace(runes[j]) {
				add(string(runes[start:j]))
				start = j
			}
			i = j - 1
		}
		if start < len(runes) {
			add(string(runes[start:]))
		}
	}
	return out
}

func isTerminal(r rune) bool { return r == '.' || r == '!' || r == '?' }

func isCloser(r rune) bool { return r == '"' || r == '\'' || r == ')' || r == '”' || r == '’' }

// CountWords counts words in the text, treating punctuation as a separator.
func CountWords(text string) int {
	count := 0
	inWord := false
	for _, r := range text {
		if unicode.IsSpace(r) || strings.ContainsRune(".,;:!?\"()[]{}—–-", r) {
			if inWord {
				count++
				inWord = false
			}
		} else {
			inWord = true
		}
	}
	if inWord {
		count++
	}
	return count
}

// truncateChars cuts s at a word boundary and appends an ellipsis so the
// result, ellipsis included, is at most max bytes.
func truncateChars(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	limit := max - len(ellipsis)
	if limit <= 0 {
		return ""
	}
	cut := strings.LastIndexByte(s[:limit+1], ' ')
	if cut <= 0 {
		cut = limit
		for cut > 0 && !utf8Start(s[cut]) {
			cut--
		}
	}
	return strings.TrimRight(s[:cut], " ,;:") + ellipsis
}

const ellipsis = "…"

func utf8Start(b byte) bool { return b&0xC0 != 0x80 }
