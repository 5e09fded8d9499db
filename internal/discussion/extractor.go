package discussion

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// maxArticleWords caps text pulled from a linked article.
const maxArticleWords = 400

// Extractor returns the readable text of the page at rawURL.
type Extractor func(ctx context.Context, rawURL string) (string, error)

// browserHeaders sets browser-like request headers so news sites don't reject
// the request with 403 or 406.
func browserHeaders(r *http.Request) {
	r.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	r.Header.Set("User-Agent", "Mozilla/5.0 (compatible; Spillcheck/1.0)")
}

// ReadabilityExtractor returns an Extractor backed by go-readability. The
// page fetch is bounded by the context deadline.
func ReadabilityExtractor() Extractor {
	return func(ctx context.Context, rawURL string) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		timeout := defaultExtractTimeout
		if deadline, ok := ctx.Deadline(); ok {
			timeout = time.Until(deadline)
		}
		article, err := readability.FromURL(rawURL, timeout, browserHeaders)
		if err != nil {
			return "", fmt.Errorf("readability extraction: %w", err)
		}
		return truncateWords(article.TextContent, maxArticleWords), nil
	}
}

// mediaExts are link targets readability cannot make text of.
var mediaExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".gifv": true,
	".webp": true, ".mp4": true, ".webm": true, ".pdf": true,
}

// extractable reports whether a link post's URL points at an external
// article worth fetching.
func extractable(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "redd.it" || strings.HasSuffix(host, ".redd.it") ||
		host == "reddit.com" || strings.HasSuffix(host, ".reddit.com") ||
		host == "imgur.com" || strings.HasSuffix(host, ".imgur.com") {
		return false
	}
	return !mediaExts[strings.ToLower(path.Ext(u.Path))]
}

// truncateWords returns the first maxWords whitespace-delimited words from s.
// If s contains fewer than maxWords words, it is returned unchanged.
func truncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ")
}
