// Package fabrication produces the fake half of a round, racing the text
// provider against a deadline and falling back to a template.
package fabrication

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"strings"
	"time"

	"github.com/hoanghai1803/spillcheck/internal/ai"
	"github.com/hoanghai1803/spillcheck/internal/models"
	"github.com/hoanghai1803/spillcheck/internal/storage"
)

// Cache stores successful fabrications per post and model.
type Cache interface {
	GetFabrication(ctx context.Context, postID, model string) (*models.Fabrication, error)
	UpsertFabrication(ctx context.Context, f models.Fabrication) error
}

// Result is a fabricated story.
type Result struct {
	Text     string
	Fallback bool // true when the template was used
	Cached   bool
}

// Generator writes fake stories.
type Generator struct {
	provider ai.AIProvider
	timeout  time.Duration
	cache    Cache
	now      func() time.Time
}

// NewGenerator creates a Generator. provider and cache may be nil; without a
// provider every story comes from the fallback template.
func NewGenerator(provider ai.AIProvider, timeout time.Duration, cache Cache) *Generator {
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	return &Generator{provider: provider, timeout: timeout, cache: cache, now: time.Now}
}

type outcome struct {
	text string
	err  error
}

// Generate returns a fabricated story for req. postID keys the cache; an
// empty postID skips it. Generate never fails: timeouts, provider errors and
// empty output all produce the fallback template. There is no retry.
func (g *Generator) Generate(ctx context.Context, req ai.FabricationRequest, postID string) Result {
	if g.provider == nil {
		return Result{Text: Fallback(req), Fallback: true}
	}
	model := g.provider.Model()

	if g.cache != nil && postID != "" {
		f, err := g.cache.GetFabrication(ctx, postID, model)
		switch {
		case err == nil && strings.TrimSpace(f.Text) != "":
			slog.Debug("fabrication cache hit", "post", postID, "model", model)
			return Result{Text: f.Text, Cached: true}
		case err != nil && !errors.Is(err, storage.ErrNotFound):
			slog.Warn("failed to read fabrication cache", "post", postID, "error", err)
		}
	}

	text, err := g.race(ctx, req)
	if err != nil {
		slog.Warn("fabrication failed, using fallback",
			"topic", req.Topic,
			"model", model,
			"error", err,
		)
		return Result{Text: Fallback(req), Fallback: true}
	}

	if g.cache != nil && postID != "" {
		if err := g.cache.UpsertFabrication(ctx, models.Fabrication{
			PostID:    postID,
			Model:     model,
			Text:      text,
			CreatedAt: g.now().UTC(),
		}); err != nil {
			slog.Warn("failed to cache fabrication", "post", postID, "error", err)
		}
	}
	return Result{Text: text}
}

// race runs the provider call against the timeout. The call gets a context
// that is cancelled when the timeout fires, and its result channel is
// buffered so a late answer does not block the goroutine.
func (g *Generator) race(ctx context.Context, req ai.FabricationRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		text, err := g.provider.Fabricate(ctx, req)
		done <- outcome{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for provider: %w", ctx.Err())
	case out := <-done:
		if out.err != nil {
			return "", out.err
		}
		if strings.TrimSpace(out.text) == "" {
			return "", errors.New("provider returned an empty story")
		}
		return strings.TrimSpace(out.text), nil
	}
}

// fallbackTemplates are used when no provider answer is available. %s is the
// topic.
var fallbackTemplates = []string{
	"Not saying names but someone who works with %s told me the whole thing was staged from day one. Everyone on the team knew and nobody was allowed to talk about it.",
	"So my friend was at an event with %s last month and apparently there was a huge argument backstage. Security had to step in and it got hushed up really fast.",
	"Heard from a reliable source that %s has been quietly planning something big for months. The people involved signed NDAs and are already dropping hints online.",
	"Okay this is old news in certain circles but %s was not on good terms with half the people in that photo. The smiles were for the cameras only.",
}

// Fallback returns a templated story mentioning the topic. The same request
// always gets the same template.
func Fallback(req ai.FabricationRequest) string {
	t := strings.TrimSpace(req.Topic)
	if t == "" {
		t = "them"
	}
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(t) + "\x00" + req.Reference))
	return fmt.Sprintf(fallbackTemplates[h.Sum32()%uint32(len(fallbackTemplates))], t)
}
