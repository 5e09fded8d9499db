package handlers

import (
	"context"
	"sync"
	"testing"

	"github.com/hoanghai1803/spillcheck/internal/config"
	"github.com/hoanghai1803/spillcheck/internal/models"
	"github.com/hoanghai1803/spillcheck/internal/storage"
)

// newTestStore creates an in-memory SQLite store with migrations applied. It
// registers a cleanup function to close the database when the test
// completes.
func newTestStore(t *testing.T) *storage.Store {
	t.Helper()

	db, err := storage.OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := storage.RunMigrations(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	return storage.NewStore(db)
}

func testConfig() *config.Config {
	return &config.Config{Game: config.GameConfig{RoundSeconds: 60, SeenWindowMinutes: 60}}
}

// fakeBuilder hands out numbered rounds with the real story first, or err.
type fakeBuilder struct {
	mu    sync.Mutex
	err   error
	calls int
	seen  [][]models.SeenStory
	topic []string
}

func (f *fakeBuilder) BuildRound(_ context.Context, topic string, seen []models.SeenStory) (*models.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.seen = append(f.seen, seen)
	f.topic = append(f.topic, topic)
	if f.err != nil {
		return nil, f.err
	}

	id := "reddit_" + string(rune('a'+f.calls-1))
	return &models.Round{
		Stories: [2]models.Story{
			{Content: "real gossip " + id, IsReal: true, StoryID: id, SourceURL: "https://www.reddit.com/r/x/comments/" + id},
			{Content: "made up gossip", StoryID: "fake_" + id},
		},
		CorrectIndex: 0,
		Metadata: models.RoundMetadata{
			SubjectMatch:    true,
			EngagementScore: 120,
			NewStoryIDs:     []string{id},
			Topic:           topic,
			Query:           topic,
			Subreddit:       "popculturechat",
		},
	}, nil
}
