package game

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/hoanghai1803/spillcheck/internal/models"
)

var t0 = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func testRound(realID string, correct int) *models.Round {
	real := models.Story{Content: "real " + realID, IsReal: true, StoryID: realID, SourceURL: "https://www.reddit.com/r/x/comments/" + realID}
	fake := models.Story{Content: "fake", StoryID: "fake_" + realID}
	r := &models.Round{CorrectIndex: correct, Metadata: models.RoundMetadata{NewStoryIDs: []string{realID}}}
	if correct == 0 {
		r.Stories = [2]models.Story{real, fake}
	} else {
		r.Stories = [2]models.Story{fake, real}
	}
	return r
}

func TestSession_FullGame(t *testing.T) {
	s := NewSession("g1", "drama", time.Minute, t0)
	if got := s.Game().State; got != models.GameIdle {
		t.Fatalf("new session state = %q, want idle", got)
	}

	if err := s.Start(t0, testRound("reddit_a", 1)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	g := s.Game()
	if g.State != models.GamePlaying {
		t.Fatalf("state after Start = %q, want playing", g.State)
	}
	if !g.Deadline.Equal(t0.Add(time.Minute)) {
		t.Errorf("Deadline = %v, want %v", g.Deadline, t0.Add(time.Minute))
	}

	correct, err := s.Guess(t0.Add(5*time.Second), 1)
	if err != nil || !correct {
		t.Fatalf("Guess(1) = %v, %v; want true, nil", correct, err)
	}
	if g.State != models.GameRevealed || g.Score != 1 || g.Attempts != 1 {
		t.Errorf("after correct guess: state %q score %d attempts %d", g.State, g.Score, g.Attempts)
	}

	if err := s.Next(t0.Add(10*time.Second), testRound("reddit_b", 0)); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if g.State != models.GamePlaying || g.LastGuess != nil {
		t.Errorf("after Next: state %q last guess %v, want playing with no guess", g.State, g.LastGuess)
	}

	correct, err = s.Guess(t0.Add(20*time.Second), 1)
	if err != nil || correct {
		t.Fatalf("Guess(1) = %v, %v; want false, nil", correct, err)
	}
	if g.Score != 1 || g.Attempts != 2 {
		t.Errorf("after wrong guess: score %d attempts %d, want 1 and 2", g.Score, g.Attempts)
	}

	var ids []string
	for _, st := range s.Seen() {
		ids = append(ids, st.ID)
	}
	if diff := cmp.Diff([]string{"reddit_a", "reddit_b"}, ids); diff != "" {
		t.Errorf("seen ids (-want +got):\n%s", diff)
	}
}

func TestSession_InvalidTransitions(t *testing.T) {
	tests := []struct {
		name string
		run  func(s *Session) error
		want error
	}{
		{
			name: "guess before start",
			run: func(s *Session) error {
				_, err := s.Guess(t0, 0)
				return err
			},
			want: ErrInvalidTransition,
		},
		{
			name: "next before start",
			run:  func(s *Session) error { return s.Next(t0, testRound("reddit_b", 0)) },
			want: ErrInvalidTransition,
		},
		{
			name: "start twice",
			run: func(s *Session) error {
				_ = s.Start(t0, testRound("reddit_a", 0))
				return s.Start(t0, testRound("reddit_b", 0))
			},
			want: ErrInvalidTransition,
		},
		{
			name: "guess twice",
			run: func(s *Session) error {
				_ = s.Start(t0, testRound("reddit_a", 0))
				_, _ = s.Guess(t0, 0)
				_, err := s.Guess(t0, 0)
				return err
			},
			want: ErrInvalidTransition,
		},
		{
			name: "next while playing",
			run: func(s *Session) error {
				_ = s.Start(t0, testRound("reddit_a", 0))
				return s.Next(t0, testRound("reddit_b", 0))
			},
			want: ErrInvalidTransition,
		},
		{
			name: "choice out of range",
			run: func(s *Session) error {
				_ = s.Start(t0, testRound("reddit_a", 0))
				_, err := s.Guess(t0, 2)
				return err
			},
			want: ErrInvalidChoice,
		},
		{
			name: "start without round",
			run:  func(s *Session) error { return s.Start(t0, nil) },
			want: ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession("g1", "drama", time.Minute, t0)
			if err := tt.run(s); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSession_InvalidChoiceKeepsPlaying(t *testing.T) {
	s := NewSession("g1", "drama", time.Minute, t0)
	_ = s.Start(t0, testRound("reddit_a", 0))

	if _, err := s.Guess(t0, -1); !errors.Is(err, ErrInvalidChoice) {
		t.Fatalf("Guess(-1) error = %v, want ErrInvalidChoice", err)
	}
	if g := s.Game(); g.State != models.GamePlaying || g.Attempts != 0 {
		t.Errorf("state %q attempts %d, want playing and 0", g.State, g.Attempts)
	}
}

func TestSession_DeadlineEndsGameFirst(t *testing.T) {
	tests := []struct {
		name  string
		setup func(s *Session)
		act   func(s *Session, at time.Time) error
	}{
		{
			name:  "guess while playing",
			setup: func(*Session) {},
			act: func(s *Session, at time.Time) error {
				_, err := s.Guess(at, 0)
				return err
			},
		},
		{
			name:  "next while revealed",
			setup: func(s *Session) { _, _ = s.Guess(t0.Add(time.Second), 0) },
			act:   func(s *Session, at time.Time) error { return s.Next(at, testRound("reddit_b", 0)) },
		},
	}

	for _, tt := range tests {
		for _, at := range []time.Time{t0.Add(time.Minute), t0.Add(2 * time.Minute)} {
			t.Run(tt.name+" at "+at.Sub(t0).String(), func(t *testing.T) {
				s := NewSession("g1", "drama", time.Minute, t0)
				_ = s.Start(t0, testRound("reddit_a", 0))
				tt.setup(s)

				if err := tt.act(s, at); !errors.Is(err, ErrGameOver) {
					t.Fatalf("error = %v, want ErrGameOver", err)
				}
				if got := s.Game().State; got != models.GameOver {
					t.Errorf("state = %q, want game_over", got)
				}
			})
		}
	}
}

func TestSession_Expire(t *testing.T) {
	s := NewSession("g1", "drama", time.Minute, t0)
	if s.Expire(t0.Add(time.Hour)) {
		t.Fatal("Expire on an idle game changed state")
	}

	_ = s.Start(t0, testRound("reddit_a", 0))
	if s.Expire(t0.Add(59 * time.Second)) {
		t.Fatal("Expire before the deadline changed state")
	}
	if got := s.Remaining(t0.Add(45 * time.Second)); got != 15*time.Second {
		t.Errorf("Remaining = %v, want 15s", got)
	}
	if !s.Expire(t0.Add(time.Minute)) {
		t.Fatal("Expire at the deadline did not end the game")
	}
	if s.Expire(t0.Add(2 * time.Minute)) {
		t.Error("second Expire reported a change")
	}
	if got := s.Remaining(t0.Add(2 * time.Minute)); got != 0 {
		t.Errorf("Remaining after game over = %v, want 0", got)
	}
}

func TestSession_CanAdvance(t *testing.T) {
	s := NewSession("g1", "drama", time.Minute, t0)
	_ = s.Start(t0, testRound("reddit_a", 0))

	if err := s.CanAdvance(t0); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("CanAdvance while playing = %v, want ErrInvalidTransition", err)
	}
	_, _ = s.Guess(t0, 0)
	if err := s.CanAdvance(t0); err != nil {
		t.Errorf("CanAdvance while revealed = %v, want nil", err)
	}
	if err := s.CanAdvance(t0.Add(time.Minute)); !errors.Is(err, ErrGameOver) {
		t.Errorf("CanAdvance past deadline = %v, want ErrGameOver", err)
	}
	if got := s.Game().State; got != models.GameRevealed {
		t.Errorf("CanAdvance changed state to %q", got)
	}
}

func TestSession_Resume(t *testing.T) {
	g := &models.Game{ID: "g1", State: models.GameRevealed, Deadline: t0.Add(time.Minute), Round: testRound("reddit_a", 0)}
	seen := []models.SeenStory{{ID: "reddit_a", Timestamp: t0}}

	s := Resume(g, seen)
	if err := s.Next(t0.Add(time.Second), testRound("reddit_b", 1)); err != nil {
		t.Fatalf("Next after Resume: %v", err)
	}
	if len(s.Seen()) != 2 || len(seen) != 1 {
		t.Errorf("seen after Next = %d (input %d), want 2 without touching the input", len(s.Seen()), len(seen))
	}
}

func TestView_HidesAnswerUntilReveal(t *testing.T) {
	s := NewSession("g1", "drama", time.Minute, t0)
	_ = s.Start(t0, testRound("reddit_a", 1))

	v := s.View(t0.Add(10 * time.Second))
	if v.RemainingSeconds != 50 {
		t.Errorf("RemainingSeconds = %d, want 50", v.RemainingSeconds)
	}
	if len(v.Stories) != 2 {
		t.Fatalf("stories = %d, want 2", len(v.Stories))
	}
	if v.CorrectIndex != nil {
		t.Errorf("CorrectIndex exposed while playing: %d", *v.CorrectIndex)
	}
	for i, st := range v.Stories {
		if st.IsReal != nil || st.SourceURL != "" {
			t.Errorf("stories[%d] exposes the answer while playing: %+v", i, st)
		}
	}

	_, _ = s.Guess(t0.Add(11*time.Second), 0)
	v = s.View(t0.Add(12 * time.Second))
	if v.CorrectIndex == nil || *v.CorrectIndex != 1 {
		t.Fatalf("CorrectIndex after reveal = %v, want 1", v.CorrectIndex)
	}
	if st := v.Stories[1]; st.IsReal == nil || !*st.IsReal || st.SourceURL == "" {
		t.Errorf("real story after reveal = %+v, want flagged with source", st)
	}
	if v.LastGuess == nil || v.LastGuess.Correct {
		t.Errorf("LastGuess = %+v, want a wrong guess", v.LastGuess)
	}
}

func TestView_GameOverUnansweredStaysHidden(t *testing.T) {
	s := NewSession("g1", "drama", time.Minute, t0)
	_ = s.Start(t0, testRound("reddit_a", 0))
	s.Expire(t0.Add(time.Minute))

	v := s.View(t0.Add(time.Minute))
	if v.State != models.GameOver {
		t.Fatalf("state = %q, want game_over", v.State)
	}
	if v.CorrectIndex != nil {
		t.Error("unanswered round revealed after game over")
	}
}
