package game

import (
	"errors"
	"time"

	"github.com/hoanghai1803/spillcheck/internal/models"
)

var (
	// ErrGameOver is returned for moves made after the countdown ended.
	ErrGameOver = errors.New("game is over")
	// ErrInvalidTransition is returned for moves the current state forbids.
	ErrInvalidTransition = errors.New("invalid game transition")
	// ErrInvalidChoice is returned for a guess that is not 0 or 1.
	ErrInvalidChoice = errors.New("choice must be 0 or 1")
)

// Session drives one game through idle, playing, revealed and game_over.
// The countdown covers the whole game: any move at or after the deadline
// ends the game first, whatever state it was in.
type Session struct {
	game     *models.Game
	duration time.Duration
	seen     []models.SeenStory
}

// NewSession creates an idle game. duration is the countdown length.
func NewSession(id, topic string, duration time.Duration, now time.Time) *Session {
	return &Session{
		game: &models.Game{
			ID:        id,
			Topic:     topic,
			State:     models.GameIdle,
			UpdatedAt: now,
		},
		duration: duration,
	}
}

// Resume wraps a stored game together with the stories it has already shown.
func Resume(g *models.Game, seen []models.SeenStory) *Session {
	return &Session{game: g, seen: append([]models.SeenStory(nil), seen...)}
}

// Game returns the underlying game.
func (s *Session) Game() *models.Game { return s.game }

// Seen returns the stories shown so far.
func (s *Session) Seen() []models.SeenStory { return s.seen }

// Start begins the countdown with the first round.
func (s *Session) Start(now time.Time, round *models.Round) error {
	if s.game.State != models.GameIdle {
		return ErrInvalidTransition
	}
	if round == nil {
		return ErrInvalidTransition
	}

	s.game.State = models.GamePlaying
	s.game.StartedAt = now
	s.game.Deadline = now.Add(s.duration)
	s.setRound(now, round)
	return nil
}

// Guess reveals the current round and reports whether index picked the real
// story.
func (s *Session) Guess(now time.Time, index int) (bool, error) {
	if s.Expire(now) || s.game.State == models.GameOver {
		return false, ErrGameOver
	}
	if s.game.State != models.GamePlaying || s.game.Round == nil {
		return false, ErrInvalidTransition
	}
	if index != 0 && index != 1 {
		return false, ErrInvalidChoice
	}

	correct := index == s.game.Round.CorrectIndex
	s.game.Attempts++
	if correct {
		s.game.Score++
	}
	s.game.LastGuess = &models.Guess{Index: index, Correct: correct}
	s.game.State = models.GameRevealed
	s.game.UpdatedAt = now
	return correct, nil
}

// Next moves from a revealed round to a new one.
func (s *Session) Next(now time.Time, round *models.Round) error {
	if s.Expire(now) || s.game.State == models.GameOver {
		return ErrGameOver
	}
	if s.game.State != models.GameRevealed || round == nil {
		return ErrInvalidTransition
	}

	s.game.State = models.GamePlaying
	s.setRound(now, round)
	return nil
}

// CanAdvance reports whether Next would be accepted at now, without changing
// state. Callers use it to avoid building a round that would be discarded.
func (s *Session) CanAdvance(now time.Time) error {
	switch {
	case s.game.State == models.GameOver, s.pastDeadline(now):
		return ErrGameOver
	case s.game.State != models.GameRevealed:
		return ErrInvalidTransition
	}
	return nil
}

// Expire ends the game when the deadline has passed. It reports whether the
// state changed.
func (s *Session) Expire(now time.Time) bool {
	if !s.pastDeadline(now) || s.game.State == models.GameOver {
		return false
	}
	s.game.State = models.GameOver
	s.game.UpdatedAt = now
	return true
}

// Remaining is the time left on the countdown.
func (s *Session) Remaining(now time.Time) time.Duration {
	if s.game.State == models.GameIdle || s.game.State == models.GameOver {
		return 0
	}
	return max(s.game.Deadline.Sub(now), 0)
}

func (s *Session) pastDeadline(now time.Time) bool {
	if s.game.State == models.GameIdle || s.game.Deadline.IsZero() {
		return false
	}
	return !now.Before(s.game.Deadline)
}

func (s *Session) setRound(now time.Time, round *models.Round) {
	s.game.Round = round
	s.game.LastGuess = nil
	s.game.UpdatedAt = now
	for _, id := range round.Metadata.NewStoryIDs {
		s.seen = append(s.seen, models.SeenStory{ID: id, Timestamp: now})
	}
}
