package models

import "time"

// GameState is a phase of the presentation state machine.
type GameState string

const (
	GameIdle     GameState = "idle"
	GamePlaying  GameState = "playing"
	GameRevealed GameState = "revealed"
	GameOver     GameState = "game_over"
)

// Game is a timed play session on one topic.
type Game struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	State     GameState `json:"state"`
	Score     int       `json:"score"`
	Attempts  int       `json:"attempts"`
	StartedAt time.Time `json:"started_at"`
	Deadline  time.Time `json:"deadline"`
	Round     *Round    `json:"round,omitempty"`
	LastGuess *Guess    `json:"last_guess,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Guess is the player's answer for the current round.
type Guess struct {
	Index   int  `json:"index"`
	Correct bool `json:"correct"`
}
