package game

import (
	"time"

	"github.com/hoanghai1803/spillcheck/internal/models"
)

// StoryView is a story as shown to the player. IsReal and SourceURL stay
// empty until the round is revealed.
type StoryView struct {
	Content   string `json:"content"`
	StoryID   string `json:"storyId"`
	IsReal    *bool  `json:"isReal,omitempty"`
	SourceURL string `json:"sourceUrl,omitempty"`
}

// View is the player-facing state of a game.
type View struct {
	ID               string           `json:"id"`
	Topic            string           `json:"topic"`
	State            models.GameState `json:"state"`
	Score            int              `json:"score"`
	Attempts         int              `json:"attempts"`
	Deadline         time.Time        `json:"deadline"`
	RemainingSeconds int              `json:"remainingSeconds"`
	Stories          []StoryView      `json:"stories,omitempty"`
	CorrectIndex     *int             `json:"correctIndex,omitempty"`
	LastGuess        *models.Guess    `json:"lastGuess,omitempty"`
	SubjectMatch     bool             `json:"subjectMatch"`
	FallbackUsed     bool             `json:"fallbackUsed"`
}

// View renders the session for the player at now.
func (s *Session) View(now time.Time) View {
	g := s.game
	v := View{
		ID:               g.ID,
		Topic:            g.Topic,
		State:            g.State,
		Score:            g.Score,
		Attempts:         g.Attempts,
		Deadline:         g.Deadline,
		RemainingSeconds: int(s.Remaining(now).Seconds()),
		LastGuess:        g.LastGuess,
	}
	if g.Round == nil {
		return v
	}

	// After game over the last round is revealed only if it was answered.
	reveal := g.State == models.GameRevealed || (g.State == models.GameOver && g.LastGuess != nil)

	v.SubjectMatch = g.Round.Metadata.SubjectMatch
	v.FallbackUsed = g.Round.Metadata.FallbackUsed
	for _, st := range g.Round.Stories {
		sv := StoryView{Content: st.Content, StoryID: st.StoryID}
		if reveal {
			isReal := st.IsReal
			sv.IsReal = &isReal
			sv.SourceURL = st.SourceURL
		}
		v.Stories = append(v.Stories, sv)
	}
	if reveal {
		idx := g.Round.CorrectIndex
		v.CorrectIndex = &idx
	}
	return v
}
