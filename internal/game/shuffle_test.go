package game

import (
	"math/rand/v2"
	"testing"

	"github.com/hoanghai1803/spillcheck/internal/models"
)

type fixedIntN int

func (f fixedIntN) IntN(int) int { return int(f) }

func TestShuffle_Placement(t *testing.T) {
	real := models.Story{Content: "real", StoryID: "reddit_a", IsReal: false}
	fake := models.Story{Content: "fake", StoryID: "fake_b", IsReal: true}

	tests := []struct {
		name        string
		draw        int
		wantCorrect int
	}{
		{name: "real first", draw: 0, wantCorrect: 0},
		{name: "real second", draw: 1, wantCorrect: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stories, correct := Shuffle(real, fake, fixedIntN(tt.draw))
			if correct != tt.wantCorrect {
				t.Fatalf("correct index = %d, want %d", correct, tt.wantCorrect)
			}
			if got := stories[correct]; got.Content != "real" || !got.IsReal {
				t.Errorf("stories[%d] = %+v, want the real story flagged real", correct, got)
			}
			if got := stories[1-correct]; got.Content != "fake" || got.IsReal {
				t.Errorf("stories[%d] = %+v, want the fake story flagged fake", 1-correct, got)
			}
		})
	}
}

func TestShuffle_Balanced(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	const trials = 10000

	first := 0
	for range trials {
		stories, correct := Shuffle(models.Story{Content: "r"}, models.Story{Content: "f"}, rng)

		realCount := 0
		for _, s := range stories {
			if s.IsReal {
				realCount++
			}
		}
		if realCount != 1 {
			t.Fatalf("round has %d real stories, want exactly 1", realCount)
		}
		if correct == 0 {
			first++
		}
	}

	// Six standard deviations either side of an even split.
	if first < 4700 || first > 5300 {
		t.Errorf("real story placed first %d of %d times, want about half", first, trials)
	}
}
