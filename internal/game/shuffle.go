package game

import "github.com/hoanghai1803/spillcheck/internal/models"

// IntNSource is the part of *rand.Rand used for ordering.
type IntNSource interface {
	IntN(n int) int
}

// Shuffle orders the real and fake story uniformly at random and returns the
// index of the real one.
func Shuffle(real, fake models.Story, rng IntNSource) ([2]models.Story, int) {
	real.IsReal = true
	fake.IsReal = false

	if rng.IntN(2) == 0 {
		return [2]models.Story{real, fake}, 0
	}
	return [2]models.Story{fake, real}, 1
}
