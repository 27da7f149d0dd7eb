package dice

import "math/rand/v2"

// randomRoller draws every die independently from the global source, which
// is safe for concurrent use
type randomRoller struct{}

// NewRandomRoller creates a new random dice roller
func NewRandomRoller() Roller {
	return &randomRoller{}
}

// Roll implements Roller.Roll
func (r *randomRoller) Roll(count, sides, bonus int) (*RollResult, error) {
	return Roll(count, sides, bonus)
}

// RollPool implements Roller.RollPool
func (r *randomRoller) RollPool(count int) (*PoolResult, error) {
	faces := make([]int, ClampCount(count))
	for i := range faces {
		faces[i] = rand.IntN(PoolSides) + 1
	}
	return NewPoolResult(faces), nil
}
