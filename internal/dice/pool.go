package dice

import "github.com/KirkDiggler/yze-core/internal/entities"

// PoolSides is the die size of every pool die
const PoolSides = 6

// PoolResult is a rolled dice pool
type PoolResult struct {
	Count     int
	Dice      []int
	Successes int
	Banes     int
}

// NewPoolResult counts successes and banes over already rolled faces
func NewPoolResult(faces []int) *PoolResult {
	return &PoolResult{
		Count:     len(faces),
		Dice:      faces,
		Successes: CountFaces(faces, entities.SuccessFace),
		Banes:     CountFaces(faces, entities.BaneFace),
	}
}

// CountFaces counts the dice showing face
func CountFaces(dice []int, face int) int {
	n := 0
	for _, d := range dice {
		if d == face {
			n++
		}
	}
	return n
}

// ClampCount floors a pool size at zero
func ClampCount(count int) int {
	if count < 0 {
		return 0
	}
	return count
}

// ValidFace reports whether v is a legal pool die face
func ValidFace(v int) bool {
	return v >= 1 && v <= PoolSides
}
