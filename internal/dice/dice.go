package dice

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

// ErrInvalidNotation is returned by RollString for malformed dice notation
var ErrInvalidNotation = errors.New("invalid dice string")

// RollResult is a generic NdM+B roll
type RollResult struct {
	Total   int
	Highest int
	Lowest  int
	Rolls   []int
	Bonus   int
	Count   int
	Sides   int
}

// Roll rolls count dice of the given size and adds bonus to the total
func Roll(count, size, bonus int) (*RollResult, error) {
	if count < 1 {
		return nil, errors.New("invalid dice count")
	}

	if size < 1 {
		return nil, errors.New("invalid dice size")
	}

	out := make([]int, count)
	for i := range out {
		out[i] = rand.IntN(size) + 1
	}

	return NewRollResult(out, size, bonus), nil
}

// NewRollResult packages already rolled faces
func NewRollResult(rolls []int, sides, bonus int) *RollResult {
	result := &RollResult{
		Rolls: rolls,
		Bonus: bonus,
		Count: len(rolls),
		Sides: sides,
	}

	total := 0
	for i, roll := range rolls {
		total += roll
		if i == 0 || roll < result.Lowest {
			result.Lowest = roll
		}
		if i == 0 || roll > result.Highest {
			result.Highest = roll
		}
	}
	result.Total = total + bonus

	return result
}

// ParseNotation parses "3d6", "d6", "2d8+1" or "4d6-2"
func ParseNotation(notation string) (count, sides, bonus int, err error) {
	s := strings.ToLower(strings.ReplaceAll(notation, " ", ""))

	dice := s
	if i := strings.IndexAny(s, "+-"); i >= 0 {
		bonus, err = strconv.Atoi(s[i:])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidNotation, notation)
		}
		dice = s[:i]
	}

	parts := strings.Split(dice, "d")
	if len(parts) != 2 {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidNotation, notation)
	}

	count = 1
	if parts[0] != "" {
		count, err = strconv.Atoi(parts[0])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidNotation, notation)
		}
	}

	sides, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidNotation, notation)
	}

	return count, sides, bonus, nil
}

// RollString rolls dice notation with the package-level random source
func RollString(notation string) (*RollResult, error) {
	count, sides, bonus, err := ParseNotation(notation)
	if err != nil {
		return nil, err
	}
	return Roll(count, sides, bonus)
}

func (r *RollResult) String() string {
	compact := strings.ReplaceAll(fmt.Sprintf("%v", r.Rolls), " ", "")
	switch {
	case r.Bonus > 0:
		return fmt.Sprintf("**%d** : %s +%d", r.Total, compact, r.Bonus)
	case r.Bonus < 0:
		return fmt.Sprintf("**%d** : %s %d", r.Total, compact, r.Bonus)
	default:
		return fmt.Sprintf("**%d** : %s", r.Total, compact)
	}
}
