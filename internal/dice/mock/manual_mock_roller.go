package mockdice

import (
	"fmt"
	"sync"

	"github.com/KirkDiggler/yze-core/internal/dice"
)

// ManualMockRoller implements dice.Roller for testing with predetermined results
type ManualMockRoller struct {
	mu        sync.Mutex
	rolls     []int
	rollIndex int
	pools     [][]int
}

// NewManualMockRoller creates a new mock dice roller
func NewManualMockRoller() *ManualMockRoller {
	return &ManualMockRoller{
		rolls: []int{},
	}
}

// SetNextRoll sets the next roll result
func (m *ManualMockRoller) SetNextRoll(roll int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = append(m.rolls, roll)
}

// SetRolls sets multiple roll results
func (m *ManualMockRoller) SetRolls(rolls []int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = rolls
	m.rollIndex = 0
}

// Remaining returns how many predetermined rolls have not been used
func (m *ManualMockRoller) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rolls) - m.rollIndex
}

// PoolCounts returns the sizes RollPool was asked for, in call order
func (m *ManualMockRoller) PoolCounts() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, len(m.pools))
	for i, p := range m.pools {
		out[i] = len(p)
	}
	return out
}

// Reset clears all rolls and resets the index
func (m *ManualMockRoller) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = []int{}
	m.rollIndex = 0
	m.pools = nil
}

// getNextRoll returns the next predetermined roll
func (m *ManualMockRoller) getNextRoll() (int, error) {
	if m.rollIndex >= len(m.rolls) {
		return 0, fmt.Errorf("no more predetermined rolls available (used %d of %d)", m.rollIndex, len(m.rolls))
	}

	roll := m.rolls[m.rollIndex]
	m.rollIndex++
	return roll, nil
}

func (m *ManualMockRoller) draw(count, sides int) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rolls := make([]int, count)
	for i := range rolls {
		roll, err := m.getNextRoll()
		if err != nil {
			return nil, err
		}
		if roll < 1 || roll > sides {
			return nil, fmt.Errorf("invalid roll %d for d%d", roll, sides)
		}
		rolls[i] = roll
	}
	return rolls, nil
}

// Roll implements dice.Roller.Roll
func (m *ManualMockRoller) Roll(count, sides, bonus int) (*dice.RollResult, error) {
	rolls, err := m.draw(count, sides)
	if err != nil {
		return nil, err
	}
	return dice.NewRollResult(rolls, sides, bonus), nil
}

// RollPool implements dice.Roller.RollPool
func (m *ManualMockRoller) RollPool(count int) (*dice.PoolResult, error) {
	faces, err := m.draw(dice.ClampCount(count), dice.PoolSides)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.pools = append(m.pools, faces)
	m.mu.Unlock()

	return dice.NewPoolResult(faces), nil
}
