package roll

import (
	"time"

	"github.com/KirkDiggler/yze-core/internal/dice"
	"github.com/KirkDiggler/yze-core/internal/entities"
	yzeerr "github.com/KirkDiggler/yze-core/internal/errors"
)

// Push rejection reasons. MissingState is raised as an error; the others are
// steady states reported through PushResult.Rejected.
const (
	ReasonMissingState  = "missing_state"
	ReasonAlreadyPushed = "already_pushed"
	ReasonNothingToPush = "nothing_to_push"
	ReasonNotPushable   = "not_pushable"
)

// PushResult is the outcome of a push attempt
type PushResult struct {
	// State is the pushed state, or an untouched copy when the push was rejected
	State *entities.RollState

	// Previous is a copy of the state before the push
	Previous *entities.RollState

	// Roll holds only the rerolled dice; nil when rejected
	Roll *dice.PoolResult

	// Rejected is "" when the push was applied
	Rejected string
}

// Applied reports whether the push changed the roll
func (r *PushResult) Applied() bool {
	return r != nil && r.Rejected == ""
}

// Push rerolls every die that is not a 6, exactly once per roll. The input
// state is never modified.
func Push(state *entities.RollState, roller dice.Roller, now time.Time) (*PushResult, error) {
	if state == nil {
		return nil, yzeerr.PushRejected(ReasonMissingState, "cannot push: no roll state")
	}

	previous := state.Clone()
	reject := func(reason string) (*PushResult, error) {
		return &PushResult{State: state.Clone(), Previous: previous, Rejected: reason}, nil
	}

	if state.Pushed {
		return reject(ReasonAlreadyPushed)
	}

	if state.Results == nil || state.Results.Dice == nil {
		return nil, yzeerr.PushRejected(ReasonMissingState, "cannot push: dice results are missing")
	}
	before := state.Results.Dice
	for i, face := range before {
		if !dice.ValidFace(face) {
			return nil, yzeerr.PushRejected(ReasonMissingState, "cannot push: dice results are malformed").
				WithMeta("index", i).
				WithMeta("face", face)
		}
	}

	var indices []int
	for i, face := range before {
		if face != entities.SuccessFace {
			indices = append(indices, i)
		}
	}
	if len(indices) == 0 {
		return reject(ReasonNothingToPush)
	}
	if !state.Pushable {
		return reject(ReasonNotPushable)
	}

	if roller == nil {
		return nil, yzeerr.Internal("cannot push: no dice roller")
	}
	reroll, err := roller.RollPool(len(indices))
	if err != nil {
		return nil, yzeerr.Wrap(err, "failed to roll push dice")
	}
	if len(reroll.Dice) != len(indices) {
		return nil, yzeerr.Internalf("push drew %d dice, needed %d", len(reroll.Dice), len(indices))
	}

	after := append([]int(nil), before...)
	for i, index := range indices {
		after[index] = reroll.Dice[i]
	}

	next := state.Clone()
	attr, skill, mod := SliceDice(next.Kind, next.Pool, after)
	next.Results = &entities.RollResults{
		Dice:          after,
		Successes:     dice.CountFaces(after, entities.SuccessFace),
		AttributeDice: attr,
		SkillDice:     skill,
		ModifierDice:  mod,
	}
	next.Push = &entities.PushRecord{
		RerolledIndices: indices,
		BeforeDice:      append([]int(nil), before...),
		AfterDice:       append([]int(nil), after...),
	}
	next.Pushed = true
	next.PushCount++
	next.Pushable = false
	next.UpdatedAt = &now

	return &PushResult{State: next, Previous: previous, Roll: reroll}, nil
}
