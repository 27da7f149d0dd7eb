package roll_test

import (
	"errors"
	"testing"
	"time"

	"github.com/KirkDiggler/yze-core/internal/dice"
	mockdice "github.com/KirkDiggler/yze-core/internal/dice/mock"
	"github.com/KirkDiggler/yze-core/internal/entities"
	yzeerr "github.com/KirkDiggler/yze-core/internal/errors"
	"github.com/KirkDiggler/yze-core/internal/services/roll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var pushTime = time.Date(2025, 6, 1, 12, 5, 0, 0, time.UTC)

func skillState(faces ...int) *entities.RollState {
	return roll.NewRollState(roll.StateParams{
		Kind:    entities.RollKindSkill,
		Title:   "Strength+Melee Roll",
		ActorID: "ada",
		Pool: &entities.PoolSnapshot{
			AttributeID:    "str",
			SkillID:        "melee",
			AttributeValue: 3,
			SkillValue:     2,
			Base:           5,
			Total:          len(faces),
		},
		Dice: faces,
		Now:  rollTime,
	})
}

func TestPush_RerollsNonSixes(t *testing.T) {
	state := skillState(6, 3, 6, 1, 2)
	roller := mockdice.NewManualMockRoller()
	roller.SetRolls([]int{6, 5, 4})

	res, err := roll.Push(state, roller, pushTime)
	require.NoError(t, err)
	require.True(t, res.Applied())

	assert.Equal(t, []int{6, 6, 6, 5, 4}, res.State.Results.Dice)
	assert.Equal(t, 3, res.State.Results.Successes)
	assert.Equal(t, []int{6, 6, 6}, res.State.Results.AttributeDice)
	assert.Equal(t, []int{5, 4}, res.State.Results.SkillDice)
	assert.Equal(t, []int{}, res.State.Results.ModifierDice)
	assert.Equal(t, []int{1, 3, 4}, res.State.Push.RerolledIndices)
	assert.Equal(t, []int{6, 5, 4}, res.Roll.Dice)
	assert.True(t, res.State.Pushed)
	assert.False(t, res.State.Pushable)
	assert.Equal(t, 1, res.State.PushCount)
	require.NotNil(t, res.State.UpdatedAt)
	assert.True(t, res.State.UpdatedAt.Equal(pushTime))
	assert.Equal(t, []int{3}, roller.PoolCounts())

	// Input and the previous snapshot stay untouched
	assert.Equal(t, []int{6, 3, 6, 1, 2}, state.Results.Dice)
	assert.False(t, state.Pushed)
	assert.Equal(t, []int{6, 3, 6, 1, 2}, res.Previous.Results.Dice)
	assert.Equal(t, 2, res.Previous.Results.Successes)
}

func TestPush_SixesAreSticky(t *testing.T) {
	before := []int{6, 1, 6, 2, 6, 3, 4}
	state := skillState(before...)
	roller := mockdice.NewManualMockRoller()
	roller.SetRolls([]int{1, 1, 1, 1})

	res, err := roll.Push(state, roller, pushTime)
	require.NoError(t, err)

	for i, face := range before {
		if face == entities.SuccessFace {
			assert.Equal(t, entities.SuccessFace, res.State.Results.Dice[i], "six at index %d changed", i)
		}
	}
	assert.GreaterOrEqual(t, res.State.Results.Successes, state.Results.Successes)
	assert.Len(t, res.State.Results.Dice, len(before))
}

func TestPush_Rejections(t *testing.T) {
	pushed := skillState(1, 2, 3, 4, 5)
	pushed.Pushed = true
	pushed.PushCount = 1

	notPushable := skillState(1, 2, 3, 4, 5)
	notPushable.Pushable = false

	// Already pushed wins over the other checks
	pushedAllSixes := skillState(6, 6, 6, 6, 6)
	pushedAllSixes.Pushed = true
	pushedAllSixes.Pushable = false

	empty := skillState()

	testCases := []struct {
		name   string
		state  *entities.RollState
		reason string
	}{
		{name: "already pushed", state: pushed, reason: roll.ReasonAlreadyPushed},
		{name: "already pushed and all sixes", state: pushedAllSixes, reason: roll.ReasonAlreadyPushed},
		{name: "all sixes", state: skillState(6, 6, 6, 6, 6), reason: roll.ReasonNothingToPush},
		{name: "empty pool", state: empty, reason: roll.ReasonNothingToPush},
		{name: "not pushable", state: notPushable, reason: roll.ReasonNotPushable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			roller := mockdice.NewMockRoller(ctrl)
			roller.EXPECT().RollPool(gomock.Any()).Times(0)

			res, err := roll.Push(tc.state, roller, pushTime)
			require.NoError(t, err)
			assert.False(t, res.Applied())
			assert.Equal(t, tc.reason, res.Rejected)
			assert.Nil(t, res.Roll)
			assert.Equal(t, tc.state.Results.Dice, res.State.Results.Dice)
			assert.Equal(t, tc.state.PushCount, res.State.PushCount)
			assert.Nil(t, res.State.UpdatedAt)
		})
	}
}

func TestPush_MissingState(t *testing.T) {
	noResults := skillState(1, 2)
	noResults.Results = nil

	nilDice := skillState(1, 2)
	nilDice.Results.Dice = nil

	malformed := skillState(1, 2, 3)
	malformed.Results.Dice[1] = 9

	testCases := []struct {
		name  string
		state *entities.RollState
	}{
		{name: "nil state", state: nil},
		{name: "no results", state: noResults},
		{name: "nil dice", state: nilDice},
		{name: "face out of range", state: malformed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := roll.Push(tc.state, mockdice.NewManualMockRoller(), pushTime)
			require.Error(t, err)
			assert.True(t, yzeerr.IsPushRejected(err))
			assert.Equal(t, roll.ReasonMissingState, yzeerr.GetReason(err))
		})
	}
}

func TestPush_RollerFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	roller := mockdice.NewMockRoller(ctrl)
	roller.EXPECT().RollPool(2).Return(nil, errors.New("entropy exhausted"))

	state := skillState(6, 2, 3)
	_, err := roll.Push(state, roller, pushTime)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entropy exhausted")
	assert.False(t, state.Pushed)
}

func TestPush_ShortReroll(t *testing.T) {
	ctrl := gomock.NewController(t)
	roller := mockdice.NewMockRoller(ctrl)
	roller.EXPECT().RollPool(2).Return(dice.NewPoolResult([]int{4}), nil)

	_, err := roll.Push(skillState(6, 2, 3), roller, pushTime)
	require.Error(t, err)
	assert.True(t, yzeerr.IsInternal(err))
}
