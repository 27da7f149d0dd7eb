package roll

import (
	"fmt"

	"github.com/KirkDiggler/yze-core/internal/dice"
	"github.com/KirkDiggler/yze-core/internal/entities"
)

// Summarize projects a roll state into the compact summary cached on the
// actor. It is always rebuilt from the state, never patched.
func Summarize(state *entities.RollState, setting *entities.Setting, recordID string) *entities.RollSummary {
	if state == nil {
		return nil
	}

	label := state.Title
	if label == "" {
		label = "YZE Roll"
	}
	if state.Pool != nil {
		switch state.Kind {
		case entities.RollKindAttribute:
			label = setting.AttributeName(state.Pool.AttributeID)
		case entities.RollKindSkill:
			label = fmt.Sprintf("%s (%s)",
				setting.SkillName(state.Pool.SkillID),
				setting.AttributeName(state.Pool.AttributeID))
		}
	}

	summary := &entities.RollSummary{
		RecordID:  recordID,
		Label:     label,
		Pushed:    state.Pushed,
		PushCount: state.PushCount,
		Timestamp: state.LastTouched(),
	}
	if state.Pushed && summary.PushCount == 0 {
		summary.PushCount = 1
	}
	if state.Results != nil {
		summary.Successes = state.Results.Successes
		summary.Banes = dice.CountFaces(state.Results.Dice, entities.BaneFace)
	}
	return summary
}
