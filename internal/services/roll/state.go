package roll

import (
	"time"

	"github.com/KirkDiggler/yze-core/internal/dice"
	"github.com/KirkDiggler/yze-core/internal/entities"
)

// StateParams is everything a fresh roll state is made from
type StateParams struct {
	Kind     entities.RollKind
	Title    string
	ActorID  string
	AuthorID string
	Setting  *entities.Setting
	Pool     *entities.PoolSnapshot
	Dice     []int
	Now      time.Time
}

// NewRollState creates a Fresh roll state. The roll is pushable unless the
// setting lists its kind as non-pushable; NPC pools additionally need can_push.
func NewRollState(p StateParams) *entities.RollState {
	faces := append([]int{}, p.Dice...)
	attr, skill, mod := SliceDice(p.Kind, p.Pool, faces)

	pushable := p.Setting.IsPushable(p.Kind)
	if p.Kind == entities.RollKindNPC {
		pushable = pushable && p.Pool != nil && p.Pool.CanPush
	}

	return &entities.RollState{
		Version:   entities.RollStateVersion,
		SettingID: p.Setting.GetID(),
		ActorID:   p.ActorID,
		AuthorID:  p.AuthorID,
		Kind:      p.Kind,
		Title:     p.Title,
		Pool:      p.Pool,
		Results: &entities.RollResults{
			Dice:          faces,
			Successes:     dice.CountFaces(faces, entities.SuccessFace),
			AttributeDice: attr,
			SkillDice:     skill,
			ModifierDice:  mod,
		},
		Pushed:    false,
		Pushable:  pushable,
		PushCount: 0,
		CreatedAt: p.Now,
	}
}

// SnapshotPool records a built pool on a roll state. An overridden base is
// sized entirely as attribute dice.
func SnapshotPool(pool *entities.DicePool) *entities.PoolSnapshot {
	if pool == nil {
		return nil
	}

	snap := &entities.PoolSnapshot{
		AttributeID:    pool.AttributeID,
		SkillID:        pool.SkillID,
		AttributeValue: pool.AttributeValue,
		SkillValue:     pool.SkillValue,
		Base:           pool.Base,
		Total:          pool.Total,
		Modifiers:      append([]entities.Modifier(nil), pool.Modifiers...),
		Breakdown:      pool.Breakdown,
		Summary:        append([]entities.SummaryLine(nil), pool.Summary...),
	}
	if pool.Overridden {
		snap.AttributeValue = pool.Base
		snap.SkillValue = 0
	}
	return snap
}

// SliceDice splits faces into attribute, skill and modifier dice using the
// sizing recorded in the pool snapshot. Attribute dice come first, then skill
// dice, then whatever the modifiers added. Sizing that does not fit the dice
// yields three empty slices.
func SliceDice(kind entities.RollKind, pool *entities.PoolSnapshot, faces []int) (attr, skill, mod []int) {
	attr, skill, mod = []int{}, []int{}, []int{}
	if pool == nil {
		return attr, skill, mod
	}

	switch kind {
	case entities.RollKindAttribute:
		a := pool.AttributeValue
		if a < 0 || a > len(faces) {
			return attr, skill, mod
		}
		attr = append(attr, faces[:a]...)
		mod = append(mod, faces[a:]...)
	case entities.RollKindSkill:
		a, s := pool.AttributeValue, pool.SkillValue
		if a < 0 || s < 0 || a+s > len(faces) {
			return attr, skill, mod
		}
		attr = append(attr, faces[:a]...)
		skill = append(skill, faces[a:a+s]...)
		mod = append(mod, faces[a+s:]...)
	}
	return attr, skill, mod
}
