// Package modifiers collects the signed contributions that resize a dice pool.
//
// Sources are combined in a fixed order: actor-held manual entries, active
// conditions from the setting, equipped items, then caller supplied entries.
// Order only affects how breakdowns group; the sum is order independent.
package modifiers

import (
	"fmt"

	"github.com/KirkDiggler/yze-core/internal/entities"
)

// Scope selects the attribute and skill a pool is being built for
type Scope struct {
	AttributeID string
	SkillID     string
}

// Aggregate returns every modifier that applies to a roll within scope.
// Values are read through entities.Amount, so anything that is not a finite
// number has already been coerced to 0.
func Aggregate(actor *entities.Actor, setting *entities.Setting, scope Scope, adHoc []entities.ModifierEntry) []entities.Modifier {
	out := make([]entities.Modifier, 0)
	keep := func(mod entities.Modifier) {
		if Applies(mod, scope) {
			out = append(out, mod)
		}
	}

	if actor != nil {
		for _, entry := range actor.Flags.Modifiers {
			if !entry.Enabled {
				continue
			}
			keep(fromEntry(entry, entities.OriginManual))
		}

		for _, mod := range conditionModifiers(actor, setting) {
			keep(mod)
		}

		for _, item := range actor.Items {
			if !item.Equipped {
				continue
			}
			for _, entry := range item.Modifiers {
				mod := fromEntry(entry, entities.OriginItem)
				if mod.Source == "" {
					mod.Source = item.Name
				}
				mod.ItemCategory = item.Category
				keep(mod)
			}
		}
	}

	for _, entry := range adHoc {
		keep(fromEntry(entry, entities.OriginConfig))
	}

	return out
}

// Applies reports whether a modifier passes the scope filter
func Applies(mod entities.Modifier, scope Scope) bool {
	switch mod.Scope {
	case entities.ScopeAll:
		return true
	case entities.ScopeAttribute:
		return scope.AttributeID != "" && mod.Attribute == scope.AttributeID
	case entities.ScopeSkill:
		return scope.SkillID != "" && mod.Skill == scope.SkillID
	default:
		return false
	}
}

// ClampStacks bounds a requested stack count to [1, limit]
func ClampStacks(requested, limit int) int {
	if limit < 1 {
		limit = entities.DefaultMaxStacks
	}
	return min(max(requested, 1), limit)
}

// StackLabel formats the display suffix for a stack count
func StackLabel(stacks int) string {
	return fmt.Sprintf("(x%d)", stacks)
}

func conditionModifiers(actor *entities.Actor, setting *entities.Setting) []entities.Modifier {
	if setting == nil || len(actor.Flags.Conditions) == 0 {
		return nil
	}

	var out []entities.Modifier
	for i := range setting.Conditions {
		def := &setting.Conditions[i]
		state, ok := actor.Flags.Conditions[def.ID]
		if !ok || !state.Enabled {
			continue
		}

		name := def.Name
		if name == "" {
			name = def.ID
		}

		if !def.Stacking {
			for _, tmpl := range def.Modifiers {
				out = append(out, fromDef(tmpl, name, 1))
			}
			continue
		}

		stacks := ClampStacks(state.Stacks.Int(), def.StackLimit())
		for _, tmpl := range def.StackTemplate() {
			mod := fromDef(tmpl, name, stacks)
			mod.Stacks = stacks
			mod.StackLabel = StackLabel(stacks)
			out = append(out, mod)
		}
	}
	return out
}

func fromDef(def entities.ModifierDef, name string, multiplier int) entities.Modifier {
	source := def.Label
	if source == "" {
		source = name
	}
	return entities.Modifier{
		Value:     def.Value.Int() * multiplier,
		Source:    source,
		Scope:     def.EffectiveScope(),
		Attribute: def.Attribute,
		Skill:     def.Skill,
		Origin:    entities.OriginCondition,
	}
}

func fromEntry(entry entities.ModifierEntry, origin entities.Origin) entities.Modifier {
	source := entry.Source
	if source == "" && origin != entities.OriginItem {
		source = "Modifier"
	}
	return entities.Modifier{
		Value:     entry.Value.Int(),
		Source:    source,
		Scope:     entry.EffectiveScope(),
		Attribute: entry.Attribute,
		Skill:     entry.Skill,
		Origin:    origin,
	}
}
