package entities

// Scope limits which rolls a modifier applies to
type Scope string

const (
	ScopeAll       Scope = "all"
	ScopeAttribute Scope = "attribute"
	ScopeSkill     Scope = "skill"
)

// Origin records which source produced a modifier
type Origin string

const (
	OriginManual    Origin = "manual"    // Actor-held modifier entries
	OriginCondition Origin = "condition" // Active conditions on the actor
	OriginItem      Origin = "item"      // Equipped items
	OriginConfig    Origin = "config"    // Passed in for a single roll
)

// Modifier is a single signed contribution to a dice pool. Modifiers are
// recomputed on every pool build and never persisted on the actor.
type Modifier struct {
	Value        int    `json:"value"`
	Source       string `json:"source"`
	Scope        Scope  `json:"scope"`
	Attribute    string `json:"attribute,omitempty"`
	Skill        string `json:"skill,omitempty"`
	Origin       Origin `json:"origin"`
	ItemCategory string `json:"item_category,omitempty"`
	Stacks       int    `json:"stacks,omitempty"`
	StackLabel   string `json:"stack_label,omitempty"` // e.g. "(x2)"
}

// ModifierEntry is a modifier as stored on an actor or an item, or handed in
// by a caller for one roll
type ModifierEntry struct {
	ID        string `json:"id,omitempty" yaml:"id,omitempty"`
	Source    string `json:"source" yaml:"source"`
	Value     Amount `json:"value" yaml:"value"`
	Scope     Scope  `json:"scope,omitempty" yaml:"scope,omitempty"`
	Attribute string `json:"attribute,omitempty" yaml:"attribute,omitempty"`
	Skill     string `json:"skill,omitempty" yaml:"skill,omitempty"`
	Enabled   bool   `json:"enabled" yaml:"enabled"`
}

// ConditionState is an actor's state for one condition definition
type ConditionState struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Stacks  Amount `json:"stacks,omitempty" yaml:"stacks,omitempty"`
}

// EffectiveScope treats an empty scope as ScopeAll
func (e *ModifierEntry) EffectiveScope() Scope {
	if e.Scope == "" {
		return ScopeAll
	}
	return e.Scope
}

// EffectiveScope treats an empty scope as ScopeAll
func (d *ModifierDef) EffectiveScope() Scope {
	if d.Scope == "" {
		return ScopeAll
	}
	return d.Scope
}
