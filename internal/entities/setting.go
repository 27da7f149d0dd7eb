package entities

import "strings"

// DefaultMaxStacks applies to stacking conditions that do not declare a limit
const DefaultMaxStacks = 3

// Setting is a ruleset definition: the attributes, skills, conditions and
// resources a campaign interprets rolls with. It is treated as immutable once
// registered.
type Setting struct {
	ID               string                 `json:"id" yaml:"id"`
	Name             string                 `json:"name" yaml:"name"`
	Attributes       []AttributeDef         `json:"attributes" yaml:"attributes"`
	Skills           []SkillDef             `json:"skills" yaml:"skills"`
	Conditions       []ConditionDef         `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Resources        map[string]ResourceDef `json:"resources,omitempty" yaml:"resources,omitempty"`
	NonPushableKinds []RollKind             `json:"non_pushable_kinds,omitempty" yaml:"non_pushable_kinds,omitempty"`
	PushConsequence  *PushConsequence       `json:"push_consequence,omitempty" yaml:"push_consequence,omitempty"`
}

// AttributeDef describes one attribute
type AttributeDef struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Default Amount `json:"default,omitempty" yaml:"default,omitempty"`
}

// SkillDef describes one skill and the attribute it is rolled with
type SkillDef struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Attribute string `json:"attribute" yaml:"attribute"`
	Default   Amount `json:"default,omitempty" yaml:"default,omitempty"`
}

// ConditionDef describes a status effect and the modifiers it grants.
// Stacking conditions multiply PerStack (or Modifiers when PerStack is empty)
// by the clamped stack count.
type ConditionDef struct {
	ID        string        `json:"id" yaml:"id"`
	Name      string        `json:"name" yaml:"name"`
	Stacking  bool          `json:"stacking,omitempty" yaml:"stacking,omitempty"`
	MaxStacks int           `json:"max_stacks,omitempty" yaml:"max_stacks,omitempty"`
	Modifiers []ModifierDef `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
	PerStack  []ModifierDef `json:"per_stack,omitempty" yaml:"per_stack,omitempty"`
}

// StackTemplate returns the modifiers scaled per stack
func (c *ConditionDef) StackTemplate() []ModifierDef {
	if len(c.PerStack) > 0 {
		return c.PerStack
	}
	return c.Modifiers
}

// StackLimit returns MaxStacks, or DefaultMaxStacks when unset
func (c *ConditionDef) StackLimit() int {
	if c.MaxStacks <= 0 {
		return DefaultMaxStacks
	}
	return c.MaxStacks
}

// ModifierDef is a scoped modifier template declared by a setting
type ModifierDef struct {
	Label     string `json:"label,omitempty" yaml:"label,omitempty"` // Overrides the condition name in breakdowns
	Value     Amount `json:"value" yaml:"value"`
	Scope     Scope  `json:"scope,omitempty" yaml:"scope,omitempty"`
	Attribute string `json:"attribute,omitempty" yaml:"attribute,omitempty"`
	Skill     string `json:"skill,omitempty" yaml:"skill,omitempty"`
}

// ResourceDef describes a tracked resource such as stress
type ResourceDef struct {
	ID         string `json:"id,omitempty" yaml:"id,omitempty"`
	Name       string `json:"name" yaml:"name"`
	Path       string `json:"path" yaml:"path"`
	MaxPath    string `json:"max_path,omitempty" yaml:"max_path,omitempty"`
	Default    Amount `json:"default,omitempty" yaml:"default,omitempty"`
	DefaultMax Amount `json:"default_max,omitempty" yaml:"default_max,omitempty"`
}

// PushConsequence is applied to the pushing actor after a successful push
type PushConsequence struct {
	Resource string `json:"resource" yaml:"resource"`
	Amount   Amount `json:"amount" yaml:"amount"`
}

// Attribute finds an attribute definition by id
func (s *Setting) Attribute(id string) (*AttributeDef, bool) {
	if s == nil {
		return nil, false
	}
	for i := range s.Attributes {
		if s.Attributes[i].ID == id {
			return &s.Attributes[i], true
		}
	}
	return nil, false
}

// Skill finds a skill definition by id
func (s *Setting) Skill(id string) (*SkillDef, bool) {
	if s == nil {
		return nil, false
	}
	for i := range s.Skills {
		if s.Skills[i].ID == id {
			return &s.Skills[i], true
		}
	}
	return nil, false
}

// Resource finds a resource definition by id
func (s *Setting) Resource(id string) (*ResourceDef, bool) {
	if s == nil {
		return nil, false
	}
	res, ok := s.Resources[id]
	if !ok {
		return nil, false
	}
	return &res, true
}

// AttributeName returns the display name, falling back to the upper-cased id
func (s *Setting) AttributeName(id string) string {
	if attr, ok := s.Attribute(id); ok && attr.Name != "" {
		return attr.Name
	}
	return strings.ToUpper(id)
}

// SkillName returns the display name, falling back to the upper-cased id
func (s *Setting) SkillName(id string) string {
	if skill, ok := s.Skill(id); ok && skill.Name != "" {
		return skill.Name
	}
	return strings.ToUpper(id)
}

// IsPushable reports whether rolls of the given kind start out pushable
func (s *Setting) IsPushable(kind RollKind) bool {
	if s == nil {
		return true
	}
	for _, k := range s.NonPushableKinds {
		if k == kind {
			return false
		}
	}
	return true
}

// GetID returns the id, or "" for a nil setting
func (s *Setting) GetID() string {
	if s == nil {
		return ""
	}
	return s.ID
}
