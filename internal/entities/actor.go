package entities

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ActorType distinguishes player characters from NPCs
type ActorType string

const (
	ActorTypeCharacter ActorType = "character"
	ActorTypeNPC       ActorType = "npc"
)

// Actor is a character or NPC as the engine sees it. System holds the
// free-form sheet data (attributes, skills, resources) addressed by dotted
// paths; everything the engine reasons about is typed.
type Actor struct {
	ID        string         `json:"id" yaml:"id"`
	Name      string         `json:"name" yaml:"name"`
	Type      ActorType      `json:"type" yaml:"type"`
	OwnerID   string         `json:"owner_id,omitempty" yaml:"owner_id,omitempty"`
	System    map[string]any `json:"system" yaml:"system"`
	Flags     ActorFlags     `json:"flags" yaml:"flags"`
	Items     []Item         `json:"items,omitempty" yaml:"items,omitempty"`
	Pools     []NPCPool      `json:"pools,omitempty" yaml:"pools,omitempty"`
	CreatedAt time.Time      `json:"created_at" yaml:"-"`
	UpdatedAt time.Time      `json:"updated_at" yaml:"-"`
}

// ActorFlags is the persisted bag of engine state on an actor
type ActorFlags struct {
	Modifiers  []ModifierEntry           `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
	Conditions map[string]ConditionState `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	LastRoll   *RollSummary              `json:"last_roll,omitempty" yaml:"-"`
}

// Item is something an actor carries; only equipped items contribute modifiers
type Item struct {
	ID        string          `json:"id" yaml:"id"`
	Name      string          `json:"name" yaml:"name"`
	Category  string          `json:"category,omitempty" yaml:"category,omitempty"` // gear, weapon, armor, talent...
	Equipped  bool            `json:"equipped" yaml:"equipped"`
	Modifiers []ModifierEntry `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
}

// NPCPool is a fixed-size pool defined directly on an NPC
type NPCPool struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Dice    Amount `json:"dice" yaml:"dice"`
	CanPush bool   `json:"can_push" yaml:"can_push"`
}

// AttributePath returns the sheet path of an attribute value
func AttributePath(id string) string {
	return fmt.Sprintf("system.attributes.%s.value", id)
}

// SkillPath returns the sheet path of a skill value
func SkillPath(id string) string {
	return fmt.Sprintf("system.skills.%s.value", id)
}

// ValueAt reads the value at a dotted path such as "system.attributes.str.value".
// The leading "system." segment is optional.
func (a *Actor) ValueAt(path string) (any, bool) {
	if a == nil || a.System == nil {
		return nil, false
	}

	var current any = a.System
	for _, part := range splitPath(path) {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// NumberAt reads a numeric value at a path; strings and NaN do not count
func (a *Actor) NumberAt(path string) (float64, bool) {
	v, ok := a.ValueAt(path)
	if !ok {
		return 0, false
	}
	return AsNumber(v)
}

// HasValueAt reports whether anything is stored at path
func (a *Actor) HasValueAt(path string) bool {
	_, ok := a.ValueAt(path)
	return ok
}

// SetValueAt writes a value at a dotted path, creating intermediate maps
func (a *Actor) SetValueAt(path string, value any) {
	if a.System == nil {
		a.System = make(map[string]any)
	}

	parts := splitPath(path)
	if len(parts) == 0 {
		return
	}

	node := a.System
	for _, part := range parts[:len(parts)-1] {
		next, ok := node[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			node[part] = next
		}
		node = next
	}
	node[parts[len(parts)-1]] = value
}

// Pool finds an NPC pool by id
func (a *Actor) Pool(id string) (*NPCPool, bool) {
	for i := range a.Pools {
		if a.Pools[i].ID == id {
			return &a.Pools[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy. Numbers inside System come back as float64.
func (a *Actor) Clone() (*Actor, error) {
	if a == nil {
		return nil, nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal actor %s: %w", a.ID, err)
	}
	var out Actor
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal actor %s: %w", a.ID, err)
	}
	return &out, nil
}

func splitPath(path string) []string {
	path = strings.TrimPrefix(strings.TrimSpace(path), "system.")
	if path == "" || path == "system" {
		return nil
	}
	return strings.Split(path, ".")
}
