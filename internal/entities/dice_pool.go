package entities

// SummaryCategory groups pool contributions for the per-category summary lines
type SummaryCategory string

const (
	CategoryAttribute  SummaryCategory = "attribute"
	CategorySkill      SummaryCategory = "skill"
	CategoryGear       SummaryCategory = "gear"
	CategoryTalent     SummaryCategory = "talent"
	CategoryConditions SummaryCategory = "conditions"
	CategoryModifiers  SummaryCategory = "modifiers"
)

// DicePool describes the dice about to be rolled for one check
type DicePool struct {
	Base           int           `json:"base"`
	AttributeID    string        `json:"attribute_id,omitempty"`
	SkillID        string        `json:"skill_id,omitempty"`
	AttributeValue int           `json:"attribute_value"`
	SkillValue     int           `json:"skill_value"`
	Overridden     bool          `json:"overridden,omitempty"` // Base came from an explicit override
	Modifiers      []Modifier    `json:"modifiers"`
	Total          int           `json:"total"`
	Breakdown      string        `json:"breakdown"`
	Summary        []SummaryLine `json:"summary,omitempty"`
}

// SummaryLine is one human-readable line, e.g. "Gear: Sword +1; Shield +1"
type SummaryLine struct {
	Category SummaryCategory `json:"category"`
	Label    string          `json:"label"`
	Text     string          `json:"text"`
}

// ModifierSum adds up all modifier values
func (p *DicePool) ModifierSum() int {
	sum := 0
	for _, mod := range p.Modifiers {
		sum += mod.Value
	}
	return sum
}
