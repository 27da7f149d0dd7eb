package dicepool

import (
	"fmt"
	"strings"

	"github.com/KirkDiggler/yze-core/internal/entities"
)

type group struct {
	source string
	stack  string
	value  int
}

func (g group) label() string {
	if g.stack == "" {
		return g.source
	}
	return g.source + " " + g.stack
}

// groupModifiers nets modifiers by (source, stack label) in first-seen order
// and drops groups that net to zero
func groupModifiers(mods []entities.Modifier) []group {
	var groups []group
	index := make(map[[2]string]int)

	for _, mod := range mods {
		key := [2]string{mod.Source, mod.StackLabel}
		if i, ok := index[key]; ok {
			groups[i].value += mod.Value
			continue
		}
		index[key] = len(groups)
		groups = append(groups, group{source: mod.Source, stack: mod.StackLabel, value: mod.Value})
	}

	out := groups[:0]
	for _, g := range groups {
		if g.value != 0 {
			out = append(out, g)
		}
	}
	return out
}

// Breakdown renders "Base 5 + Bonus 2 - Tired (x2) 2 = 5"
func Breakdown(base int, mods []entities.Modifier, total int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Base %d", base)

	for _, g := range groupModifiers(mods) {
		sign, value := "+", g.value
		if value < 0 {
			sign, value = "-", -value
		}
		fmt.Fprintf(&sb, " %s %s %d", sign, g.label(), value)
	}

	fmt.Fprintf(&sb, " = %d", total)
	return sb.String()
}

// Summarize produces one line per contributing category. Categories are
// attribute, skill, gear, talent, conditions and generic modifiers.
func Summarize(pool *entities.DicePool, setting *entities.Setting) []entities.SummaryLine {
	var lines []entities.SummaryLine

	if !pool.Overridden && pool.AttributeID != "" && pool.AttributeValue != 0 {
		lines = append(lines, entities.SummaryLine{
			Category: entities.CategoryAttribute,
			Label:    "Attribute",
			Text:     signed(setting.AttributeName(pool.AttributeID), pool.AttributeValue),
		})
	}
	if !pool.Overridden && pool.SkillID != "" && pool.SkillValue != 0 {
		lines = append(lines, entities.SummaryLine{
			Category: entities.CategorySkill,
			Label:    "Skill",
			Text:     signed(setting.SkillName(pool.SkillID), pool.SkillValue),
		})
	}

	buckets := map[entities.SummaryCategory][]entities.Modifier{}
	for _, mod := range pool.Modifiers {
		cat := categoryOf(mod)
		buckets[cat] = append(buckets[cat], mod)
	}

	for _, c := range []struct {
		category entities.SummaryCategory
		label    string
	}{
		{entities.CategoryGear, "Gear"},
		{entities.CategoryTalent, "Talents"},
		{entities.CategoryConditions, "Conditions"},
		{entities.CategoryModifiers, "Modifiers"},
	} {
		groups := groupModifiers(buckets[c.category])
		if len(groups) == 0 {
			continue
		}

		parts := make([]string, len(groups))
		for i, g := range groups {
			parts[i] = signed(g.label(), g.value)
		}
		lines = append(lines, entities.SummaryLine{
			Category: c.category,
			Label:    c.label,
			Text:     strings.Join(parts, "; "),
		})
	}

	return lines
}

func categoryOf(mod entities.Modifier) entities.SummaryCategory {
	switch mod.Origin {
	case entities.OriginItem:
		if strings.EqualFold(mod.ItemCategory, "talent") {
			return entities.CategoryTalent
		}
		return entities.CategoryGear
	case entities.OriginCondition:
		return entities.CategoryConditions
	default:
		return entities.CategoryModifiers
	}
}

func signed(label string, value int) string {
	return fmt.Sprintf("%s %+d", label, value)
}
