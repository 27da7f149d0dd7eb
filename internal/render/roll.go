// Package render turns roll states into chat content and Discord embeds.
// Everything it shows is read from the roll state; nothing is recomputed.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KirkDiggler/yze-core/internal/entities"
	"github.com/bwmarrin/discordgo"
)

// Renderer presents a roll state
type Renderer interface {
	// Content is the plain chat text stored on the record
	Content(actorName string, state *entities.RollState, setting *entities.Setting) string

	// Embed is the rich card for Discord
	Embed(actorName string, state *entities.RollState, setting *entities.Setting) *discordgo.MessageEmbed
}

// RollRenderer is the default Renderer
type RollRenderer struct{}

// NewRollRenderer creates the default renderer
func NewRollRenderer() *RollRenderer {
	return &RollRenderer{}
}

// Title returns the heading for a roll card
func Title(state *entities.RollState, setting *entities.Setting) string {
	if state == nil {
		return "YZE Roll"
	}
	if state.Title != "" {
		return state.Title
	}
	if state.Pool == nil {
		return "YZE Roll"
	}

	switch state.Kind {
	case entities.RollKindAttribute:
		return setting.AttributeName(state.Pool.AttributeID) + " Roll"
	case entities.RollKindSkill:
		return fmt.Sprintf("%s+%s Roll",
			setting.AttributeName(state.Pool.AttributeID),
			setting.SkillName(state.Pool.SkillID))
	case entities.RollKindNPC:
		if state.Pool.PoolName != "" {
			return state.Pool.PoolName
		}
	}
	return "YZE Roll"
}

// Content implements Renderer
func (r *RollRenderer) Content(actorName string, state *entities.RollState, setting *entities.Setting) string {
	if state == nil {
		return ""
	}

	var sb strings.Builder
	if actorName == "" {
		actorName = "Unknown Actor"
	}
	fmt.Fprintf(&sb, "**%s** rolls %s\n", actorName, Title(state, setting))

	if state.Results != nil {
		sb.WriteString(Dice(state.Results.Dice))
		sb.WriteString("\n")
		if groups := Groups(state, setting); groups != "" {
			sb.WriteString(groups)
			sb.WriteString("\n")
		}
	}
	if state.Pool != nil && state.Pool.Breakdown != "" {
		sb.WriteString(state.Pool.Breakdown)
		sb.WriteString("\n")
	}
	sb.WriteString(Outcome(state))

	if state.Pushed && state.Push != nil {
		fmt.Fprintf(&sb, "\nPushed: %s → %s", Dice(state.Push.BeforeDice), Dice(state.Push.AfterDice))
	}
	return sb.String()
}

// Embed implements Renderer
func (r *RollRenderer) Embed(actorName string, state *entities.RollState, setting *entities.Setting) *discordgo.MessageEmbed {
	if state == nil {
		return NewEmbed().Title("YZE Roll").Description("No roll data").Build()
	}

	color := ColorFresh
	switch {
	case state.Pushed:
		color = ColorPushed
	case state.Results != nil && state.Results.Successes > 0:
		color = ColorSuccess
	case state.Results != nil:
		color = ColorFailure
	}

	b := NewEmbed().
		Title(Title(state, setting)).
		Author(actorName).
		Color(color).
		Timestamp(state.LastTouched())

	if state.Results != nil {
		b.Description(Dice(state.Results.Dice))
		b.Field("Attribute", Dice(state.Results.AttributeDice), true)
		b.Field("Skill", Dice(state.Results.SkillDice), true)
		b.Field("Modifiers", Dice(state.Results.ModifierDice), true)
	}
	if state.Pool != nil {
		b.Field("Pool", state.Pool.Breakdown, false)
		for _, line := range state.Pool.Summary {
			b.Field(line.Label, line.Text, false)
		}
	}
	b.Field("Result", Outcome(state), false)

	switch {
	case state.Pushed:
		b.Footer(fmt.Sprintf("Pushed x%d", max(1, state.PushCount)))
	case state.Pushable:
		b.Footer("Can be pushed")
	}

	return b.Build()
}

// Dice formats faces as "[6] [3] [1]", or "" when there are none
func Dice(faces []int) string {
	if len(faces) == 0 {
		return ""
	}
	parts := make([]string, len(faces))
	for i, face := range faces {
		parts[i] = "[" + strconv.Itoa(face) + "]"
	}
	return strings.Join(parts, " ")
}

// Groups formats the attribute, skill and modifier slices on one line
func Groups(state *entities.RollState, setting *entities.Setting) string {
	if state == nil || state.Results == nil {
		return ""
	}

	var parts []string
	add := func(label string, faces []int) {
		if len(faces) > 0 {
			parts = append(parts, label+": "+Dice(faces))
		}
	}

	attrLabel, skillLabel := "Attribute", "Skill"
	if state.Pool != nil {
		if state.Pool.AttributeID != "" {
			attrLabel = setting.AttributeName(state.Pool.AttributeID)
		}
		if state.Pool.SkillID != "" {
			skillLabel = setting.SkillName(state.Pool.SkillID)
		}
	}

	add(attrLabel, state.Results.AttributeDice)
	add(skillLabel, state.Results.SkillDice)
	add("Modifiers", state.Results.ModifierDice)
	return strings.Join(parts, " | ")
}

// Outcome formats successes and banes, e.g. "Successes: 2 | Banes: 1"
func Outcome(state *entities.RollState) string {
	successes, banes := 0, 0
	if state != nil && state.Results != nil {
		successes = state.Results.Successes
		for _, face := range state.Results.Dice {
			if face == entities.BaneFace {
				banes++
			}
		}
	}

	out := fmt.Sprintf("Successes: %d | Banes: %d", successes, banes)
	if state != nil && state.Pushed {
		out += " | PUSHED"
	}
	return out
}
