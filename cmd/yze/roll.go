package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/yze-core/internal/entities"
	"github.com/KirkDiggler/yze-core/internal/services/roll"
)

var (
	rollMod      int
	rollModLabel string
	rollTitle    string
	rollBase     float64
	rollAuthor   string
)

var rollCmd = &cobra.Command{
	Use:   "roll",
	Short: "Roll a dice pool",
}

var rollAttributeCmd = &cobra.Command{
	Use:   "attribute ACTOR ATTRIBUTE",
	Short: "Roll an attribute",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := engine.rolls.RollAttribute(cmd.Context(), &roll.RollAttributeInput{
			ActorID:      args[0],
			AuthorID:     rollAuthor,
			AttributeID:  args[1],
			Title:        rollTitle,
			BaseOverride: baseOverride(cmd),
			Modifiers:    adHocModifiers(),
		})
		if err != nil {
			return err
		}
		return printRecord(cmd.OutOrStdout(), out.Record)
	},
}

var rollSkillCmd = &cobra.Command{
	Use:   "skill ACTOR SKILL [ATTRIBUTE]",
	Short: "Roll a skill with its linked attribute, or the one given",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := &roll.RollSkillInput{
			ActorID:      args[0],
			AuthorID:     rollAuthor,
			SkillID:      args[1],
			Title:        rollTitle,
			BaseOverride: baseOverride(cmd),
			Modifiers:    adHocModifiers(),
		}
		if len(args) == 3 {
			input.AttributeID = args[2]
		}

		out, err := engine.rolls.RollSkill(cmd.Context(), input)
		if err != nil {
			return err
		}
		return printRecord(cmd.OutOrStdout(), out.Record)
	},
}

var rollNPCCmd = &cobra.Command{
	Use:   "npc ACTOR POOL",
	Short: "Roll one of an NPC's fixed pools",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := engine.rolls.RollNPCPool(cmd.Context(), &roll.RollNPCPoolInput{
			ActorID:  args[0],
			AuthorID: rollAuthor,
			PoolID:   args[1],
		})
		if err != nil {
			return err
		}
		return printRecord(cmd.OutOrStdout(), out.Record)
	},
}

func init() {
	for _, c := range []*cobra.Command{rollAttributeCmd, rollSkillCmd} {
		c.Flags().IntVar(&rollMod, "mod", 0, "Add (or remove) dice for this roll only")
		c.Flags().StringVar(&rollModLabel, "mod-label", "Bonus", "Breakdown label for --mod")
		c.Flags().StringVar(&rollTitle, "title", "", "Roll title")
		c.Flags().Float64Var(&rollBase, "base", 0, "Use this many base dice instead of the sheet values")
	}
	rollCmd.PersistentFlags().StringVar(&rollAuthor, "author", "", "Who made the roll")

	rollCmd.AddCommand(rollAttributeCmd, rollSkillCmd, rollNPCCmd)
}

func baseOverride(cmd *cobra.Command) *float64 {
	if !cmd.Flags().Changed("base") {
		return nil
	}
	v := rollBase
	return &v
}

func adHocModifiers() []entities.ModifierEntry {
	if rollMod == 0 {
		return nil
	}
	return []entities.ModifierEntry{{
		Source:  rollModLabel,
		Value:   entities.Amount(rollMod),
		Enabled: true,
	}}
}

// printRecord writes a roll record as chat content, or as an embed with --embed
func printRecord(w io.Writer, record *entities.Record) error {
	if outputEmbeds && record.RollState != nil {
		setting := engine.registry.Active()
		if s, err := engine.registry.Get(record.RollState.SettingID); err == nil {
			setting = s
		}

		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(engine.renderer.Embed(record.ActorName, record.RollState, setting))
	}

	fmt.Fprintln(w, record.Content)
	fmt.Fprintf(w, "record: %s\n", record.ID)
	return nil
}
