package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/yze-core/internal/services/roll"
)

var pushCmd = &cobra.Command{
	Use:   "push RECORD",
	Short: "Push a roll: reroll every die that is not a 6, once",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := engine.rolls.Push(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printPush(cmd, out)
	},
}

var pushLastCmd = &cobra.Command{
	Use:   "push-last ACTOR",
	Short: "Push the actor's most recent roll",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := engine.rolls.PushLast(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printPush(cmd, out)
	},
}

func printPush(cmd *cobra.Command, out *roll.PushOutput) error {
	if !out.Applied() {
		fmt.Fprintf(cmd.ErrOrStderr(), "push rejected: %s\n", out.Rejected)
	}
	return printRecord(cmd.OutOrStdout(), out.Record)
}
