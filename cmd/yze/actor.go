package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var actorCmd = &cobra.Command{
	Use:   "actor",
	Short: "Manage actors",
}

var actorImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import actors from YAML, filling defaults from the active setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := engine.importActors(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d actors\n", n)
		return nil
	},
}

var actorListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored actors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := engine.actors.List(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, actor := range list {
			last := "-"
			if actor.Flags.LastRoll != nil {
				last = fmt.Sprintf("%s (%d successes)", actor.Flags.LastRoll.Label, actor.Flags.LastRoll.Successes)
			}
			fmt.Fprintf(out, "%-16s %-24s %-10s last roll: %s\n", actor.ID, actor.Name, actor.Type, last)
		}
		return nil
	},
}

func init() {
	actorCmd.AddCommand(actorImportCmd, actorListCmd)
}
