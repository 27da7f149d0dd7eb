package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/yze-core/internal/dice"
)

var diceCmd = &cobra.Command{
	Use:   "dice NOTATION",
	Short: "Roll plain dice notation such as 3d6+1",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := dice.RollString(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.String())
		return nil
	},
}
