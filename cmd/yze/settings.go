package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/yze-core/internal/setting"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect setting definitions",
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the settings loaded from YZE_SETTINGS_DIR",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		list := engine.registry.List()
		if len(list) == 0 {
			fmt.Fprintln(out, "no settings loaded")
			return nil
		}

		activeID := engine.registry.ActiveID()
		for _, s := range list {
			marker := " "
			if s.ID == activeID {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %-20s %s (%d attributes, %d skills)\n",
				marker, s.ID, s.Name, len(s.Attributes), len(s.Skills))
		}
		return nil
	},
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check a setting definition file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := setting.LoadFile(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: setting %q is valid\n", args[0], s.ID)
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsListCmd, settingsValidateCmd)
}
