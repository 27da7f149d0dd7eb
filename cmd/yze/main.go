package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/KirkDiggler/yze-core/internal/config"
)

var (
	// Global flags
	verbose      bool
	settingFlag  string
	actorsFile   string
	envFile      string
	outputEmbeds bool

	logger *zap.Logger
	engine *app
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "yze",
	Short: "Year Zero Engine dice pools: roll, push and track consequences",
	Long: `yze builds Year Zero Engine dice pools from an actor sheet and a setting,
rolls them, and lets a roll be pushed once.

Storage is picked with YZE_STORE (memory, redis or sqlite). Settings are
loaded from YZE_SETTINGS_DIR.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && cmd.Flags().Changed("env-file") {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		level, err := cfg.Level()
		if err != nil {
			return err
		}
		zapCfg := zap.NewProductionConfig()
		zapCfg.Level = zap.NewAtomicLevelAt(level)
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if settingFlag != "" {
			cfg.Settings.Active = settingFlag
		}

		engine, err = newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		if actorsFile != "" {
			if _, err := engine.importActors(cmd.Context(), actorsFile); err != nil {
				return err
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if engine != nil {
			engine.Close()
		}
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&settingFlag, "setting", "", "Activate this setting instead of YZE_ACTIVE_SETTING")
	rootCmd.PersistentFlags().StringVar(&actorsFile, "actors", "", "Import actors from a YAML file before running")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load")
	rootCmd.PersistentFlags().BoolVar(&outputEmbeds, "embed", false, "Print rolls as Discord embed JSON")

	rootCmd.AddCommand(settingsCmd, actorCmd, rollCmd, pushCmd, pushLastCmd, diceCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
