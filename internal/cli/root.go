// internal/cli/root.go
//
// Cobra command tree for the wof binary.
//
// Notes:
//   - Every command opens the app through openApp, so config, store backend
//     and log level are resolved the same way everywhere.
//   - The config file comes from --config, falling back to WOF_CONFIG.

package cli

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/richjohnson-wwt/nat-wof/internal/app"
	"github.com/richjohnson-wwt/nat-wof/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "wof",
	Short: "Wheel of Fortune - a turn-based word game",
	Long: `wof runs a three-seat Wheel of Fortune game (two automated players and
one human) over a shared key-value store.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("WOF_CONFIG"), "YAML config file")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// openApp loads the configuration and opens the application. The caller
// closes it.
func openApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	return app.New(cmd.Context(), cfg)
}
