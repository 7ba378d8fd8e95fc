// Package commands implements plume-configure, which inspects and edits the
// stored settings and history without going through the HTTP API.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/benvon/plume/internal/app"
	"github.com/benvon/plume/internal/config"
	"github.com/benvon/plume/internal/logger"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the plume-configure command tree
func NewRootCmd() *cobra.Command {
	var debug bool

	rootCmd := &cobra.Command{
		Use:           "plume-configure",
		Short:         "Configuration tool for the Plume writing assistant",
		Long:          "CLI tool for managing provider settings, model catalogs and history stored in the Plume database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	open := func(cmd *cobra.Command) (*app.App, error) {
		return openApp(cmd.Context(), debug)
	}

	rootCmd.AddCommand(newSettingsCmd(open))
	rootCmd.AddCommand(newHistoryCmd(open))
	rootCmd.AddCommand(newModelsCmd(open))
	rootCmd.AddCommand(newStatusCmd(open))
	rootCmd.AddCommand(newExportCmd(open))
	return rootCmd
}

// opener builds the application for one command run
type opener func(cmd *cobra.Command) (*app.App, error)

func openApp(ctx context.Context, debug bool) (*app.App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.NewCLILogger(debug)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return app.New(ctx, cfg, log, debug)
}

// closeApp releases a, warning on stderr when that fails
func closeApp(a *app.App) {
	if err := a.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close connections: %v\n", err)
	}
}
