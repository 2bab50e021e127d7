package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vbonduro/stayhaven/internal/config"
	"github.com/vbonduro/stayhaven/internal/logging"
)

// app carries what every subcommand needs once the root command has run.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	cleanup func()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{cleanup: func() {}}

	root := &cobra.Command{
		Use:           "stayhaven",
		Short:         "Vacation rental booking API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.cfg = config.Load()
			logger, cleanup, err := logging.New(a.cfg.LogLevel, a.cfg.LogFormat, a.cfg.LogFile)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger, a.cleanup = logger, cleanup
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.cleanup()
		},
	}

	serve := newServeCmd(a)
	root.RunE = serve.RunE
	root.AddCommand(serve, newMigrateCmd(a), newSeedCmd(a))
	return root
}
