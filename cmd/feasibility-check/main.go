package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/pkg/logger"
)

// errBlocked signals that the snapshot has at least one error-level warning.
var errBlocked = errors.New("snapshot is not feasible")

type cliApp struct {
	logger   *zap.Logger
	logLevel string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if errors.Is(err, errBlocked) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	app := &cliApp{logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:           "feasibility-check",
		Short:         "Check school timetable constraints before generation",
		Long:          `Validates a snapshot of subjects, teachers, school timing and schedule settings offline and reports why a timetable cannot be generated.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logger.NewConsole(app.logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			app.logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = app.logger.Sync()
		},
	}
	rootCmd.PersistentFlags().StringVar(&app.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(validateCmd(app))
	rootCmd.AddCommand(describeCmd(app))
	rootCmd.AddCommand(tokenCmd(app))

	return rootCmd
}
