// Command dioprobe inspects direct I/O support for files and directories.
//
// Report what the platform offers for a path:
//
// ```bash
// ./bin/dioprobe probe /var/lib/data/file
// ```
//
// Show how a requested mode resolves:
//
// ```bash
// ./bin/dioprobe resolve /var/lib/data/file --mode auto:error
// ```
//
// Write a scratch block file through a resolved handle and verify it:
//
// ```bash
// ./bin/dioprobe roundtrip /var/lib/data --records 64 --compression zstd
// ```
//
// The log level defaults to warn and can be set with --log-level or the
// DIOPROBE_LOG_LEVEL environment variable.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aalhour/directfile/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
)

const logLevelEnv = "DIOPROBE_LOG_LEVEL"

// app carries state shared by subcommands.
type app struct {
	logLevel string
	logger   logging.Logger
}

func defaultLogLevel() string {
	if v := os.Getenv(logLevelEnv); v != "" {
		return v
	}
	return logging.LevelWarn.String()
}

func newRootCommand() *cobra.Command {
	a := &app{logger: logging.Discard}

	rootCmd := &cobra.Command{
		Use:           "dioprobe",
		Short:         "Inspect direct I/O capability and alignment requirements",
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setupLogger(cmd.ErrOrStderr())
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", defaultLogLevel(),
		"log level: error, warn, info or debug (env "+logLevelEnv+")")

	rootCmd.AddCommand(
		newProbeCommand(a),
		newResolveCommand(a),
		newRoundtripCommand(a),
	)
	return rootCmd
}

func (a *app) setupLogger(w io.Writer) error {
	level, err := logging.ParseLevel(a.logLevel)
	if err != nil {
		return err
	}
	a.logger = logging.NewLogger(w, level)
	return nil
}

func main() {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dioprobe: %v\n", err)
		os.Exit(1)
	}
}
