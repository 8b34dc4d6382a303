package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aalhour/directfile/internal/logging"
	"github.com/aalhour/directfile/vfs"
)

func newProbeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "probe PATH...",
		Short: "Report capability and alignment requirements for each path",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				rep, err := vfs.ProbePath(path, nil)
				if err != nil {
					return err
				}
				a.logger.Debugf(logging.NSCLI+"probed %s: %s", path, rep)
				printReport(cmd.OutOrStdout(), path, rep)
			}
			return nil
		},
	}
}

func printReport(w io.Writer, path string, rep vfs.Report) {
	fs := rep.Filesystem
	if fs == "" {
		fs = "unknown"
	}
	fmt.Fprintf(w, "path:         %s\n", path)
	fmt.Fprintf(w, "filesystem:   %s\n", fs)
	fmt.Fprintf(w, "capability:   %s\n", rep.Capability)
	fmt.Fprintf(w, "requirements: %s\n", rep.Requirements())
	if rep.Err != nil {
		fmt.Fprintf(w, "probe error:  %v\n", rep.Err)
	}
}
