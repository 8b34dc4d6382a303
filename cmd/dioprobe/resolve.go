package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aalhour/directfile/internal/logging"
	"github.com/aalhour/directfile/vfs"
)

func newResolveCommand(a *app) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "resolve PATH",
		Short: "Show the mode a request resolves to for PATH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := vfs.ParseMode(mode)
			if err != nil {
				return err
			}
			rep, err := vfs.ProbePath(args[0], nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "requested:    %s\n", m)
			fmt.Fprintf(out, "capability:   %s\n", rep.Capability)

			resolved, err := vfs.Resolve(m, rep.Capability)
			if err != nil {
				fmt.Fprintf(out, "resolved:     none\n")
				return err
			}
			a.logger.Infof(logging.NSCLI+"%s resolves %s to %s", args[0], m, resolved)
			fmt.Fprintf(out, "resolved:     %s\n", resolved)
			fmt.Fprintf(out, "requirements: %s\n", rep.Requirements())
			return nil
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", "auto", "requested mode: direct, uncached, buffered, auto, auto:fallback, auto:error")
	return cmd
}
