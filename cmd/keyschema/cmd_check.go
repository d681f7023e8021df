package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd(a *app) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Compile every schema in the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.cfg.Engine(a.logger)
			if err != nil {
				return err
			}
			schemas, err := a.cfg.Compile(e)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range schemas {
				if quiet {
					fmt.Fprintf(out, "%s: ok (%d rules)\n", s.ID(), len(s.Keys()))
					continue
				}
				fmt.Fprintln(out, s.String())
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print one line per schema instead of rule tables")
	return cmd
}
