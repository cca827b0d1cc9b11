package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newBranchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "branch [name]",
		Short: "List branches, or create one at the current commit",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			if len(args) == 1 {
				if err := r.CreateBranch(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created branch '%s'\n", args[0])
				return nil
			}

			branches, err := r.ListBranches()
			if err != nil {
				return err
			}
			current := r.CurrentBranch()
			green := painter(colorEnabled(cmd), color.FgGreen)

			out := cmd.OutOrStdout()
			for _, b := range branches {
				if b == current {
					fmt.Fprintf(out, "* %s\n", green(b))
				} else {
					fmt.Fprintf(out, "  %s\n", b)
				}
			}
			return nil
		},
	}
}
