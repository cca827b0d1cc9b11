package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge <branch>",
		Short: "Merge a branch into the current branch",
		Long: `Record a two-parent commit whose snapshot is the current branch's snapshot
overlaid with the target branch's. Paths present on both sides take the
target branch's content.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			branchName := args[0]

			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			res, err := r.Merge(branchName)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, p := range res.Replaced {
				fmt.Fprintf(out, "  %s: taken from %s\n", p, branchName)
			}
			fmt.Fprintf(out, "[%s %s] Merge branch '%s'\n", r.CurrentBranch(), res.Commit.Short(), branchName)
			return nil
		},
	}
}
