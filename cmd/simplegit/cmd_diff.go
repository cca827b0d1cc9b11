package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/simplegit/pkg/diff"
)

func newDiffCmd() *cobra.Command {
	var staged bool

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Show line changes in tracked files",
		Long: `Without flags, compare tracked files on disk with the index (or the last
commit for paths that are not staged). With --staged, compare the index
with the last commit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			diffs, err := r.Diff(staged)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			useColor := colorEnabled(cmd)
			for _, d := range diffs {
				fmt.Fprint(out, diff.Format(d, useColor))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&staged, "staged", false, "compare the index with the last commit")
	return cmd
}
