package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/odvcencio/simplegit/pkg/repo"
)

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <path|.|*>...",
		Short: "Stage files for the next commit",
		Long: `Stage files for the next commit.

A path may name a file or a directory (staged recursively). "." stages the
whole working tree and "*" stages only the files directly in the repository
root. Paths matched by .simplegitignore are skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}
			ignored := repo.NewIgnoreChecker(r.RootDir).IsIgnored

			out := cmd.OutOrStdout()
			added := 0
			for _, target := range args {
				res, err := r.Stage(target, cwd, ignored)
				if err != nil {
					return err
				}
				for _, p := range res.Added {
					fmt.Fprintf(out, "added %s\n", p)
				}
				added += len(res.Added)
			}
			if added == 0 {
				fmt.Fprintln(out, "nothing to add")
			}
			return nil
		},
	}
}
