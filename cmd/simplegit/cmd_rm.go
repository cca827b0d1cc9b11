package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm [path]...",
		Short: "Unstage paths, or everything when no path is given",
		Long: `Remove entries from the index. Files on disk and commit history are not
touched. A directory path unstages everything below it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			targets := []string{""}
			if len(args) > 0 {
				cwd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("get working directory: %w", err)
				}
				targets = targets[:0]
				for _, a := range args {
					rel, err := r.RepoRelPath(a, cwd)
					if err != nil {
						return err
					}
					targets = append(targets, rel)
				}
			}

			out := cmd.OutOrStdout()
			for _, target := range targets {
				removed, err := r.Unstage(target)
				if err != nil {
					return err
				}
				for _, p := range removed {
					fmt.Fprintf(out, "unstaged %s\n", p)
				}
			}
			return nil
		},
	}
}
