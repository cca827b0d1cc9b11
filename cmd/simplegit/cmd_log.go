package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/odvcencio/simplegit/pkg/object"
)

func newLogCmd() *cobra.Command {
	var oneline bool
	var limit int

	cmd := &cobra.Command{
		Use:   "log [branch]",
		Short: "Show commit history along first parents",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			start := "HEAD"
			if len(args) == 1 {
				start = args[0]
			}
			startHash, err := r.ResolveRef(start)
			if err != nil {
				return err
			}

			entries, err := r.Log(startHash, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "no commits yet")
				return nil
			}

			headHash, _ := r.ResolveRef("HEAD")
			branchName := r.CurrentBranch()
			yellow := painter(colorEnabled(cmd), color.FgYellow)

			for _, e := range entries {
				c := e.Commit
				decoration := buildDecoration(e.Hash, headHash, branchName)

				if oneline {
					line := yellow(e.Hash.Short())
					if decoration != "" {
						line += " " + decoration
					}
					fmt.Fprintf(out, "%s %s\n", line, firstLine(c.Message))
					continue
				}

				header := "commit " + string(e.Hash)
				if decoration != "" {
					header += " " + decoration
				}
				fmt.Fprintln(out, yellow(header))
				if c.IsMerge() {
					fmt.Fprintf(out, "Merge:  %s %s\n", c.Parents[0].Short(), c.Parents[1].Short())
				}
				fmt.Fprintf(out, "Author: %s\n", c.Author)
				fmt.Fprintf(out, "Date:   %s\n", c.Timestamp)
				fmt.Fprintln(out)
				fmt.Fprintf(out, "    %s\n", c.Message)
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "compact one-line format")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of commits to show (0 for all)")
	return cmd
}

// buildDecoration returns a string like "(HEAD -> main)" if the commit is
// the current HEAD, or "" otherwise.
func buildDecoration(commitHash, headHash object.Hash, branchName string) string {
	if commitHash != headHash {
		return ""
	}
	if branchName != "" {
		return "(HEAD -> " + branchName + ")"
	}
	return "(HEAD)"
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
