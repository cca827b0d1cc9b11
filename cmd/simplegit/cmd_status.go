package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/odvcencio/simplegit/pkg/repo"
)

func newStatusCmd() *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show staged, unstaged and untracked files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			st, err := r.Status(repo.StatusOptions{
				Recursive: recursive,
				Ignored:   repo.NewIgnoreChecker(r.RootDir).IsIgnored,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			useColor := colorEnabled(cmd)

			if st.Detached {
				fmt.Fprintln(out, "HEAD detached")
			} else {
				head, err := r.ResolveRef("HEAD")
				if err == nil && head == "" {
					fmt.Fprintf(out, "on %s (no commits yet)\n", st.Branch)
				} else {
					fmt.Fprintf(out, "on %s\n", st.Branch)
				}
			}

			if st.Clean() {
				fmt.Fprintln(out, "nothing to commit, working tree clean")
				return nil
			}

			printStatusSection(out, "changes to be committed:", st.ToBeCommitted, painter(useColor, color.FgGreen))
			printStatusSection(out, "changes not staged for commit:", st.NotStaged, painter(useColor, color.FgRed))
			printStatusSection(out, "untracked files:", st.Untracked, painter(useColor, color.FgRed))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "include files in subdirectories")
	return cmd
}

func printStatusSection(out io.Writer, title string, paths []string, paint func(a ...any) string) {
	if len(paths) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, title)
	for _, p := range paths {
		fmt.Fprintf(out, "  %s\n", paint(p))
	}
}
