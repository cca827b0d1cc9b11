package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/odvcencio/simplegit/pkg/repo"
)

// openRepo opens the repository containing the current directory.
func openRepo() (*repo.Repo, error) {
	return repo.Open(".")
}

// colorEnabled reports whether cmd writes to a terminal and color has not
// been switched off with --no-color or NO_COLOR.
func colorEnabled(cmd *cobra.Command) bool {
	if off, err := cmd.Flags().GetBool("no-color"); err == nil && off {
		return false
	}
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	f, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// painter returns a Sprint-style function for attrs, or the identity when
// color is disabled.
func painter(enabled bool, attrs ...color.Attribute) func(a ...any) string {
	c := color.New(attrs...)
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.SprintFunc()
}
