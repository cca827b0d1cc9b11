package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newBundleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Move history between repositories as a single file",
	}
	cmd.AddCommand(newBundleCreateCmd())
	cmd.AddCommand(newBundleUnbundleCmd())
	return cmd
}

func newBundleCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <file> [branch]...",
		Short: "Write branches and their history to a zstd-compressed bundle",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("bundle create: %w", err)
			}
			defer func() {
				if cerr := f.Close(); cerr != nil && err == nil {
					err = fmt.Errorf("bundle create: %w", cerr)
				}
				if err != nil {
					_ = os.Remove(args[0])
				}
			}()

			contents, err := r.CreateBundle(f, args[1:])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "bundled %d ref(s), %d object(s) into %s\n", len(contents.Refs), contents.Objects, args[0])
			return nil
		},
	}
}

func newBundleUnbundleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unbundle <file>",
		Short: "Import objects and new branches from a bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("unbundle: %w", err)
			}
			defer f.Close()

			res, err := r.Unbundle(f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, name := range res.Created {
				fmt.Fprintf(out, "created branch '%s'\n", name)
			}
			for _, name := range res.Skipped {
				fmt.Fprintf(out, "kept existing branch '%s'\n", name)
			}
			fmt.Fprintf(out, "imported %d object(s)\n", res.Objects)
			return nil
		},
	}
}
