package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/odvcencio/simplegit/pkg/repo"
)

func newInitCmd() *cobra.Command {
	var objectStore string
	var author string

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create an empty simplegit repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			abs, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			if err := os.MkdirAll(abs, 0o755); err != nil {
				return fmt.Errorf("create directory: %w", err)
			}

			cfg := repo.DefaultConfig()
			cfg.Core.ObjectStore = objectStore
			cfg.User.Author = author

			r, err := repo.Init(abs, cfg)
			if err != nil {
				return err
			}
			defer r.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "initialized empty simplegit repository in %s\n", r.MetaDir+string(filepath.Separator))
			return nil
		},
	}

	cmd.Flags().StringVar(&objectStore, "object-store", repo.ObjectStoreFile, "object storage backend: file or bolt")
	cmd.Flags().StringVar(&author, "author", "", "identity recorded on commits")
	return cmd
}
