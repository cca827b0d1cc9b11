package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	var author string
	var signingKey string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or update repository settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			if cmd.Flags().Changed("author") {
				if err := r.SetAuthor(author); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("signing-key") {
				if err := r.SetSigningKey(signingKey); err != nil {
					return err
				}
			}

			cfg, err := r.ReadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "user.author=%s\n", cfg.User.Author)
			fmt.Fprintf(out, "core.object_store=%s\n", cfg.Core.ObjectStore)
			if cfg.Signing.Key != "" {
				fmt.Fprintf(out, "signing.key=%s\n", cfg.Signing.Key)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "set the identity recorded on commits")
	cmd.Flags().StringVar(&signingKey, "signing-key", "", "set the SSH private key used by commit --sign")
	return cmd
}
