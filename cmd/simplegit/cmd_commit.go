package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/simplegit/pkg/repo"
)

func newCommitCmd() *cobra.Command {
	var message string
	var sign bool
	var keyPath string

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record staged changes on the current branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return fmt.Errorf("commit message is required (-m)")
			}

			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			var signer repo.CommitSigner
			if sign || keyPath != "" {
				if keyPath == "" {
					cfg, err := r.ReadConfig()
					if err != nil {
						return err
					}
					keyPath = cfg.Signing.Key
				}
				signer, _, err = newSSHCommitSigner(keyPath)
				if err != nil {
					return err
				}
			}

			h, err := r.CommitWithSigner(message, signer)
			if err != nil {
				return err
			}

			branch := r.CurrentBranch()
			fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s\n", branch, h.Short(), message)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().BoolVarP(&sign, "sign", "S", false, "sign the commit with an SSH key")
	cmd.Flags().StringVar(&keyPath, "key", "", "SSH private key for signing (implies --sign)")
	return cmd
}
