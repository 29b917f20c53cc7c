package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/dft/state"
)

func newUpdateGitignoreCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update-gitignore",
		Short: "Reconcile .gitignore with the project's state.ignore_in_git option",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := loadProject(opts)
			if err != nil {
				return err
			}
			changed, err := state.EnsureGitignore(p.Dir, p.State.IgnoreInGit)
			if err != nil {
				return err
			}
			if changed {
				cmd.Println(".gitignore updated")
			} else {
				cmd.Println(".gitignore already up to date")
			}
			return nil
		},
	}
}
