package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/dft/runner"
	"github.com/kbukum/dft/selector"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	var selects []string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the project without running anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, log, err := loadProject(opts)
			if err != nil {
				return err
			}
			o := runner.New(p, log)
			if err := o.Validate(); err != nil {
				return err
			}
			g, err := runner.PipelineGraph(p)
			if err != nil {
				return err
			}
			selected, err := selector.Resolve(selects, nil, p.Pipelines, g)
			if err != nil {
				return err
			}
			cmd.Printf("Project %q is valid (%d pipelines selected)\n", p.ProjectName, len(selected))
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&selects, "select", "s", nil, "selector expression; repeatable")
	return cmd
}
