package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/dft/project"
	"github.com/kbukum/dft/runner"
	"github.com/kbukum/dft/selector"
)

func newDepsCmd(opts *rootOptions) *cobra.Command {
	var selects []string
	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Print the resolved pipeline dependency graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := loadProject(opts)
			if err != nil {
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

			byName := make(map[string]*project.Pipeline, len(p.Pipelines))
			for _, pl := range p.Pipelines {
				byName[pl.Name] = pl
			}
			for _, name := range selected {
				pl := byName[name]
				if len(pl.DependsOn) == 0 {
					cmd.Println(name)
					continue
				}
				cmd.Printf("%s <- %s\n", name, strings.Join(pl.DependsOn, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&selects, "select", "s", nil, "selector expression; repeatable")
	return cmd
}
