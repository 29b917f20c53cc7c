package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/dft/component"
	"github.com/kbukum/dft/project"
	"github.com/kbukum/dft/runner"
	"github.com/kbukum/dft/selector"
	"github.com/kbukum/dft/template"
)

func newDebugCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debug",
		Short: "Inspect registered components and test connections",
	}
	cmd.AddCommand(newDebugComponentsCmd(), newDebugConnectionsCmd(opts))
	return cmd
}

func newDebugComponentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "components",
		Short: "List registered component types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, kind := range []string{project.KindSource, project.KindProcessor, project.KindEndpoint} {
				cmd.Printf("%ss:\n", kind)
				for _, tag := range component.RegisteredTags(kind) {
					cmd.Printf("  %s\n", tag)
				}
			}
			return nil
		},
	}
}

func newDebugConnectionsCmd(opts *rootOptions) *cobra.Command {
	var selects []string
	cmd := &cobra.Command{
		Use:   "connections",
		Short: "Run TestConnection on every source of the selected pipelines",
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
			factory := component.NewFactory(p.Connections)

			failures := 0
			for _, name := range selected {
				pl := byName[name]
				tctx := template.NewContext().
					Push(template.LayerProject, p.Variables).
					Push(template.LayerPipeline, pl.Variables)
				for _, st := range pl.Steps {
					if st.Kind != project.KindSource {
						continue
					}
					inst, err := factory.Build(st, tctx)
					if err != nil {
						cmd.Printf("  %s.%s: build failed: %v\n", name, st.ID, err)
						failures++
						continue
					}
					if inst.Source.TestConnection(cmd.Context()) {
						cmd.Printf("  %s.%s: ok\n", name, st.ID)
					} else {
						cmd.Printf("  %s.%s: FAILED\n", name, st.ID)
						failures++
					}
				}
			}
			if failures > 0 {
				return exitCodeError{code: 1}
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&selects, "select", "s", nil, "selector expression; repeatable")
	return cmd
}
