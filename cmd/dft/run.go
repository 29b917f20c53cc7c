package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kbukum/dft/runner"
	"github.com/kbukum/dft/util"
)

// exitCodeError surfaces a non-zero run outcome to main without an error
// code of its own.
type exitCodeError struct{ code int }

func (e exitCodeError) Error() string { return fmt.Sprintf("run finished with failures (exit %d)", e.code) }

func (e exitCodeError) ExitCode() int { return e.code }

func newRunCmd(opts *rootOptions) *cobra.Command {
	var (
		selects     []string
		excludes    []string
		vars        []string
		fullRefresh bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute selected pipelines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, log, err := loadProject(opts)
			if err != nil {
				return err
			}
			overrides, err := parseVars(vars)
			if err != nil {
				return err
			}

			res, err := runner.New(p, log).Run(cmd.Context(), runner.Options{
				Select:      selects,
				Exclude:     excludes,
				FullRefresh: fullRefresh,
				Overrides:   overrides,
			})
			if err != nil {
				return err
			}

			printSummary(cmd, res)
			if code := res.ExitCode(); code != 0 {
				return exitCodeError{code: code}
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&selects, "select", "s", nil, "selector expression; repeatable")
	cmd.Flags().StringArrayVarP(&excludes, "exclude", "e", nil, "exclusion expression; repeatable")
	cmd.Flags().StringArrayVar(&vars, "vars", nil, "k=v[,k=v] variable overrides; repeatable")
	cmd.Flags().BoolVar(&fullRefresh, "full-refresh", false, "ignore saved cursors and reprocess from begin")
	return cmd
}

func printSummary(cmd *cobra.Command, res *runner.Result) {
	names := util.Keys(res.Statuses)
	sort.Strings(names)

	cmd.Println("Run summary:")
	for _, name := range names {
		cmd.Printf("  %-30s %s\n", name, res.Statuses[name])
	}
	cmd.Printf("%d succeeded, %d failed, %d skipped\n",
		res.Succeeded, res.Failed, res.Skipped)
}
