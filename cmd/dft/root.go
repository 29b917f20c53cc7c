package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/dft/logger"
	"github.com/kbukum/dft/project"
	"github.com/kbukum/dft/util"
	"github.com/kbukum/dft/version"
)

// rootOptions carries the persistent flags shared by every subcommand.
type rootOptions struct {
	projectDir string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "dft",
		Short:         "Configuration-driven data pipeline runner",
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.projectDir, "project-dir", ".", "project directory containing dft_project.yml")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the project log level")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "override the project log format (console or json)")

	cmd.AddCommand(
		newRunCmd(opts),
		newValidateCmd(opts),
		newDepsCmd(opts),
		newInitCmd(),
		newUpdateGitignoreCmd(opts),
		newDebugCmd(opts),
	)
	return cmd
}

// loadProject loads the project and builds its logger, with CLI flag
// overrides applied on top of the project's logging options.
func loadProject(opts *rootOptions) (*project.Project, *logger.Logger, error) {
	p, err := project.Load(opts.projectDir)
	if err != nil {
		return nil, nil, err
	}

	cfg := logger.Config{
		Level:  util.Coalesce(opts.logLevel, p.Logging.Level),
		Format: util.Coalesce(opts.logFormat, p.Logging.Format),
	}
	cfg.ApplyDefaults()
	log := logger.New(&cfg, "dft")
	logger.SetGlobalLogger(log)
	return p, log, nil
}
