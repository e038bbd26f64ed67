// Package cmd implements the tenper command-line interface. The command
// tree is the project dispatcher: one invocation resolves to exactly one
// lifecycle operation, with a bare project name meaning start.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tenper/tenper/internal/config"
	"github.com/tenper/tenper/internal/logging"
	"github.com/tenper/tenper/internal/project"
	"github.com/tenper/tenper/internal/runctx"
	"github.com/tenper/tenper/internal/runner"
)

var rootCmd = &cobra.Command{
	Use:   "tenper <project>",
	Short: "A tmux session manager with virtualenv support",
	Long: `Tenper manages tmux sessions described by one YAML file per project.

Usage:
    tenper list
    tenper edit my-project
    tenper rebuild my-project
    tenper delete my-project
    tenper my-project`,
	Args: cobra.ExactArgs(1),
	RunE: runStart,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	config.SetDefaults()
	config.BindEnv()
}

// runStart handles the default invocation shape: a single bare argument
// naming the project to start or attach.
func runStart(cmd *cobra.Command, args []string) error {
	return runScoped(args[0], func(ops *project.Ops, rc *runctx.Context) error {
		return ops.Start(rc, args[0])
	})
}

// newOps wires the collaborators shared by every invocation: the debug
// logger, the command runner, and the context stack holding the base
// context built from the environment.
func newOps() (*project.Ops, *runctx.Stack) {
	log, err := logging.NewLogger(viper.GetString("configs"), config.LogLevel())
	if err != nil {
		log = logging.NopLogger()
	}

	ops := &project.Ops{
		Runner: runner.New(log),
		Log:    log,
		In:     os.Stdin,
		Out:    os.Stdout,
	}
	return ops, runctx.NewStack(config.BaseContext())
}

// runScoped loads the project's configuration and runs op inside a context
// overlay seeded with the loaded values. The overlay is discarded when op
// ends, restoring the base context. Configuration load failures belong to
// the loader and propagate untouched.
func runScoped(name string, op func(*project.Ops, *runctx.Context) error) error {
	ops, stack := newOps()
	defer ops.Log.Close()

	base := stack.Current()
	path, err := config.FileName(base, name)
	if err != nil {
		return err
	}
	overrides, err := config.Load(base, path, name)
	if err != nil {
		return err
	}

	return stack.Scoped(overrides, func(rc *runctx.Context) error {
		return op(ops, rc)
	})
}
