package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tenper/tenper/internal/project"
	"github.com/tenper/tenper/internal/runctx"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild <project>",
	Short: "Delete a project's virtualenv and build a fresh one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScoped(args[0], func(ops *project.Ops, rc *runctx.Context) error {
			return ops.Rebuild(rc, args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(rebuildCmd)
}
