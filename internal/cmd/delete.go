package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tenper/tenper/internal/project"
	"github.com/tenper/tenper/internal/runctx"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <project>",
	Short: "Delete a project's virtualenv and configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScoped(args[0], func(ops *project.Ops, rc *runctx.Context) error {
			return ops.Delete(rc, args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
