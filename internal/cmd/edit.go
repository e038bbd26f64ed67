package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tenper/tenper/internal/config"
)

var editCmd = &cobra.Command{
	Use:   "edit <project>",
	Short: "Edit a project's configuration, creating it when missing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ops, stack := newOps()
		defer ops.Log.Close()

		// Edit needs only the computed file path, not parsed contents, so
		// no configuration is loaded and no overlay is entered.
		rc := stack.Current()
		path, err := config.FileName(rc, args[0])
		if err != nil {
			return err
		}
		return ops.Edit(rc, args[0], path)
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
}
