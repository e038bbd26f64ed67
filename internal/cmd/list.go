package cmd

import (
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ops, stack := newOps()
		defer ops.Log.Close()
		return ops.List(stack.Current())
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
