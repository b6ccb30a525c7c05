package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bookself",
	Short: "A learning journal with retention decay",
	Long:  "Bookself records what you learn, decays retention over time, and plans what to study next. Single Go binary, in-memory state.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
}
