// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "siga",
	Short: "SIGA is a web-based fleet, unit and personnel administration backend",
	Long: `SIGA is a web-based administration backend for organizational units,
vehicles, maintenance schedules, appointments and users, with role
permissions scoped to unit subtrees.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
