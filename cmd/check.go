// Handles the "preflight check" command. This command exists solely to
// contain the per-backend access diagnostics (e.g. s3, azure).

package cmd

import (
	"github.com/spf13/cobra"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Storage access diagnostics",
	Long:  `Commands that verify credentials and object visibility for one storage backend.`,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
