// Root of command-line argument parsing.
// This file was based off the standard cobra template, see
// https://github.com/spf13/cobra
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/modelstream/preflight/pkg/pfmgr"
)

var cfgFile string

var pfManager *pfmgr.Manager

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "preflight",
	Short: "Storage access checks for model-weight streaming",
	Long: `Diagnostic and smoke-test commands that verify access to model weight
files in S3 and Azure Blob Storage before a streaming session is attempted.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		mgrArgs := map[string]interface{}{}
		if cfgFile != "" {
			mgrArgs["config-file"] = cfgFile
		}

		var err error
		pfManager, err = pfmgr.NewManager(mgrArgs)
		if err != nil {
			fmt.Printf("Failed to initialize preflight manager: %v\n", err)
			os.Exit(1)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		pfManager.Destroy()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by preflight.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if pfManager == nil || pfManager.Logger == nil {
			fmt.Printf("%v\n", err)
		} else {
			pfManager.Logger.Error(err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is configs/preflight.yaml)")
}
