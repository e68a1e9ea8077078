// Handles the "preflight check azure" command

package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/modelstream/preflight/pkg/azureblob"
	"github.com/modelstream/preflight/pkg/storuri"
)

var checkAzureCmdConfig struct {
	account   string
	container string
	blob      string
	endpoint  string
}

var checkAzureCmd = &cobra.Command{
	Use:   "azure",
	Short: "Verify Azure Blob access and that the weight file exists",
	Long: `Resolves Azure credentials (connection string, SAS token, or the default
credential chain), lists containers to confirm the target container is
visible, and fetches the weight blob's metadata. When the blob is missing, up
to 20 blobs from the container are listed to help locate it.`,
	RunE: func(cmd *cobra.Command, args []string) error {

		if checkAzureCmdConfig.account != "" {
			pfManager.Cfg.Set("azure.account", checkAzureCmdConfig.account)
		}
		if checkAzureCmdConfig.container != "" {
			pfManager.Cfg.Set("azure.container", checkAzureCmdConfig.container)
		}
		if checkAzureCmdConfig.blob != "" {
			pfManager.Cfg.Set("azure.blob", checkAzureCmdConfig.blob)
		}
		if checkAzureCmdConfig.endpoint != "" {
			pfManager.Cfg.Set("azure.endpoint", checkAzureCmdConfig.endpoint)
		}

		checker, err := azureblob.NewChecker(pfManager.Logger.WithField("module", "check.azure"), pfManager.Cfg)
		if err != nil {
			return errors.Wrap(err, "Azure check failed")
		}

		report, err := checker.Run(cmd.Context())
		if err != nil {
			return errors.Wrap(err, "Azure check failed")
		}

		blob := pfManager.Cfg.GetString("azure.blob")
		if blob != "" && !report.ObjectFound {
			return errors.Errorf("weight file not found at %s",
				storuri.Azure(pfManager.Cfg.GetString("azure.container"), blob))
		}
		pfManager.Logger.Info("Azure Blob access is working correctly")
		return nil
	},
}

func init() {
	checkCmd.AddCommand(checkAzureCmd)

	// Define the command line arguments for this subcommand
	checkAzureCmd.Flags().StringVarP(&checkAzureCmdConfig.account, "account", "a", "", "storage account name")
	checkAzureCmd.Flags().StringVarP(&checkAzureCmdConfig.container, "container", "c", "", "container holding the weight file")
	checkAzureCmd.Flags().StringVarP(&checkAzureCmdConfig.blob, "blob", "b", "", "blob path of the weight file")
	checkAzureCmd.Flags().StringVarP(&checkAzureCmdConfig.endpoint, "endpoint", "e", "", "blob service endpoint override (emulator or sovereign cloud)")
}
