// Handles the "preflight creds" command

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/modelstream/preflight/pkg/azureblob"
	"github.com/modelstream/preflight/pkg/preflight"
)

var credsCmdConfig struct {
	connectionString string
	account          string
	sasToken         string
	endpoint         string
}

// credsCmd reports which authentication strategy the resolver would pick,
// entirely offline. Useful when a check fails and it isn't obvious which
// credential source is winning.
var credsCmd = &cobra.Command{
	Use:   "creds",
	Short: "Show how Azure credentials would resolve",
	Long: `Resolves the Azure credential bundle from flags and the AZURE_STORAGE_*
environment variables and reports which authentication strategy would be used,
without contacting the storage service. Secrets are printed masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := pfManager.Logger.WithField("module", "creds")

		creds := &azureblob.Credentials{
			ConnectionString: credsCmdConfig.connectionString,
			AccountName:      credsCmdConfig.account,
			SASToken:         credsCmdConfig.sasToken,
			Endpoint:         credsCmdConfig.endpoint,
		}

		strategy, err := azureblob.ResolveStrategy(creds, nil)
		if err != nil {
			return err
		}

		log.Infof("Strategy: %v", strategy)
		if creds.ConnectionString != "" {
			log.Infof("Connection string: %s", preflight.MaskSecret(creds.ConnectionString))
		}
		if creds.AccountName != "" {
			log.Infof("Account: %s", creds.AccountName)
			log.Infof("Service URL: %s", azureblob.ServiceURL(creds))
		}
		if creds.SASToken != "" {
			log.Infof("SAS token: %s", preflight.MaskSecret(creds.SASToken))
		}
		if creds.AccountKey != "" {
			log.Infof("Account key: %s", preflight.MaskSecret(creds.AccountKey))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(credsCmd)

	credsCmd.Flags().StringVar(&credsCmdConfig.connectionString, "connection-string", "", "explicit connection string")
	credsCmd.Flags().StringVarP(&credsCmdConfig.account, "account", "a", "", "storage account name")
	credsCmd.Flags().StringVar(&credsCmdConfig.sasToken, "sas-token", "", "pre-signed SAS token")
	credsCmd.Flags().StringVarP(&credsCmdConfig.endpoint, "endpoint", "e", "", "blob service endpoint override")
}
