// Handles the "preflight check s3" command

package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/modelstream/preflight/pkg/s3check"
	"github.com/modelstream/preflight/pkg/storuri"
)

var checkS3CmdConfig struct {
	bucket string
	path   string
	region string
}

var checkS3Cmd = &cobra.Command{
	Use:   "s3",
	Short: "Verify S3 access and that the weight file exists",
	Long: `Checks the static AWS credentials in the environment, lists buckets to
confirm the target bucket is visible, compares the bucket's region against the
session region, and fetches the weight file's metadata. When the file is
missing, up to 20 keys from the bucket are listed to help locate it.`,
	RunE: func(cmd *cobra.Command, args []string) error {

		if checkS3CmdConfig.bucket != "" {
			pfManager.Cfg.Set("s3.bucket", checkS3CmdConfig.bucket)
		}
		if checkS3CmdConfig.path != "" {
			pfManager.Cfg.Set("s3.path", checkS3CmdConfig.path)
		}
		if checkS3CmdConfig.region != "" {
			pfManager.Cfg.Set("s3.region", checkS3CmdConfig.region)
		}

		checker, err := s3check.NewChecker(pfManager.Logger.WithField("module", "check.s3"), pfManager.Cfg)
		if err != nil {
			return errors.Wrap(err, "S3 check failed")
		}

		report, err := checker.Run(cmd.Context(), nil)
		if err != nil {
			return errors.Wrap(err, "S3 check failed")
		}

		path := pfManager.Cfg.GetString("s3.path")
		if path != "" && !report.ObjectFound {
			return errors.Errorf("weight file not found at %s",
				storuri.S3(pfManager.Cfg.GetString("s3.bucket"), path))
		}
		pfManager.Logger.Info("S3 access is working correctly")
		return nil
	},
}

func init() {
	checkCmd.AddCommand(checkS3Cmd)

	// Define the command line arguments for this subcommand
	checkS3Cmd.Flags().StringVarP(&checkS3CmdConfig.bucket, "bucket", "b", "", "S3 bucket holding the weight file")
	checkS3Cmd.Flags().StringVarP(&checkS3CmdConfig.path, "path", "p", "", "object key of the weight file")
	checkS3Cmd.Flags().StringVarP(&checkS3CmdConfig.region, "region", "r", "", "AWS region for the session")
}
