package cmd

import (
	"os"

	"github.com/dnitsch/aws-saml-creds/internal/credentialexchange"
	"github.com/dnitsch/aws-saml-creds/internal/util"
	"github.com/spf13/cobra"
)

var (
	cfgSectionName string
	credFile       string
	storeInProfile bool
	verbose        bool
	logger         = util.NewLogger(os.Stderr)

	RootCmd = &cobra.Command{
		Use:   "aws-saml-creds",
		Short: "CLI tool for retrieving AWS temporary credentials via a SAML assertion",
		Long: `CLI tool for retrieving AWS temporary credentials using a SAML assertion obtained from your IdP.
Stores them under the $HOME/.aws/credentials file under a specified profile section or returns the credential_process payload for use in config`,
	}
)

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		util.Exit(err)
	}
}

func init() {
	cobra.OnInitialize(func() { logger.Trace = verbose })
	RootCmd.PersistentFlags().StringVarP(&cfgSectionName, "cfg-section", "", "", "profile section name in the shared credentials file")
	RootCmd.PersistentFlags().StringVarP(&credFile, "cred-file", "", "", "Override the shared credentials file location. Defaults to $AWS_SHARED_CREDENTIALS_FILE or ~/.aws/credentials")
	RootCmd.PersistentFlags().BoolVarP(&storeInProfile, "store-profile", "s", false, "By default the credentials are returned to stdout to be used by the credential_process. Set this flag to instead store the credentials under a named profile section")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}

func credFilePath() string {
	if credFile != "" {
		return credFile
	}
	return credentialexchange.SharedCredentialsFile()
}
