package cmd

import (
	"fmt"

	"github.com/dnitsch/aws-saml-creds/internal/credentialexchange"
	"github.com/spf13/cobra"
)

var (
	Version  string = "0.0.1"
	Revision string = "1111aaaa"
)

func init() {
	RootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: fmt.Sprintf("Get version number %s", credentialexchange.SELF_NAME),
	Long:  `Version and Revision number of the installed CLI`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\nRevision: %s\n", Version, Revision)
	},
}
