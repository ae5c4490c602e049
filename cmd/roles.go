package cmd

import (
	"fmt"

	"github.com/dnitsch/aws-saml-creds/internal/cmdutils"
	"github.com/dnitsch/aws-saml-creds/internal/saml"
	"github.com/spf13/cobra"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List the roles a SAML response offers",
	Long:  `List the principal,role pairs the SAMLResponse authorises, one per line, to help pick a --role for assume.`,
	RunE:  roles,
}

func init() {
	rolesCmd.PersistentFlags().StringVarP(&samlResponseFile, "saml-response", "f", "-", "File containing the base64 encoded SAMLResponse, - reads from stdin")
	RootCmd.AddCommand(rolesCmd)
}

func roles(cmd *cobra.Command, args []string) error {
	rawResponse, err := readSamlResponse(cmd.InOrStdin())
	if err != nil {
		return err
	}
	pairs, err := cmdutils.ListRoles(saml.New(), rawResponse)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}
