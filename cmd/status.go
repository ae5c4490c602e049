package cmd

import (
	"github.com/dnitsch/aws-saml-creds/internal/cmdutils"
	"github.com/dnitsch/aws-saml-creds/internal/profilestore"
	"github.com/spf13/cobra"
)

var (
	safetyDelta int
	statusCmd   = &cobra.Command{
		Use:   "status",
		Short: "Check whether stored session credentials are still usable",
		Long: `Check whether stored session credentials are still usable.
Credentials are treated as expired a safety margin before their stated expiration. Exits non zero when a refresh is needed.`,
		RunE: status,
	}
)

func init() {
	statusCmd.PersistentFlags().IntVarP(&safetyDelta, "safety-delta", "", 30, "Safety margin, in seconds, subtracted from the stored expiration")
	RootCmd.AddCommand(statusCmd)
}

func status(cmd *cobra.Command, args []string) error {
	store, err := profilestore.New(credFilePath())
	if err != nil {
		return err
	}
	section := cfgSectionName
	if section == "" {
		section = "default"
	}
	return cmdutils.CheckSessionStatus(store, section, safetyDelta, logger)
}
