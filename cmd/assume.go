package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"

	"dario.cat/mergo"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/dnitsch/aws-saml-creds/internal/cmdutils"
	"github.com/dnitsch/aws-saml-creds/internal/credentialexchange"
	"github.com/dnitsch/aws-saml-creds/internal/profilestore"
	"github.com/dnitsch/aws-saml-creds/internal/saml"
	"github.com/spf13/cobra"
	ini "gopkg.in/ini.v1"
)

var (
	ErrUnableToCreateSession = errors.New("sts - cannot start a new session")
)

var (
	role             string
	principalArn     string
	duration         int
	reloadBeforeTime int
	samlResponseFile string
	assumeCmd        = &cobra.Command{
		Use:   "assume",
		Short: "Exchange a SAML response for AWS temporary credentials",
		Long: `Exchange a SAML response for AWS temporary credentials.
The base64 encoded SAMLResponse as posted by your IdP is read from the given file, or stdin when set to -.`,
		RunE: assume,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if reloadBeforeTime != 0 && duration != 0 && reloadBeforeTime > duration {
				return fmt.Errorf("reload-before: %v, must be less than duration (-d): %v", reloadBeforeTime, duration)
			}
			return nil
		},
	}
)

func init() {
	assumeCmd.PersistentFlags().StringVarP(&samlResponseFile, "saml-response", "f", "-", "File containing the base64 encoded SAMLResponse, - reads from stdin")
	assumeCmd.PersistentFlags().StringVarP(&role, "role", "r", "", "Set the role you want to assume out of the ones offered by the assertion")
	assumeCmd.PersistentFlags().StringVarP(&principalArn, "principal", "", "", "Override the Principal Arn of the SAML IdP in AWS, normally taken from the assertion")
	assumeCmd.PersistentFlags().IntVarP(&duration, "duration", "d", 0, "Request a custom session duration, in seconds, for the role session [900-43200]. It is clamped to the role maximum")
	assumeCmd.PersistentFlags().IntVarP(&reloadBeforeTime, "reload-before", "", 0, "Triggers a credentials refresh before the stored expiration. Value provided in seconds")
	RootCmd.AddCommand(assumeCmd)
}

func assume(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	user, err := user.Current()
	if err != nil {
		return err
	}

	rawResponse, err := readSamlResponse(cmd.InOrStdin())
	if err != nil {
		return err
	}

	conf, err := buildConfig(user.Username)
	if err != nil {
		return err
	}

	store, err := profilestore.New(credFilePath())
	if err != nil {
		return err
	}

	awsConf, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to create session %s, %w", err, ErrUnableToCreateSession)
	}

	svc := sts.NewFromConfig(awsConf)
	iamSvc := iam.NewFromConfig(awsConf)

	return cmdutils.GetSamlCreds(ctx, svc, iamSvc, saml.New(), store, rawResponse, *conf, logger)
}

func readSamlResponse(stdin io.Reader) (string, error) {
	if samlResponseFile == "-" {
		b, err := io.ReadAll(stdin)
		return string(b), err
	}
	b, err := os.ReadFile(samlResponseFile)
	return string(b), err
}

// buildConfig merges config file section defaults under the flag values.
func buildConfig(username string) (*credentialexchange.CredentialConfig, error) {
	conf := &credentialexchange.CredentialConfig{}
	if iniFile, err := ini.Load(credentialexchange.ConfigIniFile("")); err == nil {
		fileConf, err := credentialexchange.LoadCliConfig(iniFile, cfgSectionName)
		if err != nil {
			return nil, err
		}
		conf = fileConf
	}

	flagConf := &credentialexchange.CredentialConfig{
		PrincipalArn: principalArn,
		Duration:     duration,
		BaseConfig: credentialexchange.BaseConfig{
			Role:             role,
			Username:         username,
			CfgSectionName:   cfgSectionName,
			StoreInProfile:   storeInProfile,
			ReloadBeforeTime: reloadBeforeTime,
		},
	}

	if err := mergo.Merge(conf, flagConf, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("fail to merge flags over config file: %s, %w", err, credentialexchange.ErrConfigFailure)
	}
	return conf, nil
}
