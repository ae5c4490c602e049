package credentialexchange

import (
	"errors"
	"fmt"

	ini "gopkg.in/ini.v1"
)

const (
	SELF_NAME            = "aws-saml-creds"
	AWS_SHARED_CREDS_VAR = "AWS_SHARED_CREDENTIALS_FILE"
	INI_CONF_SECTION     = "default"
	// session duration used when neither the user nor the
	// assertion specifies one
	SESSION_DURATION_DEFAULT = 3600
)

var ErrConfigFailure = errors.New("config error")

type BaseConfig struct {
	Role             string `ini:"role"`
	Username         string
	CfgSectionName   string
	StoreInProfile   bool
	ReloadBeforeTime int `ini:"reload-before"`
}

type CredentialConfig struct {
	BaseConfig   BaseConfig
	PrincipalArn string `ini:"principal"`
	Duration     int    `ini:"duration"`
}

// LoadCliConfig maps a section of the tool's own ini config file into a
// CredentialConfig so flags only need to override what differs.
func LoadCliConfig(iniFile *ini.File, section string) (*CredentialConfig, error) {
	if section == "" {
		section = INI_CONF_SECTION
	}
	conf := &CredentialConfig{}
	if !iniFile.HasSection(section) {
		return conf, nil
	}
	if err := iniFile.Section(section).MapTo(conf); err != nil {
		return nil, fmt.Errorf("fail to map section %s: %s, %w", section, err, ErrConfigFailure)
	}
	if err := iniFile.Section(section).MapTo(&conf.BaseConfig); err != nil {
		return nil, fmt.Errorf("fail to map section %s: %s, %w", section, err, ErrConfigFailure)
	}
	return conf, nil
}
