package cmdutils

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dnitsch/aws-saml-creds/internal/credentialexchange"
	"github.com/dnitsch/aws-saml-creds/internal/profilestore"
)

var (
	ErrMissingArg     = errors.New("missing arg")
	ErrRoleAmbiguous  = errors.New("assertion offers multiple roles, pick one with --role")
	ErrSessionExpired = errors.New("session credentials require refresh")
)

type SamlParser interface {
	Parse(rawResponse, roleFilter string) (credentialexchange.RoleSet, error)
}

type ProfileStorer interface {
	Profile(name string) (*profilestore.Profile, bool, error)
	Save(name string, p profilestore.Profile) error
}

// GetSamlCreds drives the whole flow: reuse a still valid stored session
// if there is one, otherwise resolve the role from the assertion, exchange
// it for temporary credentials and hand them to the store or stdout.
func GetSamlCreds(ctx context.Context, svc credentialexchange.AuthSamlApi, iamSvc credentialexchange.RoleQueryApi, parser SamlParser, store ProfileStorer, rawResponse string, conf credentialexchange.CredentialConfig, log credentialexchange.Logger) error {
	if conf.BaseConfig.CfgSectionName == "" && conf.BaseConfig.StoreInProfile {
		return fmt.Errorf("cfg-section name must be provided if store-profile is enabled, %w", ErrMissingArg)
	}

	if conf.BaseConfig.StoreInProfile {
		result, err := credentialexchange.CheckSession(store, conf.BaseConfig.CfgSectionName, conf.BaseConfig.ReloadBeforeTime)
		if err != nil {
			return err
		}
		if result.Valid {
			log.Infof("stored credentials in section [%s] valid until %s, skipping exchange", conf.BaseConfig.CfgSectionName, result.ExpiresAt.Format(time.RFC3339))
			return nil
		}
	}

	set, err := parser.Parse(rawResponse, conf.BaseConfig.Role)
	if err != nil {
		return err
	}
	if len(set.Roles) != 1 {
		arns := make([]string, 0, len(set.Roles))
		for _, r := range set.Roles {
			arns = append(arns, r.RoleARN)
		}
		return fmt.Errorf("%w: %s", ErrRoleAmbiguous, strings.Join(arns, ", "))
	}

	role := set.Roles[0]
	if conf.PrincipalArn != "" {
		role.PrincipalARN = conf.PrincipalArn
	}
	role.Name = credentialexchange.SessionName(conf.BaseConfig.Username, credentialexchange.SELF_NAME)

	duration, err := credentialexchange.SessionDuration(ctx, role, conf.Duration, iamSvc, log)
	if err != nil {
		return err
	}
	role.Duration = duration

	awsCreds, err := credentialexchange.LoginStsSaml(ctx, set.Assertion, role, svc)
	if err != nil {
		return err
	}
	return credentialexchange.SetCredentials(awsCreds, conf, store)
}

// ListRoles returns the role tuples the assertion offers, one
// "principal,role" pair per line.
func ListRoles(parser SamlParser, rawResponse string) ([]string, error) {
	set, err := parser.Parse(rawResponse, "")
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(set.Roles))
	for _, r := range set.Roles {
		out = append(out, fmt.Sprintf("%s,%s", r.PrincipalARN, r.RoleARN))
	}
	return out, nil
}

// CheckSessionStatus reports the state of a stored session. An invalid or
// absent session returns ErrSessionExpired so the command exits non zero.
func CheckSessionStatus(store ProfileStorer, section string, safetyDeltaSeconds int, log credentialexchange.Logger) error {
	result, err := credentialexchange.CheckSession(store, section, safetyDeltaSeconds)
	if err != nil {
		return err
	}
	if result.ExpiresAt == nil {
		log.Infof("no credentials stored in section [%s]", section)
		return fmt.Errorf("section [%s], %w", section, ErrSessionExpired)
	}
	if !result.Valid {
		log.Infof("credentials in section [%s] expired %s ago", section, time.Since(*result.ExpiresAt).Round(time.Second))
		return fmt.Errorf("section [%s], %w", section, ErrSessionExpired)
	}
	log.Infof("credentials in section [%s] valid until %s", section, result.ExpiresAt.Format(time.RFC3339))
	return nil
}
