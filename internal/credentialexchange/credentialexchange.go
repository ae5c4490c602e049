package credentialexchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
	"github.com/dnitsch/aws-saml-creds/internal/profilestore"
)

var (
	ErrUnableAssume    = errors.New("unable to assume")
	ErrExchangeTimeout = errors.New("exchange timed out")
	ErrDurationLookup  = errors.New("unable to look up role max session duration")
)

type AuthSamlApi interface {
	AssumeRoleWithSAML(ctx context.Context, params *sts.AssumeRoleWithSAMLInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleWithSAMLOutput, error)
}

type RoleQueryApi interface {
	GetRole(ctx context.Context, params *iam.GetRoleInput, optFns ...func(*iam.Options)) (*iam.GetRoleOutput, error)
}

// Logger is the outbound diagnostics collaborator. It is never consulted
// for control decisions.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

type AWSCredentials struct {
	Version         int       `json:"Version"`
	AWSAccessKey    string    `json:"AccessKeyId"`
	AWSSecretKey    string    `json:"SecretAccessKey"`
	AWSSessionToken string    `json:"SessionToken"`
	PrincipalARN    string    `json:"-"`
	Expires         time.Time `json:"Expiration"`
}

// SessionDuration applies the session duration policy.
//
// Without a requested duration the role default is trusted as-is. A custom
// request triggers a lookup of the role's MaxSessionDuration and is clamped
// to it with a warning - never an error.
func SessionDuration(ctx context.Context, role AWSRole, requested int, svc RoleQueryApi, log Logger) (int, error) {
	if requested <= 0 {
		return role.Duration, nil
	}
	resp, err := svc.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(role.ShortName())})
	if err != nil {
		return 0, fmt.Errorf("get role %s: %s, %w", role.ShortName(), err, classify(err, ErrDurationLookup))
	}
	max := int(aws.ToInt32(resp.Role.MaxSessionDuration))
	if max > 0 && requested > max {
		log.Warnf("requested session duration %ds exceeds the role maximum, clamped to %ds", requested, max)
		return max, nil
	}
	return requested, nil
}

// LoginStsSaml exchanges a saml assertion for STS creds
func LoginStsSaml(ctx context.Context, samlAssertion string, role AWSRole, svc AuthSamlApi) (*AWSCredentials, error) {
	params := &sts.AssumeRoleWithSAMLInput{
		PrincipalArn:    aws.String(role.PrincipalARN), // Required
		RoleArn:         aws.String(role.RoleARN),      // Required
		SAMLAssertion:   aws.String(samlAssertion),     // Required
		DurationSeconds: aws.Int32(int32(role.Duration)),
	}

	resp, err := svc.AssumeRoleWithSAML(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve STS credentials using SAML: %s, %w", err, classify(err, ErrUnableAssume))
	}

	return &AWSCredentials{
		AWSAccessKey:    aws.ToString(resp.Credentials.AccessKeyId),
		AWSSecretKey:    aws.ToString(resp.Credentials.SecretAccessKey),
		AWSSessionToken: aws.ToString(resp.Credentials.SessionToken),
		PrincipalARN:    aws.ToString(resp.AssumedRoleUser.Arn),
		Expires:         aws.ToTime(resp.Credentials.Expiration).Local(),
	}, nil
}

// classify keeps a caller imposed timeout distinguishable from a rejection
// by the identity service.
func classify(err error, fallback error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrExchangeTimeout
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w", apiErr.ErrorCode(), fallback)
	}
	return fallback
}

// ProfileWriter is the slice of the profile store the exchange needs.
type ProfileWriter interface {
	Save(name string, p profilestore.Profile) error
}

// SetCredentials either persists creds under the configured profile section
// or emits the credential_process payload on stdout.
func SetCredentials(creds *AWSCredentials, conf CredentialConfig, store ProfileWriter) error {
	if conf.BaseConfig.StoreInProfile {
		return store.Save(conf.BaseConfig.CfgSectionName, profilestore.Profile{
			AWSAccessKey:    creds.AWSAccessKey,
			AWSSecretKey:    creds.AWSSecretKey,
			AWSSessionToken: creds.AWSSessionToken,
			Expiration:      creds.Expires.UTC().Format(time.RFC3339),
		})
	}
	return returnStdOutAsJson(*creds)
}

func returnStdOutAsJson(creds AWSCredentials) error {
	creds.Version = 1

	jsonBytes, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, string(jsonBytes))
	return nil
}
