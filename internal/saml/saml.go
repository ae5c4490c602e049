// Package saml extracts the role tuples offered by a base64 encoded
// SAMLResponse document. Signature validation is the identity provider's
// and AWS's job, not ours - the raw blob is passed through untouched for
// the STS exchange.
package saml

import (
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dnitsch/aws-saml-creds/internal/credentialexchange"
)

const (
	roleAttrName     = "https://aws.amazon.com/SAML/Attributes/Role"
	durationAttrName = "https://aws.amazon.com/SAML/Attributes/SessionDuration"
)

var ErrInvalidResponse = errors.New("invalid saml response")

type samlResponse struct {
	Assertion struct {
		AttributeStatement struct {
			Attributes []struct {
				Name   string   `xml:"Name,attr"`
				Values []string `xml:"AttributeValue"`
			} `xml:"Attribute"`
		} `xml:"AttributeStatement"`
	} `xml:"Assertion"`
}

type Parser struct{}

func New() Parser {
	return Parser{}
}

// Parse decodes the SAMLResponse and returns the offered roles, narrowed
// to roleFilter when one is given.
func (p Parser) Parse(rawResponse, roleFilter string) (credentialexchange.RoleSet, error) {
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(rawResponse))
	if err != nil {
		return credentialexchange.RoleSet{}, fmt.Errorf("fail to decode response: %s, %w", err, ErrInvalidResponse)
	}

	var resp samlResponse
	if err := xml.Unmarshal(decoded, &resp); err != nil {
		return credentialexchange.RoleSet{}, fmt.Errorf("fail to unmarshal response: %s, %w", err, ErrInvalidResponse)
	}

	duration := credentialexchange.SESSION_DURATION_DEFAULT
	set := credentialexchange.RoleSet{Assertion: rawResponse}
	for _, attr := range resp.Assertion.AttributeStatement.Attributes {
		switch attr.Name {
		case durationAttrName:
			if len(attr.Values) > 0 {
				if d, err := strconv.Atoi(strings.TrimSpace(attr.Values[0])); err == nil {
					duration = d
				}
			}
		case roleAttrName:
			for _, v := range attr.Values {
				role, err := roleFromAttribute(v)
				if err != nil {
					return credentialexchange.RoleSet{}, err
				}
				set.Roles = append(set.Roles, role)
			}
		}
	}
	if len(set.Roles) == 0 {
		return credentialexchange.RoleSet{}, fmt.Errorf("no role attributes in assertion, %w", ErrInvalidResponse)
	}
	for i := range set.Roles {
		set.Roles[i].Duration = duration
	}
	return credentialexchange.ResolveRole(set, roleFilter)
}

// roleFromAttribute splits the "arn,arn" attribute value. IdPs emit the
// pair in either order.
func roleFromAttribute(value string) (credentialexchange.AWSRole, error) {
	parts := strings.Split(strings.TrimSpace(value), ",")
	if len(parts) != 2 {
		return credentialexchange.AWSRole{}, fmt.Errorf("malformed role attribute %q, %w", value, ErrInvalidResponse)
	}
	roleArn, principalArn := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if strings.Contains(principalArn, ":role/") {
		roleArn, principalArn = principalArn, roleArn
	}
	role := credentialexchange.AWSRole{RoleARN: roleArn, PrincipalARN: principalArn}
	role.Name = role.ShortName()
	return role, nil
}
