package credentialexchange

import (
	"errors"
	"fmt"
	"strings"
)

var ErrRoleNotFound = errors.New("role not found")

// AWSRole aws role attributes
type AWSRole struct {
	RoleARN      string
	PrincipalARN string
	Name         string
	Duration     int
}

// ShortName returns the role name portion of the ARN,
// which is what the IAM GetRole call expects.
func (r AWSRole) ShortName() string {
	if idx := strings.LastIndex(r.RoleARN, "/"); idx >= 0 {
		return r.RoleARN[idx+1:]
	}
	return r.RoleARN
}

// RoleSet is the ordered list of roles offered by a single SAML response,
// together with the raw assertion required for the STS exchange.
type RoleSet struct {
	Roles     []AWSRole
	Assertion string
}

// RoleNotFoundError carries the full set of available roles so callers
// can present choices rather than a bare failure.
type RoleNotFoundError struct {
	Requested string
	Available []AWSRole
}

func (e *RoleNotFoundError) Error() string {
	arns := make([]string, 0, len(e.Available))
	for _, r := range e.Available {
		arns = append(arns, r.RoleARN)
	}
	return fmt.Sprintf("role %s not present in assertion, available roles: %s", e.Requested, strings.Join(arns, ", "))
}

func (e *RoleNotFoundError) Unwrap() error {
	return ErrRoleNotFound
}

// ResolveRole narrows a RoleSet down to the requested role.
//
// An empty requested role returns the set unchanged - disambiguation is then
// the caller's job. The match on the role ARN is exact and case sensitive.
func ResolveRole(set RoleSet, requested string) (RoleSet, error) {
	if requested == "" {
		return set, nil
	}
	for _, r := range set.Roles {
		if r.RoleARN == requested {
			return RoleSet{Roles: []AWSRole{r}, Assertion: set.Assertion}, nil
		}
	}
	return RoleSet{}, &RoleNotFoundError{Requested: requested, Available: set.Roles}
}
