package credentialexchange

import (
	"time"

	"github.com/dnitsch/aws-saml-creds/internal/profilestore"
)

// ProfileReader is the slice of the profile store the validity check needs.
type ProfileReader interface {
	Profile(name string) (*profilestore.Profile, bool, error)
}

// ValidityResult reports whether stored credentials are still usable.
// ExpiresAt already has the safety delta subtracted and is reported even
// when invalid, so callers can say how long ago the session lapsed.
type ValidityResult struct {
	Valid     bool
	ExpiresAt *time.Time
}

// CheckSession decides whether the stored profile still holds usable
// credentials, treating them as expired safetyDeltaSeconds early to avoid
// races at the exact expiry instant.
//
// An absent profile or one without an expiration yields an invalid result,
// not an error. An unparsable expiration is corrupt state and propagates
// as a read failure.
func CheckSession(store ProfileReader, name string, safetyDeltaSeconds int) (ValidityResult, error) {
	profile, exists, err := store.Profile(name)
	if err != nil {
		return ValidityResult{}, err
	}
	if !exists || profile.Expiration == "" {
		return ValidityResult{}, nil
	}
	expires, err := profile.ExpiresAt()
	if err != nil {
		return ValidityResult{}, err
	}
	adjusted := expires.Add(-time.Duration(safetyDeltaSeconds) * time.Second)
	return ValidityResult{
		Valid:     adjusted.After(time.Now()),
		ExpiresAt: &adjusted,
	}, nil
}
