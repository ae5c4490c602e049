package credentialexchange_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dnitsch/aws-saml-creds/internal/credentialexchange"
	"github.com/dnitsch/aws-saml-creds/internal/profilestore"
)

type fakeProfileReader struct {
	profile *profilestore.Profile
	exists  bool
	err     error
}

func (f *fakeProfileReader) Profile(name string) (*profilestore.Profile, bool, error) {
	return f.profile, f.exists, f.err
}

func storedProfile(expiresIn time.Duration) *profilestore.Profile {
	return &profilestore.Profile{
		AWSAccessKey: "key",
		AWSSecretKey: "secret",
		Expiration:   time.Now().Add(expiresIn).UTC().Format(time.RFC3339),
	}
}

func Test_CheckSession_with(t *testing.T) {
	ttests := map[string]struct {
		reader       *fakeProfileReader
		safetyDelta  int
		expectValid  bool
		expectExpiry bool
	}{
		"expiration exactly at the safety delta is invalid": {
			reader:       &fakeProfileReader{profile: storedProfile(30 * time.Second), exists: true},
			safetyDelta:  30,
			expectValid:  false,
			expectExpiry: true,
		},
		"expiration one second past the safety delta is valid": {
			reader:       &fakeProfileReader{profile: storedProfile(31 * time.Second), exists: true},
			safetyDelta:  30,
			expectValid:  true,
			expectExpiry: true,
		},
		"long lived session is valid": {
			reader:       &fakeProfileReader{profile: storedProfile(time.Hour), exists: true},
			safetyDelta:  300,
			expectValid:  true,
			expectExpiry: true,
		},
		"lapsed session reports the adjusted expiry": {
			reader:       &fakeProfileReader{profile: storedProfile(-15 * time.Minute), exists: true},
			safetyDelta:  30,
			expectValid:  false,
			expectExpiry: true,
		},
		"absent profile is invalid without an expiry": {
			reader:      &fakeProfileReader{},
			safetyDelta: 30,
		},
		"profile without an expiration field is invalid without an expiry": {
			reader:      &fakeProfileReader{profile: &profilestore.Profile{AWSAccessKey: "key", AWSSecretKey: "secret"}, exists: true},
			safetyDelta: 30,
		},
	}
	for name, tt := range ttests {
		t.Run(name, func(t *testing.T) {
			got, err := credentialexchange.CheckSession(tt.reader, "default", tt.safetyDelta)
			if err != nil {
				t.Fatalf("got %s, wanted <nil>", err)
			}
			if got.Valid != tt.expectValid {
				t.Errorf("expected valid: %v, got: %v", tt.expectValid, got.Valid)
			}
			if (got.ExpiresAt != nil) != tt.expectExpiry {
				t.Errorf("expected expiry reported: %v, got: %v", tt.expectExpiry, got.ExpiresAt)
			}
		})
	}
}

func Test_CheckSession_corrupt_expiration(t *testing.T) {
	reader := &fakeProfileReader{
		profile: &profilestore.Profile{AWSAccessKey: "key", AWSSecretKey: "secret", Expiration: "not-a-date"},
		exists:  true,
	}
	_, err := credentialexchange.CheckSession(reader, "default", 30)
	if !errors.Is(err, profilestore.ErrCredFileRead) {
		t.Errorf("got %v, wanted a read class failure for corrupt state", err)
	}
}

func Test_CheckSession_propagates_read_failure(t *testing.T) {
	reader := &fakeProfileReader{err: profilestore.ErrCredFileRead}
	_, err := credentialexchange.CheckSession(reader, "default", 30)
	if !errors.Is(err, profilestore.ErrCredFileRead) {
		t.Errorf("got %v, wanted ErrCredFileRead", err)
	}
}
