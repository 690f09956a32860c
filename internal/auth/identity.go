package auth

import (
	"errors"
	"fmt"
)

// ErrInvalidProfile is returned by Validate for profiles that cannot
// represent a logged-in user.
var ErrInvalidProfile = errors.New("auth: invalid profile")

// Profile is the identity returned by an external OAuth provider after a
// successful login. It contains facts only, no decisions, and is never
// modified after it is fetched.
//
// JSON field names follow the passport profile shape so the payload served
// from /secret keeps the same keys across implementations.
type Profile struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"displayName"`
	Name        Name    `json:"name,omitzero"`
	Emails      []Email `json:"emails"`
	Photos      []Photo `json:"photos,omitempty"`
	Provider    string  `json:"provider,omitempty"`
}

type Name struct {
	GivenName  string `json:"givenName,omitempty"`
	FamilyName string `json:"familyName,omitempty"`
}

type Email struct {
	Value    string `json:"value"`
	Verified bool   `json:"verified"`
}

type Photo struct {
	URL string `json:"value"`
}

// Validate checks the profile at a deserialization boundary.
func (p *Profile) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: nil", ErrInvalidProfile)
	}
	if p.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidProfile)
	}
	for i, e := range p.Emails {
		if e.Value == "" {
			return fmt.Errorf("%w: email %d has no value", ErrInvalidProfile, i)
		}
	}
	return nil
}

// PrimaryEmail returns the first email, or the zero value.
func (p *Profile) PrimaryEmail() Email {
	if p == nil || len(p.Emails) == 0 {
		return Email{}
	}
	return p.Emails[0]
}

// PrimaryPhoto returns the first photo URL, or "".
func (p *Profile) PrimaryPhoto() string {
	if p == nil || len(p.Photos) == 0 {
		return ""
	}
	return p.Photos[0].URL
}
