package domain

import "errors"

// Tier is the priority of a credential.
type Tier string

const (
	TierPrimary   Tier = "primary"
	TierEmergency Tier = "emergency"
)

// Credential is a period-scoped API key.
type Credential struct {
	Token  string
	Tier   Tier
	Period Period
}

// IsZero reports whether no credential has been bound yet.
func (c Credential) IsZero() bool {
	return c.Token == ""
}

// SameKey reports whether both credentials carry the same secret.
func (c Credential) SameKey(other Credential) bool {
	return c.Token == other.Token
}

// String never exposes the secret.
func (c Credential) String() string {
	if c.IsZero() {
		return "credential(none)"
	}
	suffix := c.Token
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	return "credential(" + string(c.Period) + "/" + string(c.Tier) + "/..." + suffix + ")"
}

// ErrNoCredential is returned when no key is configured for a period and tier.
var ErrNoCredential = errors.New("no credential configured")
