// Package credential issues period-scoped API keys from static config,
// Redis hashes or a JSON document in S3.
package credential

import (
	"encoding/json"
	"fmt"

	"github.com/vietddude/trendlake/internal/core/domain"
)

// ErrNoCredential is returned when a tier has no key for a period.
var ErrNoCredential = domain.ErrNoCredential

// Entry holds the keys of one period. It decodes from a bare string, taken
// as the primary key, or from {primary, emergency}.
type Entry struct {
	Primary   string `yaml:"primary" json:"primary"`
	Emergency string `yaml:"emergency" json:"emergency"`
}

// Token returns the key for tier.
func (e Entry) Token(tier domain.Tier) string {
	if tier == domain.TierEmergency {
		return e.Emergency
	}
	return e.Primary
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *Entry) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var key string
	if err := unmarshal(&key); err == nil {
		*e = Entry{Primary: key}
		return nil
	}
	type plain Entry
	var p plain
	if err := unmarshal(&p); err != nil {
		return fmt.Errorf("credential entry must be a key or {primary, emergency}: %w", err)
	}
	*e = Entry(p)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Entry) UnmarshalJSON(b []byte) error {
	var key string
	if err := json.Unmarshal(b, &key); err == nil {
		*e = Entry{Primary: key}
		return nil
	}
	type plain Entry
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return fmt.Errorf("credential entry must be a key or {primary, emergency}: %w", err)
	}
	*e = Entry(p)
	return nil
}

func issue(entries map[string]Entry, period domain.Period, tier domain.Tier) (domain.Credential, error) {
	token := entries[string(period)].Token(tier)
	if token == "" {
		return domain.Credential{}, fmt.Errorf("%w: period %s tier %s", ErrNoCredential, period, tier)
	}
	return domain.Credential{Token: token, Tier: tier, Period: period}, nil
}
