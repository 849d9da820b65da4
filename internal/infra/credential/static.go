package credential

import (
	"context"

	"github.com/vietddude/trendlake/internal/core/domain"
)

// Static serves keys from configuration.
type Static struct {
	entries map[string]Entry
}

// NewStatic creates a provider over entries keyed by period.
func NewStatic(entries map[string]Entry) *Static {
	return &Static{entries: entries}
}

// Get returns the key for period and tier.
func (s *Static) Get(ctx context.Context, period domain.Period, tier domain.Tier) (domain.Credential, error) {
	return issue(s.entries, period, tier)
}
