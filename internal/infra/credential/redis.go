package credential

import (
	"context"
	"fmt"

	"github.com/vietddude/trendlake/internal/core/domain"
)

// HashStore reads one tier field of a period hash.
type HashStore interface {
	GetCredential(ctx context.Context, prefix, period, tier string) (string, bool, error)
}

// Redis serves keys stored as HSET <prefix>:<period> <tier> <key>.
type Redis struct {
	store  HashStore
	prefix string
}

// NewRedis creates a provider reading hashes under prefix.
func NewRedis(store HashStore, prefix string) *Redis {
	return &Redis{store: store, prefix: prefix}
}

// Get returns the key for period and tier.
func (r *Redis) Get(ctx context.Context, period domain.Period, tier domain.Tier) (domain.Credential, error) {
	token, found, err := r.store.GetCredential(ctx, r.prefix, string(period), string(tier))
	if err != nil {
		return domain.Credential{}, fmt.Errorf("failed to read credential: %w", err)
	}
	if !found {
		return domain.Credential{}, fmt.Errorf("%w: period %s tier %s", ErrNoCredential, period, tier)
	}
	return domain.Credential{Token: token, Tier: tier, Period: period}, nil
}
