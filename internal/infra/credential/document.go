package credential

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/vietddude/trendlake/internal/core/domain"
)

// ObjectGetter fetches an object body.
type ObjectGetter interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// Document serves keys from a JSON object mapping periods to entries. The
// document is fetched on first use and cached for the provider's lifetime.
type Document struct {
	getter ObjectGetter
	bucket string
	key    string

	mu      sync.Mutex
	entries map[string]Entry
}

// NewDocument creates a provider for the object at bucket/key.
func NewDocument(getter ObjectGetter, bucket, key string) *Document {
	return &Document{getter: getter, bucket: bucket, key: key}
}

// Get returns the key for period and tier.
func (d *Document) Get(ctx context.Context, period domain.Period, tier domain.Tier) (domain.Credential, error) {
	entries, err := d.load(ctx)
	if err != nil {
		return domain.Credential{}, err
	}
	return issue(entries, period, tier)
}

func (d *Document) load(ctx context.Context) (map[string]Entry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.entries != nil {
		return d.entries, nil
	}

	body, err := d.getter.GetObject(ctx, d.bucket, d.key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch credential document: %w", err)
	}
	var entries map[string]Entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse credential document: %w", err)
	}
	if entries == nil {
		entries = map[string]Entry{}
	}
	d.entries = entries
	return entries, nil
}
