package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps Redis operations for credential storage.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// CredentialKey is the hash holding the tiers of one period.
func CredentialKey(prefix, period string) string {
	return fmt.Sprintf("%s:%s", prefix, period)
}

// GetCredential reads a tier field. found is false when the hash or the
// field does not exist.
func (c *Client) GetCredential(ctx context.Context, prefix, period, tier string) (token string, found bool, err error) {
	token, err = c.rdb.HGet(ctx, CredentialKey(prefix, period), tier).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("hget failed: %w", err)
	}
	return token, token != "", nil
}

// SetCredential stores a tier field.
func (c *Client) SetCredential(ctx context.Context, prefix, period, tier, token string) error {
	if err := c.rdb.HSet(ctx, CredentialKey(prefix, period), tier, token).Err(); err != nil {
		return fmt.Errorf("hset failed: %w", err)
	}
	return nil
}

// DeleteCredential removes a tier field.
func (c *Client) DeleteCredential(ctx context.Context, prefix, period, tier string) error {
	if err := c.rdb.HDel(ctx, CredentialKey(prefix, period), tier).Err(); err != nil {
		return fmt.Errorf("hdel failed: %w", err)
	}
	return nil
}
