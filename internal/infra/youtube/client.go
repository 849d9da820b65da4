// Package youtube is a minimal client for the YouTube Data API v3 listings
// the collector needs.
package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/vietddude/trendlake/internal/core/domain"
)

// Config holds API client settings.
type Config struct {
	BaseURL           string        `yaml:"base_url"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"` // 0 = unpaced
	MaxResults        int           `yaml:"max_results"`
}

// Client issues listing requests with one API key. A fresh Client owns a
// fresh transport, so rebuilding one drops any broken keep-alive connections.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient binds a client to an API key. The limiter may be shared across
// rebuilt clients so pacing survives client rotation; nil means unpaced.
func NewClient(cfg Config, apiKey string, limiter *rate.Limiter) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: limiter,
	}
}

// NewLimiter builds the shared pacing limiter for cfg.
func NewLimiter(cfg Config) *rate.Limiter {
	if cfg.RequestsPerSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
}

func resource(t domain.RequestType) (string, error) {
	switch t {
	case domain.RequestRegions:
		return "i18nRegions", nil
	case domain.RequestCategories:
		return "videoCategories", nil
	case domain.RequestVideos:
		return "videos", nil
	default:
		return "", fmt.Errorf("unsupported request type %d", t)
	}
}

// Do executes one listing request and returns the decoded response page.
func (c *Client) Do(ctx context.Context, req domain.FetchRequest) (domain.Envelope, error) {
	path, err := resource(req.Type)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	for _, kv := range req.Params {
		query.Set(kv.Key, kv.Text())
	}
	query.Set("key", c.apiKey)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/"+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s call: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(resp.StatusCode, body)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var env domain.Envelope
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("parse %s response: %w", path, err)
	}
	return env, nil
}
