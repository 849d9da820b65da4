// Package collector drives the region, category and ranked-item traversal
// and streams every record into the harvest sinks.
package collector

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/vietddude/trendlake/internal/core/domain"
	"github.com/vietddude/trendlake/internal/harvest/fetch"
	"github.com/vietddude/trendlake/internal/harvest/sink"
)

// Fetcher issues one logical request with retries.
type Fetcher interface {
	Fetch(ctx context.Context, req domain.FetchRequest, sess fetch.Session) (domain.Envelope, fetch.Session, error)
}

// Sinks are the append-only outputs of a harvest.
type Sinks struct {
	Backup      sink.Writer
	Regions     sink.Writer
	Categories  sink.Writer
	RankedItems sink.Writer
}

// Summary counts what a harvest wrote.
type Summary struct {
	Regions     int
	Categories  int
	Pairs       int
	Pages       int
	EmptyPages  int
	RankedItems int
}

// Collector runs one harvest. It is not safe for concurrent use.
type Collector struct {
	fetcher    Fetcher
	sinks      Sinks
	maxResults int
	now        func() time.Time
	log        *slog.Logger

	sess    fetch.Session
	summary Summary
}

// NewCollector creates a collector requesting maxResults items per page.
func NewCollector(fetcher Fetcher, sinks Sinks, maxResults int, log *slog.Logger) *Collector {
	if log == nil {
		log = slog.Default()
	}
	return &Collector{
		fetcher:    fetcher,
		sinks:      sinks,
		maxResults: maxResults,
		now:        time.Now,
		log:        log.With("component", "collector"),
	}
}

// SetClock replaces the retrieval timestamp source.
func (c *Collector) SetClock(now func() time.Time) {
	c.now = now
}

// Run harvests everything. The first fatal fetch error aborts the run; the
// sinks keep what was written before it.
func (c *Collector) Run(ctx context.Context) (Summary, error) {
	c.summary = Summary{}
	c.sess = fetch.Session{}

	regions, err := c.collectRegions(ctx)
	if err != nil {
		return c.summary, err
	}

	for _, region := range regions {
		categories, err := c.collectCategories(ctx, region)
		if err != nil {
			return c.summary, err
		}
		for _, category := range categories {
			if err := c.collectRankedItems(ctx, region, category); err != nil {
				return c.summary, err
			}
		}
		c.log.Info("Region harvested", "region_code", region, "categories", len(categories))
	}

	c.log.Info("Harvest completed",
		"regions", c.summary.Regions,
		"categories", c.summary.Categories,
		"pairs", c.summary.Pairs,
		"pages", c.summary.Pages,
		"empty_pages", c.summary.EmptyPages,
		"ranked_items", c.summary.RankedItems,
	)
	return c.summary, nil
}

func (c *Collector) collectRegions(ctx context.Context) ([]string, error) {
	env, retrievedAt, err := c.fetch(ctx, domain.NewRegionsRequest())
	if err != nil {
		return nil, fmt.Errorf("regions: %w", err)
	}

	var codes []string
	for _, item := range env.Items() {
		item.Stamp(domain.Metadata{RetrievedAt: retrievedAt})
		if err := c.sinks.Regions.Write(item); err != nil {
			return nil, err
		}
		codes = append(codes, item.ID())
		c.summary.Regions++
	}
	sort.Strings(codes)
	return codes, nil
}

func (c *Collector) collectCategories(ctx context.Context, region string) ([]string, error) {
	env, retrievedAt, err := c.fetch(ctx, domain.NewCategoriesRequest(region))
	if err != nil {
		return nil, fmt.Errorf("categories for %s: %w", region, err)
	}

	md := domain.Metadata{RetrievedAt: retrievedAt, RegionCode: region}

	unspecified := domain.UnspecifiedCategory()
	unspecified.Stamp(md)
	if err := c.sinks.Categories.Write(unspecified); err != nil {
		return nil, err
	}

	items := env.Items()
	for _, item := range items {
		item.Stamp(md)
		if err := c.sinks.Categories.Write(item); err != nil {
			return nil, err
		}
		c.summary.Categories++
	}
	return CategoryIDs(items), nil
}

// CategoryIDs returns the traversal set for a region: the unspecified id plus
// every assignable category, each once, sorted as strings.
func CategoryIDs(items []domain.Item) []string {
	seen := map[string]bool{domain.UnspecifiedCategoryID: true}
	ids := []string{domain.UnspecifiedCategoryID}
	for _, item := range items {
		id := item.ID()
		if id == "" || seen[id] || !item.Assignable() {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (c *Collector) collectRankedItems(ctx context.Context, region, category string) error {
	c.summary.Pairs++
	rank := 1
	token := ""
	seenTokens := map[string]bool{}

	for {
		req := domain.NewVideosRequest(region, category, c.maxResults, token)
		env, retrievedAt, err := c.fetch(ctx, req)
		if err != nil {
			return fmt.Errorf("videos for %s/%s: %w", region, category, err)
		}
		c.summary.Pages++

		items := env.Items()
		if len(items) == 0 {
			c.summary.EmptyPages++
		}
		for _, item := range items {
			item.NormalizePublishedAt()
			item.Stamp(domain.Metadata{
				RetrievedAt: retrievedAt,
				RegionCode:  region,
				CategoryID:  category,
				Rank:        rank,
			})
			rank++
			if err := c.sinks.RankedItems.Write(item); err != nil {
				return err
			}
			c.summary.RankedItems++
		}

		token = env.NextPageToken()
		if token == "" {
			return nil
		}
		if seenTokens[token] {
			return fmt.Errorf("videos for %s/%s: page token %q repeated", region, category, token)
		}
		seenTokens[token] = true
	}
}

// fetch issues req and archives the raw envelope before any item is touched.
func (c *Collector) fetch(ctx context.Context, req domain.FetchRequest) (domain.Envelope, string, error) {
	retrievedAt := domain.FormatRetrievedAt(c.now())

	env, sess, err := c.fetcher.Fetch(ctx, req, c.sess)
	c.sess = sess
	if err != nil {
		return nil, "", err
	}
	if env == nil {
		env = domain.EmptyEnvelope()
	}

	env.Stamp(domain.Metadata{RetrievedAt: retrievedAt, RequestParams: req.Params})
	if err := c.sinks.Backup.Write(env); err != nil {
		return nil, "", err
	}
	return env, retrievedAt, nil
}
