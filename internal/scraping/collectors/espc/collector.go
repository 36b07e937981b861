// internal/scraping/collectors/espc/collector.go
package espc

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ps-vitor/espc-sys/internal/domain"
	"github.com/ps-vitor/espc-sys/internal/scraping/fetcher"
	"github.com/ps-vitor/espc-sys/pkg/logger"
)

// PageFetcher is satisfied by *fetcher.CollyFetcher.
type PageFetcher interface {
	Fetch(url string) (*fetcher.Page, error)
}

// CrawlResult is what a run hands over to export. Complete is false when
// pagination stopped early; Records then holds the pages read so far.
type CrawlResult struct {
	RunID    uuid.UUID
	Records  domain.ResultSet
	Pages    int
	Total    int
	Complete bool
}

type EspcCollector struct {
	fetcher   PageFetcher
	extractor *Extractor
	searchURL string
	delay     time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
	log       *logger.Logger
}

type Option func(*EspcCollector)

// WithSleep replaces the pause between result pages.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *EspcCollector) { c.sleep = sleep }
}

func NewEspcCollector(f PageFetcher, ex *Extractor, searchURL string, delay time.Duration, log *logger.Logger, opts ...Option) *EspcCollector {
	c := &EspcCollector{
		fetcher:   f,
		extractor: ex,
		searchURL: searchURL,
		delay:     delay,
		sleep:     sleepContext,
		log:       log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run reads the first results page, works out how many pages there are and
// walks the rest one at a time. A failure on the first page returns a nil
// result. A failure while paginating returns what was collected so far.
func (c *EspcCollector) Run(ctx context.Context) (*CrawlResult, error) {
	runID := uuid.New()
	log := c.log.With("run_id", runID.String())

	log.WithField("state", domain.StateStart).Debugf("search %s", c.searchURL)

	log.WithField("state", domain.StateFirstPage).Debug("fetching first page")
	body, err := c.fetchPage(c.searchURL)
	if err != nil {
		return nil, fmt.Errorf("espc: first page: %w", err)
	}
	listings, err := c.extractor.Extract(body)
	if err != nil {
		return nil, fmt.Errorf("espc: first page: %w", err)
	}
	total, err := PageCount(body)
	if err != nil {
		return nil, fmt.Errorf("espc: first page: %w", err)
	}

	res := &CrawlResult{
		RunID:   runID,
		Records: append(domain.ResultSet{}, listings...),
		Pages:   1,
		Total:   total,
	}
	log.Infof("page 1/%d: %d listings", total, len(listings))

	log.WithField("state", domain.StatePaginating).Debugf("%d pages to go", total-1)
	for n := 2; n <= total; n++ {
		url := PageURL(c.searchURL, n)
		body, err := c.fetchPage(url)
		if err != nil {
			return res, fmt.Errorf("espc: page %d: %w", n, err)
		}
		listings, err := c.extractor.Extract(body)
		if err != nil {
			return res, fmt.Errorf("espc: page %d: %w", n, err)
		}
		res.Records = append(res.Records, listings...)
		res.Pages = n
		log.Infof("page %d/%d: %d listings", n, total, len(listings))

		if n < total {
			if err := c.sleep(ctx, c.delay); err != nil {
				return res, fmt.Errorf("espc: after page %d: %w", n, err)
			}
		}
	}

	res.Complete = true
	log.WithField("state", domain.StateDone).Infof("collected %d listings from %d pages", len(res.Records), res.Pages)
	return res, nil
}

func (c *EspcCollector) fetchPage(url string) (string, error) {
	page, err := c.fetcher.Fetch(url)
	if err != nil {
		return "", err
	}
	return page.Body, nil
}
