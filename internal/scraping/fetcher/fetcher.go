// internal/scraping/fetcher/fetcher.go
package fetcher

import (
	"errors"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/ps-vitor/espc-sys/internal/domain"
	"github.com/ps-vitor/espc-sys/pkg/logger"
)

// Page is the raw result of one GET request.
type Page struct {
	URL        string
	StatusCode int
	Body       string
}

// CollyFetcher issues plain GET requests through a colly collector. It never
// retries; callers decide what to do with a failed page.
type CollyFetcher struct {
	collector *colly.Collector
	log       *logger.Logger
}

type Options struct {
	UserAgent string
	// Timeout of zero keeps colly's default.
	Timeout time.Duration
}

func NewCollyFetcher(opts Options, log *logger.Logger) *CollyFetcher {
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	)
	if opts.UserAgent != "" {
		c.UserAgent = opts.UserAgent
	}
	if opts.Timeout > 0 {
		c.SetRequestTimeout(opts.Timeout)
	}

	return &CollyFetcher{
		collector: c,
		log:       log,
	}
}

// Fetch GETs url and returns its body. Transport failures and non-success
// statuses come back as *domain.TransportError.
func (f *CollyFetcher) Fetch(url string) (*Page, error) {
	var page *Page
	var fetchErr *domain.TransportError

	c := f.collector.Clone()

	c.OnResponse(func(r *colly.Response) {
		page = &Page{
			URL:        url,
			StatusCode: r.StatusCode,
			Body:       string(r.Body),
		}
	})

	c.OnError(func(r *colly.Response, e error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = &domain.TransportError{URL: url, StatusCode: status, Err: e}
	})

	if err := c.Visit(url); err != nil && fetchErr == nil {
		fetchErr = &domain.TransportError{URL: url, Err: err}
	}

	if fetchErr != nil {
		f.log.Warnf("HTTP GET request to URL: %s | Status code: %d", url, fetchErr.StatusCode)
		return nil, fetchErr
	}
	if page == nil {
		return nil, &domain.TransportError{URL: url, Err: errors.New("no response received")}
	}

	f.log.Infof("HTTP GET request to URL: %s | Status code: %d", url, page.StatusCode)
	return page, nil
}
