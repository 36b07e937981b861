// internal/services/scraper_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ps-vitor/espc-sys/internal/domain"
	"github.com/ps-vitor/espc-sys/internal/repositories"
	"github.com/ps-vitor/espc-sys/internal/scraping/collectors/espc"
	"github.com/ps-vitor/espc-sys/pkg/logger"
)

// ErrScrapeInProgress is returned when a run is requested while another one
// is still going.
var ErrScrapeInProgress = errors.New("scrape already in progress")

type Collector interface {
	Run(ctx context.Context) (*espc.CrawlResult, error)
}

type Exporter interface {
	Export(records domain.ResultSet) (int, error)
	Path() string
}

// Report summarises one crawl-and-export run.
type Report struct {
	RunID      string `json:"run_id"`
	Pages      int    `json:"pages"`
	TotalPages int    `json:"total_pages"`
	Scraped    int    `json:"scraped"`
	Exported   int    `json:"exported"`
	Stored     int    `json:"stored"`
	OutputPath string `json:"output_path"`
	Complete   bool   `json:"complete"`
}

type ScraperService struct {
	collector Collector
	exporter  Exporter
	repo      repositories.ListingRepository
	log       *logger.Logger
	running   sync.Mutex
}

// NewScraperService wires a run. repo may be nil, in which case listings
// only go to the CSV file.
func NewScraperService(c Collector, e Exporter, repo repositories.ListingRepository, log *logger.Logger) *ScraperService {
	return &ScraperService{collector: c, exporter: e, repo: repo, log: log}
}

// ScrapeAndStore runs one crawl and exports whatever it collected. If
// pagination broke off, the partial results are still exported and the
// crawl error is returned alongside the report.
func (s *ScraperService) ScrapeAndStore(ctx context.Context) (*Report, error) {
	if !s.running.TryLock() {
		return nil, ErrScrapeInProgress
	}
	defer s.running.Unlock()

	res, crawlErr := s.collector.Run(ctx)
	if res == nil {
		return nil, crawlErr
	}
	if crawlErr != nil {
		s.log.Warnf("crawl stopped after page %d of %d, exporting partial results: %v", res.Pages, res.Total, crawlErr)
	}

	report := &Report{
		RunID:      res.RunID.String(),
		Pages:      res.Pages,
		TotalPages: res.Total,
		Scraped:    len(res.Records),
		OutputPath: s.exporter.Path(),
		Complete:   res.Complete,
	}

	n, err := s.exporter.Export(res.Records)
	report.Exported = n
	if err != nil {
		return report, errors.Join(crawlErr, fmt.Errorf("export: %w", err))
	}

	if s.repo != nil {
		stored, err := s.repo.Save(ctx, res.RunID, res.Records.Dedupe())
		report.Stored = stored
		if err != nil {
			return report, errors.Join(crawlErr, fmt.Errorf("store: %w", err))
		}
		s.log.Infof("stored %d listings for run %s", stored, report.RunID)
	}

	return report, crawlErr
}
