package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ps-vitor/espc-sys/internal/domain"
	"github.com/ps-vitor/espc-sys/internal/scraping/collectors/espc"
	"github.com/ps-vitor/espc-sys/pkg/logger"
)

type fakeCollector struct {
	RunFn func(ctx context.Context) (*espc.CrawlResult, error)
}

func (f *fakeCollector) Run(ctx context.Context) (*espc.CrawlResult, error) { return f.RunFn(ctx) }

type fakeExporter struct {
	exported domain.ResultSet
	calls    int
	err      error
}

func (f *fakeExporter) Export(records domain.ResultSet) (int, error) {
	f.calls++
	f.exported = records.Dedupe()
	return len(f.exported), f.err
}

func (f *fakeExporter) Path() string { return "espc.csv" }

type fakeRepo struct {
	saved  []domain.Listing
	runID  uuid.UUID
	err    error
	stored []domain.Listing
}

func (f *fakeRepo) Save(_ context.Context, runID uuid.UUID, listings []domain.Listing) (int, error) {
	f.runID = runID
	f.saved = listings
	return len(listings), f.err
}

func (f *fakeRepo) FindAll(context.Context) ([]domain.Listing, error) { return f.stored, f.err }

func records() domain.ResultSet {
	return domain.ResultSet{
		{Agent: "Rettie", Address: "1 High Street", Price: "£200,000"},
		{Agent: "Rettie", Address: "1 High Street", Price: "£200,000"},
		{Agent: "N/A", Address: "2 Low Street", Price: "£150,000"},
	}
}

func collectorReturning(res *espc.CrawlResult, err error) *fakeCollector {
	return &fakeCollector{RunFn: func(context.Context) (*espc.CrawlResult, error) { return res, err }}
}

func TestScrapeAndStoreComplete(t *testing.T) {
	runID := uuid.New()
	exp := &fakeExporter{}
	repo := &fakeRepo{}
	svc := NewScraperService(collectorReturning(&espc.CrawlResult{
		RunID: runID, Records: records(), Pages: 3, Total: 3, Complete: true,
	}, nil), exp, repo, logger.Discard())

	report, err := svc.ScrapeAndStore(context.Background())
	require.NoError(t, err)

	assert.Equal(t, &Report{
		RunID: runID.String(), Pages: 3, TotalPages: 3, Scraped: 3,
		Exported: 2, Stored: 2, OutputPath: "espc.csv", Complete: true,
	}, report)
	assert.Equal(t, runID, repo.runID)
	assert.Len(t, repo.saved, 2)
}

func TestScrapeAndStoreWithoutRepository(t *testing.T) {
	exp := &fakeExporter{}
	svc := NewScraperService(collectorReturning(&espc.CrawlResult{Records: records(), Complete: true}, nil), exp, nil, logger.Discard())

	report, err := svc.ScrapeAndStore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Exported)
	assert.Zero(t, report.Stored)
}

func TestScrapeAndStoreFirstPageFailureExportsNothing(t *testing.T) {
	exp := &fakeExporter{}
	crawlErr := &domain.TransportError{URL: "https://espc.com/properties", StatusCode: 503, Err: errors.New("Service Unavailable")}
	svc := NewScraperService(collectorReturning(nil, crawlErr), exp, nil, logger.Discard())

	report, err := svc.ScrapeAndStore(context.Background())

	assert.Nil(t, report)
	assert.ErrorIs(t, err, crawlErr)
	assert.Zero(t, exp.calls)
}

func TestScrapeAndStorePartialResultsStillExported(t *testing.T) {
	exp := &fakeExporter{}
	crawlErr := errors.New("espc: page 3: boom")
	svc := NewScraperService(collectorReturning(&espc.CrawlResult{
		Records: records()[:1], Pages: 2, Total: 5,
	}, crawlErr), exp, nil, logger.Discard())

	report, err := svc.ScrapeAndStore(context.Background())

	assert.ErrorIs(t, err, crawlErr)
	require.NotNil(t, report)
	assert.False(t, report.Complete)
	assert.Equal(t, 1, report.Exported)
	assert.Equal(t, 1, exp.calls)
}

func TestScrapeAndStoreExportError(t *testing.T) {
	exp := &fakeExporter{err: errors.New("disk full")}
	repo := &fakeRepo{}
	svc := NewScraperService(collectorReturning(&espc.CrawlResult{Records: records(), Complete: true}, nil), exp, repo, logger.Discard())

	_, err := svc.ScrapeAndStore(context.Background())

	assert.ErrorContains(t, err, "export: disk full")
	assert.Nil(t, repo.saved)
}

func TestScrapeAndStoreRejectsConcurrentRun(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	svc := NewScraperService(&fakeCollector{RunFn: func(context.Context) (*espc.CrawlResult, error) {
		close(started)
		<-release
		return &espc.CrawlResult{Complete: true}, nil
	}}, &fakeExporter{}, nil, logger.Discard())

	done := make(chan error)
	go func() {
		_, err := svc.ScrapeAndStore(context.Background())
		done <- err
	}()
	<-started

	_, err := svc.ScrapeAndStore(context.Background())
	assert.ErrorIs(t, err, ErrScrapeInProgress)

	close(release)
	assert.NoError(t, <-done)
}

func TestListingServiceWithoutRepository(t *testing.T) {
	_, err := NewListingService(nil).FindAll(context.Background())
	assert.ErrorIs(t, err, ErrNoRepository)
}

func TestListingServiceFindAll(t *testing.T) {
	repo := &fakeRepo{stored: records()[:2]}

	got, err := NewListingService(repo).FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
