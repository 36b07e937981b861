// Package app wires the scraper from configuration. Both binaries share it.
package app

import (
	"context"

	"github.com/ps-vitor/espc-sys/internal/config"
	"github.com/ps-vitor/espc-sys/internal/export"
	"github.com/ps-vitor/espc-sys/internal/repositories"
	"github.com/ps-vitor/espc-sys/internal/scraping/collectors/espc"
	"github.com/ps-vitor/espc-sys/internal/scraping/fetcher"
	"github.com/ps-vitor/espc-sys/internal/services"
	"github.com/ps-vitor/espc-sys/pkg/logger"
)

type App struct {
	Scraper  *services.ScraperService
	Listings *services.ListingService

	closers []func()
}

// New builds the services. The Postgres sink is only set up when a
// database URL is configured.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := logger.SetLevel(cfg.App.LogLevel); err != nil {
		return nil, err
	}
	espcCfg := cfg.Scraping.Espc

	f := fetcher.NewCollyFetcher(fetcher.Options{
		UserAgent: espcCfg.UserAgent,
		Timeout:   espcCfg.RequestTimeout,
	}, logger.New("fetcher"))
	collector := espc.NewEspcCollector(
		f,
		espc.NewExtractor(espcCfg.SiteOrigin),
		espcCfg.SearchURL,
		espcCfg.PageDelay,
		logger.New("collector"),
	)
	exporter := export.NewCSVExporter(espcCfg.OutputPath, logger.New("export"))

	a := &App{}
	var repo repositories.ListingRepository
	if cfg.Database.URL != "" {
		pg, err := repositories.NewPostgresListingRepository(ctx, cfg.Database.URL, cfg.Database.MaxConns)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pg.Close)
		if err := pg.Migrate(ctx); err != nil {
			a.Close()
			return nil, err
		}
		repo = pg
	}

	a.Scraper = services.NewScraperService(collector, exporter, repo, logger.New("scraper"))
	a.Listings = services.NewListingService(repo)
	return a, nil
}

func (a *App) Close() {
	for _, c := range a.closers {
		c()
	}
}
