// cmd/espc/main.go

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ps-vitor/espc-sys/internal/app"
	"github.com/ps-vitor/espc-sys/internal/config"
	"github.com/ps-vitor/espc-sys/pkg/logger"
)

func main() {
	log := logger.New("espc")

	cfg, err := config.LoadConfig(configDir())
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Error setting up scraper: %v", err)
	}
	defer a.Close()

	report, err := a.Scraper.ScrapeAndStore(ctx)
	if report != nil {
		log.Infof("run %s: %d/%d pages, %d scraped, %d written to %s",
			report.RunID, report.Pages, report.TotalPages, report.Scraped, report.Exported, report.OutputPath)
	}
	if err != nil {
		log.Errorf("Error running scraper: %v", err)
		a.Close()
		os.Exit(1)
	}
}

func configDir() string {
	if dir := os.Getenv("ESPC_CONFIG_DIR"); dir != "" {
		return dir
	}
	return "configs"
}
