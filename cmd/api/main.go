// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/ps-vitor/espc-sys/internal/api/handlers"
	"github.com/ps-vitor/espc-sys/internal/app"
	"github.com/ps-vitor/espc-sys/internal/config"
	"github.com/ps-vitor/espc-sys/pkg/logger"
)

func main() {
	log := logger.New("api")

	dir := os.Getenv("ESPC_CONFIG_DIR")
	if dir == "" {
		dir = "configs"
	}
	cfg, err := config.LoadConfig(dir)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Setup dependencies
	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Error setting up scraper: %v", err)
	}
	defer a.Close()

	scrapingHandler := handlers.NewScrapingHandler(a.Scraper)
	apiHandler := handlers.NewAPIHandler(a.Listings, scrapingHandler)

	r := mux.NewRouter()
	apiHandler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Infof("Server running on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Errorf("server: %v", err)
	}
}
