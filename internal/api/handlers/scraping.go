// internal/api/handlers/scraping.go

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ps-vitor/espc-sys/internal/services"
)

type Scraper interface {
	ScrapeAndStore(ctx context.Context) (*services.Report, error)
}

type ScrapingHandler struct {
	scraperService Scraper
}

func NewScrapingHandler(svc Scraper) *ScrapingHandler {
	return &ScrapingHandler{scraperService: svc}
}

type scrapeResponse struct {
	Report *services.Report `json:"report,omitempty"`
	Error  string           `json:"error,omitempty"`
}

func (h *ScrapingHandler) HandleScrape(w http.ResponseWriter, r *http.Request) {
	report, err := h.scraperService.ScrapeAndStore(r.Context())
	switch {
	case errors.Is(err, services.ErrScrapeInProgress):
		writeJSON(w, http.StatusConflict, scrapeResponse{Error: err.Error()})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, scrapeResponse{Report: report, Error: err.Error()})
	default:
		writeJSON(w, http.StatusOK, scrapeResponse{Report: report})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
