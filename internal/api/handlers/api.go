package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ps-vitor/espc-sys/internal/domain"
	"github.com/ps-vitor/espc-sys/internal/services"
)

type ListingFinder interface {
	FindAll(ctx context.Context) ([]domain.Listing, error)
}

type APIHandler struct {
	listingService ListingFinder
	scraping       *ScrapingHandler
}

func NewAPIHandler(listings ListingFinder, scraping *ScrapingHandler) *APIHandler {
	return &APIHandler{listingService: listings, scraping: scraping}
}

func (h *APIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/scrape", h.scraping.HandleScrape).Methods(http.MethodGet, http.MethodPost)
	api.HandleFunc("/listings", h.handleListings).Methods(http.MethodGet)
}

func (h *APIHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok"))
}

func (h *APIHandler) handleListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.listingService.FindAll(r.Context())
	switch {
	case errors.Is(err, services.ErrNoRepository):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	case err != nil:
		http.Error(w, "failed to load listings", http.StatusInternalServerError)
		return
	}
	if listings == nil {
		listings = []domain.Listing{}
	}
	writeJSON(w, http.StatusOK, listings)
}
