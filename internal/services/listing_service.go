package services

import (
	"context"
	"errors"

	"github.com/ps-vitor/espc-sys/internal/domain"
	"github.com/ps-vitor/espc-sys/internal/repositories"
)

// ErrNoRepository means the service was started without a database.
var ErrNoRepository = errors.New("no listing repository configured")

type ListingService struct {
	repo repositories.ListingRepository
}

func NewListingService(repo repositories.ListingRepository) *ListingService {
	return &ListingService{repo: repo}
}

func (s *ListingService) FindAll(ctx context.Context) ([]domain.Listing, error) {
	if s.repo == nil {
		return nil, ErrNoRepository
	}
	return s.repo.FindAll(ctx)
}
