package service

import (
	"context"

	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/internal/app/repository"
)

type DashboardService interface {
	Stats(ctx context.Context) (*model.PlatformStats, error)
}

type dashboardService struct {
	userRepo   repository.UserRepository
	storeRepo  repository.StoreRepository
	ratingRepo repository.RatingRepository
}

func NewDashboardService(
	userRepo repository.UserRepository,
	storeRepo repository.StoreRepository,
	ratingRepo repository.RatingRepository,
) DashboardService {
	return &dashboardService{
		userRepo:   userRepo,
		storeRepo:  storeRepo,
		ratingRepo: ratingRepo,
	}
}

func (s *dashboardService) Stats(ctx context.Context) (*model.PlatformStats, error) {
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	stores, err := s.storeRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	ratings, err := s.ratingRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &model.PlatformStats{
		TotalUsers:   users,
		TotalStores:  stores,
		TotalRatings: ratings,
	}, nil
}
