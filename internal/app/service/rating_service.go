package service

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/internal/app/repository"
	"github.com/ikkim/storerating-backend/internal/events"
	"github.com/ikkim/storerating-backend/pkg/logger"
	"github.com/ikkim/storerating-backend/pkg/metrics"
	"gorm.io/gorm"
)

const MaxCommentLength = 1000

var (
	ErrInvalidRating  = errors.New("store ID and rating (1-5) are required")
	ErrCommentTooLong = errors.New("comment must be at most 1000 characters")
)

type RatingService interface {
	SubmitRating(ctx context.Context, userID, storeID uint, value int, comment *string) (*model.Rating, bool, error)
	// GetUserRating returns nil without error when the user has not rated the store.
	GetUserRating(ctx context.Context, userID, storeID uint) (*model.Rating, error)
	ListStoreRatings(ctx context.Context, ownerID, storeID uint) ([]model.StoreRating, error)
}

type ratingService struct {
	ratingRepo repository.RatingRepository
	storeRepo  repository.StoreRepository
	stores     StoreService
	publisher  events.Publisher
	metrics    *metrics.AppMetrics
}

// NewRatingService wires the rating engine. publisher and appMetrics may be nil.
func NewRatingService(
	ratingRepo repository.RatingRepository,
	storeRepo repository.StoreRepository,
	stores StoreService,
	publisher events.Publisher,
	appMetrics *metrics.AppMetrics,
) RatingService {
	return &ratingService{
		ratingRepo: ratingRepo,
		storeRepo:  storeRepo,
		stores:     stores,
		publisher:  publisher,
		metrics:    appMetrics,
	}
}

// SubmitRating validates the input before touching the database, then inserts
// or updates the user's single rating for the store.
func (s *ratingService) SubmitRating(ctx context.Context, userID, storeID uint, value int, comment *string) (*model.Rating, bool, error) {
	if storeID == 0 || !model.ValidRating(value) {
		s.metrics.IncRatingSubmission(metrics.RatingFailed)
		return nil, false, ErrInvalidRating
	}
	if comment != nil && utf8.RuneCountInString(*comment) > MaxCommentLength {
		s.metrics.IncRatingSubmission(metrics.RatingFailed)
		return nil, false, ErrCommentTooLong
	}

	if _, err := s.storeRepo.FindByID(ctx, storeID); err != nil {
		s.metrics.IncRatingSubmission(metrics.RatingFailed)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrStoreNotFound
		}
		return nil, false, err
	}

	rating, created, err := s.ratingRepo.Upsert(ctx, userID, storeID, value, comment)
	if err != nil {
		s.metrics.IncRatingSubmission(metrics.RatingFailed)
		return nil, false, err
	}

	result := metrics.RatingUpdated
	if created {
		result = metrics.RatingCreated
	}
	s.metrics.IncRatingSubmission(result)

	logger.Info("Rating stored", map[string]interface{}{
		"rating_id": rating.ID,
		"user_id":   userID,
		"store_id":  storeID,
		"rating":    value,
		"created":   created,
	})

	s.publish(ctx, events.NewRatingEvent(rating, created))
	return rating, created, nil
}

// publish never fails the submission; the rating is already committed.
func (s *ratingService) publish(ctx context.Context, event events.RatingEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Error("Failed to publish rating event", err, map[string]interface{}{
			"rating_id": event.RatingID,
			"store_id":  event.StoreID,
			"type":      event.Type,
		})
	}
}

func (s *ratingService) GetUserRating(ctx context.Context, userID, storeID uint) (*model.Rating, error) {
	rating, err := s.ratingRepo.FindByUserAndStore(ctx, userID, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rating, nil
}

func (s *ratingService) ListStoreRatings(ctx context.Context, ownerID, storeID uint) ([]model.StoreRating, error) {
	if err := s.stores.EnsureOwner(ctx, storeID, ownerID); err != nil {
		return nil, err
	}
	return s.ratingRepo.ListForStore(ctx, storeID)
}
