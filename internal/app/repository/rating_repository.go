package repository

import (
	"context"
	"errors"

	"github.com/ikkim/storerating-backend/internal/app/model"
	apperrors "github.com/ikkim/storerating-backend/internal/errors"
	"github.com/ikkim/storerating-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RatingRepository interface {
	// Upsert stores the user's rating for a store, updating the existing row
	// when there is one. created is true when a new row was inserted.
	Upsert(ctx context.Context, userID, storeID uint, value int, comment *string) (rating *model.Rating, created bool, err error)
	FindByUserAndStore(ctx context.Context, userID, storeID uint) (*model.Rating, error)
	ListForStore(ctx context.Context, storeID uint) ([]model.StoreRating, error)
	Count(ctx context.Context) (int64, error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Upsert(ctx context.Context, userID, storeID uint, value int, comment *string) (*model.Rating, bool, error) {
	logger.Debug("Upserting rating", map[string]interface{}{
		"user_id":  userID,
		"store_id": storeID,
		"rating":   value,
	})

	rating, created, err := r.upsertOnce(ctx, userID, storeID, value, comment)
	if err != nil && apperrors.IsDuplicateKey(err) {
		// a concurrent request inserted the row first; this pass finds it and updates
		logger.Warn("Rating insert lost a race, retrying as update", map[string]interface{}{
			"user_id":  userID,
			"store_id": storeID,
		})
		rating, created, err = r.upsertOnce(ctx, userID, storeID, value, comment)
	}
	if err != nil {
		logger.Error("Failed to upsert rating", err, map[string]interface{}{
			"user_id":  userID,
			"store_id": storeID,
		})
		return nil, false, err
	}

	logger.Debug("Rating upserted", map[string]interface{}{
		"rating_id": rating.ID,
		"created":   created,
	})
	return rating, created, nil
}

func (r *ratingRepository) upsertOnce(ctx context.Context, userID, storeID uint, value int, comment *string) (*model.Rating, bool, error) {
	var rating model.Rating
	created := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND store_id = ?", userID, storeID).
			First(&rating).Error

		switch {
		case err == nil:
			rating.Rating = value
			rating.Comment = comment
			return tx.Model(&rating).Select("rating", "comment").Updates(&rating).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			rating = model.Rating{
				UserID:  userID,
				StoreID: storeID,
				Rating:  value,
				Comment: comment,
			}
			created = true
			return tx.Create(&rating).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, false, err
	}
	return &rating, created, nil
}

func (r *ratingRepository) FindByUserAndStore(ctx context.Context, userID, storeID uint) (*model.Rating, error) {
	var rating model.Rating
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND store_id = ?", userID, storeID).
		First(&rating).Error
	if err != nil {
		logLookupError("Failed to find rating", err, map[string]interface{}{
			"user_id":  userID,
			"store_id": storeID,
		})
		return nil, err
	}
	return &rating, nil
}

// ListForStore returns the store's ratings with rater details, newest first.
func (r *ratingRepository) ListForStore(ctx context.Context, storeID uint) ([]model.StoreRating, error) {
	logger.Debug("Listing ratings for store", map[string]interface{}{
		"store_id": storeID,
	})

	ratings := []model.StoreRating{}
	err := r.db.WithContext(ctx).
		Table("ratings AS r").
		Select("r.id, r.rating, r.comment, r.created_at, r.updated_at, r.user_id, u.name, u.email").
		Joins("JOIN users u ON u.id = r.user_id").
		Where("r.store_id = ?", storeID).
		Order("r.created_at DESC").
		Order("r.id DESC").
		Scan(&ratings).Error
	if err != nil {
		logger.Error("Failed to list ratings for store", err, map[string]interface{}{
			"store_id": storeID,
		})
		return nil, err
	}
	return ratings, nil
}

func (r *ratingRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Rating{}).Count(&count).Error; err != nil {
		logger.Error("Failed to count ratings", err)
		return 0, err
	}
	return count, nil
}
