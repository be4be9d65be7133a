package repository

import (
	"context"

	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/pkg/logger"
	"gorm.io/gorm"
)

// StoreFilter narrows the store listing. ViewerID, when set, adds the
// viewer's own rating to each row.
type StoreFilter struct {
	Name     string
	Address  string
	OwnerID  *uint
	ViewerID uint
	SortBy   string
	Order    string
}

var storeSortColumns = map[string]string{
	"name":           "s.name",
	"email":          "s.email",
	"address":        "s.address",
	"average_rating": "average_rating",
	"rating_count":   "rating_count",
}

const storeStatsColumns = "s.id, s.name, s.email, s.address, s.owner_id, s.created_at, " +
	"u.name AS owner_name, AVG(r.rating) AS average_rating, COUNT(r.id) AS rating_count"

type StoreRepository interface {
	Create(ctx context.Context, store *model.Store) error
	FindByID(ctx context.Context, id uint) (*model.Store, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ListWithStats(ctx context.Context, filter StoreFilter) ([]model.StoreWithStats, error)
	FindWithStats(ctx context.Context, id uint, viewerID uint) (*model.StoreWithStats, error)
	Count(ctx context.Context) (int64, error)
}

type storeRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) Create(ctx context.Context, store *model.Store) error {
	logger.Debug("Creating store in database", map[string]interface{}{
		"name":     store.Name,
		"email":    store.Email,
		"owner_id": store.OwnerID,
	})

	if err := r.db.WithContext(ctx).Create(store).Error; err != nil {
		logger.Error("Failed to create store in database", err, map[string]interface{}{
			"name":     store.Name,
			"email":    store.Email,
			"owner_id": store.OwnerID,
		})
		return err
	}

	logger.Debug("Store created in database", map[string]interface{}{
		"store_id": store.ID,
		"name":     store.Name,
	})
	return nil
}

func (r *storeRepository) FindByID(ctx context.Context, id uint) (*model.Store, error) {
	logger.Debug("Finding store by ID", map[string]interface{}{
		"store_id": id,
	})

	var store model.Store
	if err := r.db.WithContext(ctx).First(&store, id).Error; err != nil {
		logLookupError("Failed to find store by ID", err, map[string]interface{}{
			"store_id": id,
		})
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Store{}).Where("email = ?", email).Count(&count).Error; err != nil {
		logger.Error("Failed to check store email", err, map[string]interface{}{
			"email": email,
		})
		return false, err
	}
	return count > 0, nil
}

// statsQuery joins stores with their owner and ratings, grouped per store.
func (r *storeRepository) statsQuery(ctx context.Context, viewerID uint) *gorm.DB {
	query := r.db.WithContext(ctx).
		Table("stores AS s").
		Joins("LEFT JOIN users u ON u.id = s.owner_id").
		Joins("LEFT JOIN ratings r ON r.store_id = s.id")

	if viewerID != 0 {
		query = query.Select(storeStatsColumns+
			", (SELECT ur.rating FROM ratings ur WHERE ur.store_id = s.id AND ur.user_id = ?) AS user_rating", viewerID)
	} else {
		query = query.Select(storeStatsColumns)
	}

	return query.Group("s.id, u.name")
}

func (r *storeRepository) ListWithStats(ctx context.Context, filter StoreFilter) ([]model.StoreWithStats, error) {
	logger.Debug("Listing stores with stats", map[string]interface{}{
		"name":      filter.Name,
		"address":   filter.Address,
		"owner_id":  filter.OwnerID,
		"viewer_id": filter.ViewerID,
		"sort_by":   filter.SortBy,
	})

	query := r.statsQuery(ctx, filter.ViewerID)
	if filter.Name != "" {
		query = query.Where("s.name LIKE ?", like(filter.Name))
	}
	if filter.Address != "" {
		query = query.Where("s.address LIKE ?", like(filter.Address))
	}
	if filter.OwnerID != nil {
		query = query.Where("s.owner_id = ?", *filter.OwnerID)
	}

	column := sortColumn(storeSortColumns, filter.SortBy, "name")
	query = query.Order(column + " " + sortDirection(filter.Order)).Order("s.id ASC")

	stores := []model.StoreWithStats{}
	if err := query.Scan(&stores).Error; err != nil {
		logger.Error("Failed to list stores with stats", err)
		return nil, err
	}

	logger.Debug("Stores listed", map[string]interface{}{
		"count": len(stores),
	})
	return stores, nil
}

func (r *storeRepository) FindWithStats(ctx context.Context, id uint, viewerID uint) (*model.StoreWithStats, error) {
	logger.Debug("Finding store with stats", map[string]interface{}{
		"store_id": id,
	})

	var stores []model.StoreWithStats
	if err := r.statsQuery(ctx, viewerID).Where("s.id = ?", id).Scan(&stores).Error; err != nil {
		logger.Error("Failed to find store with stats", err, map[string]interface{}{
			"store_id": id,
		})
		return nil, err
	}
	if len(stores) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &stores[0], nil
}

func (r *storeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Store{}).Count(&count).Error; err != nil {
		logger.Error("Failed to count stores", err)
		return 0, err
	}
	return count, nil
}
