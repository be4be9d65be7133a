package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/pkg/logger"
	"gorm.io/gorm"
)

// UserFilter narrows the admin user listing. Text fields match substrings,
// Role matches exactly.
type UserFilter struct {
	Name    string
	Email   string
	Address string
	Role    string
	SortBy  string
	Order   string
}

var userSortColumns = map[string]string{
	"name":       "name",
	"email":      "email",
	"address":    "address",
	"role":       "role",
	"created_at": "created_at",
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindDetail(ctx context.Context, id uint) (*model.UserDetail, error)
	List(ctx context.Context, filter UserFilter) ([]model.User, error)
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"email": user.Email,
		"role":  user.Role,
	})

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}

	logger.Debug("User created in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	logger.Debug("Finding user by ID in database", map[string]interface{}{
		"user_id": id,
	})

	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		logLookupError("Failed to find user by ID in database", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	logger.Debug("Finding user by email in database", map[string]interface{}{
		"email": email,
	})

	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		logLookupError("Failed to find user by email in database", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindDetail(ctx context.Context, id uint) (*model.UserDetail, error) {
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var avg *float64
	row := r.db.WithContext(ctx).
		Table("ratings AS r").
		Joins("JOIN stores s ON s.id = r.store_id").
		Where("s.owner_id = ?", id).
		Select("AVG(r.rating)").
		Row()
	if err := row.Scan(&avg); err != nil {
		logger.Error("Failed to compute owner average rating", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}

	return &model.UserDetail{
		PublicUser:    user.Public(),
		AverageRating: avg,
	}, nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]model.User, error) {
	logger.Debug("Listing users", map[string]interface{}{
		"name":    filter.Name,
		"email":   filter.Email,
		"address": filter.Address,
		"role":    filter.Role,
		"sort_by": filter.SortBy,
	})

	query := r.db.WithContext(ctx).Model(&model.User{})
	if filter.Name != "" {
		query = query.Where("name LIKE ?", like(filter.Name))
	}
	if filter.Email != "" {
		query = query.Where("email LIKE ?", like(filter.Email))
	}
	if filter.Address != "" {
		query = query.Where("address LIKE ?", like(filter.Address))
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}

	column := sortColumn(userSortColumns, filter.SortBy, "name")
	query = query.Order(column + " " + sortDirection(filter.Order)).Order("id ASC")

	var users []model.User
	if err := query.Find(&users).Error; err != nil {
		logger.Error("Failed to list users", err)
		return nil, err
	}

	logger.Debug("Users listed", map[string]interface{}{
		"count": len(users),
	})
	return users, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	logger.Debug("Updating user password in database", map[string]interface{}{
		"user_id": id,
	})

	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		logger.Error("Failed to update user password in database", result.Error, map[string]interface{}{
			"user_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error; err != nil {
		logger.Error("Failed to count users", err)
		return 0, err
	}
	return count, nil
}

// like wraps s for a substring LIKE match.
func like(s string) string {
	return "%" + s + "%"
}

// sortColumn resolves a client sort key through an allow-list.
func sortColumn(allowed map[string]string, key, fallback string) string {
	if column, ok := allowed[key]; ok {
		return column
	}
	return allowed[fallback]
}

func sortDirection(order string) string {
	if strings.EqualFold(order, "desc") {
		return "DESC"
	}
	return "ASC"
}

// logLookupError keeps missing rows out of the error log.
func logLookupError(msg string, err error, fields map[string]interface{}) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Debug(msg, fields)
		return
	}
	logger.Error(msg, err, fields)
}
