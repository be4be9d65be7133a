package db

import (
	"errors"
	"fmt"

	"github.com/ikkim/storerating-backend/config"
	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/pkg/logger"
	"github.com/ikkim/storerating-backend/pkg/util"
	"gorm.io/gorm"
)

// Models lists every persisted model in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Store{},
		&model.Rating{},
	}
}

// Migrate runs database migrations
func Migrate(database *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := database.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// SeedAdmin creates the bootstrap administrator when credentials are configured
// and no account with that email exists yet. It reports whether a user was created.
func SeedAdmin(database *gorm.DB, cfg config.AdminConfig) (bool, error) {
	if cfg.Email == "" || cfg.Password == "" {
		logger.Info("Admin seed skipped, ADMIN_EMAIL or ADMIN_PASSWORD not set")
		return false, nil
	}

	var existing model.User
	err := database.Where("email = ?", cfg.Email).First(&existing).Error
	if err == nil {
		logger.Info("Admin account already exists, skipping seed", map[string]interface{}{
			"user_id": existing.ID,
			"email":   existing.Email,
		})
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("lookup admin: %w", err)
	}

	hash, err := util.HashPassword(cfg.Password)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	admin := &model.User{
		Name:         cfg.Name,
		Email:        cfg.Email,
		PasswordHash: hash,
		Address:      cfg.Address,
		Role:         model.RoleAdmin,
	}
	if err := database.Create(admin).Error; err != nil {
		logger.Error("Failed to seed admin account", err, map[string]interface{}{
			"email": cfg.Email,
		})
		return false, fmt.Errorf("create admin: %w", err)
	}

	logger.Info("Admin account seeded", map[string]interface{}{
		"user_id": admin.ID,
		"email":   admin.Email,
	})
	return true, nil
}
