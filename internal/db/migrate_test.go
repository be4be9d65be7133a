package db

import (
	"testing"

	"github.com/ikkim/storerating-backend/config"
	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTestDB_CreatesTables(t *testing.T) {
	db, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(db)

	for _, m := range Models() {
		assert.True(t, db.Migrator().HasTable(m))
	}
	assert.True(t, db.Migrator().HasIndex(&model.Rating{}, "idx_ratings_user_store"))
}

func TestRatingConstraints(t *testing.T) {
	db, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(db)

	user := &model.User{Name: "Constraint Test User Name", Email: "c@example.com", PasswordHash: "x", Address: "Addr", Role: model.RoleUser}
	require.NoError(t, db.Create(user).Error)
	store := &model.Store{Name: "Store", Email: "store@example.com", Address: "Addr"}
	require.NoError(t, db.Create(store).Error)

	t.Run("Out of range rating rejected", func(t *testing.T) {
		err := db.Create(&model.Rating{UserID: user.ID, StoreID: store.ID, Rating: 6}).Error
		assert.Error(t, err)
	})

	t.Run("Second row for same pair rejected", func(t *testing.T) {
		require.NoError(t, db.Create(&model.Rating{UserID: user.ID, StoreID: store.ID, Rating: 3}).Error)
		err := db.Create(&model.Rating{UserID: user.ID, StoreID: store.ID, Rating: 4}).Error
		assert.Error(t, err)

		var count int64
		require.NoError(t, db.Model(&model.Rating{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}

func TestSeedAdmin(t *testing.T) {
	db, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(db)

	t.Run("Skipped without credentials", func(t *testing.T) {
		created, err := SeedAdmin(db, config.AdminConfig{})
		require.NoError(t, err)
		assert.False(t, created)
	})

	cfg := config.AdminConfig{
		Name:     "System Administrator Account",
		Email:    "admin@example.com",
		Password: "Admin123!",
		Address:  "Head Office",
	}

	t.Run("Creates admin once", func(t *testing.T) {
		created, err := SeedAdmin(db, cfg)
		require.NoError(t, err)
		assert.True(t, created)

		created, err = SeedAdmin(db, cfg)
		require.NoError(t, err)
		assert.False(t, created)

		var admin model.User
		require.NoError(t, db.Where("email = ?", cfg.Email).First(&admin).Error)
		assert.Equal(t, model.RoleAdmin, admin.Role)
		assert.True(t, util.VerifyPassword(admin.PasswordHash, cfg.Password))

		var count int64
		require.NoError(t, db.Model(&model.User{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}
