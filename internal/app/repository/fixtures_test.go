package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

func createUser(t *testing.T, testDB *gorm.DB, name, email string, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: "hashedpassword",
		Address:      "123 Main Street",
		Role:         role,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func createStore(t *testing.T, testDB *gorm.DB, name, address string, ownerID *uint) *model.Store {
	t.Helper()
	store := &model.Store{
		Name:    name,
		Email:   fmt.Sprintf("%s@stores.example.com", sanitize(name)),
		Address: address,
		OwnerID: ownerID,
	}
	require.NoError(t, testDB.Create(store).Error)
	return store
}

func sanitize(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, " ", "-"))
}

func strPtr(s string) *string { return &s }
