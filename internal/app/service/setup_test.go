package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/internal/app/repository"
	"github.com/ikkim/storerating-backend/internal/db"
	"github.com/ikkim/storerating-backend/internal/events"
	"github.com/ikkim/storerating-backend/pkg/util"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "test-jwt-secret"

type testDeps struct {
	db         *gorm.DB
	userRepo   repository.UserRepository
	storeRepo  repository.StoreRepository
	ratingRepo repository.RatingRepository
	tokens     *util.TokenService
}

func setupServiceTest(t *testing.T) *testDeps {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	return &testDeps{
		db:         testDB,
		userRepo:   repository.NewUserRepository(testDB),
		storeRepo:  repository.NewStoreRepository(testDB),
		ratingRepo: repository.NewRatingRepository(testDB),
		tokens:     util.NewTokenService(testJWTSecret, time.Hour),
	}
}

func (d *testDeps) createUser(t *testing.T, email string, role model.UserRole) *model.User {
	t.Helper()
	hash, err := util.HashPassword("Password1!")
	require.NoError(t, err)
	user := &model.User{
		Name:         "Service Test User Full Name",
		Email:        email,
		PasswordHash: hash,
		Address:      "123 Main Street",
		Role:         role,
	}
	require.NoError(t, d.userRepo.Create(context.Background(), user))
	return user
}

func (d *testDeps) createStore(t *testing.T, email string, ownerID *uint) *model.Store {
	t.Helper()
	store := &model.Store{Name: "Store " + email, Email: email, Address: "1 Market Street", OwnerID: ownerID}
	require.NoError(t, d.storeRepo.Create(context.Background(), store))
	return store
}

type fakeRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func (f *fakeRevoker) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.revoked == nil {
		f.revoked = map[string]time.Duration{}
	}
	f.revoked[tokenID] = ttl
	return nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []events.RatingEvent
	err    error
}

func (c *capturePublisher) Publish(_ context.Context, event events.RatingEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return c.err
}

func strPtr(s string) *string { return &s }
