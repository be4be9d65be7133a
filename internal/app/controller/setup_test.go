package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/internal/app/repository"
	"github.com/ikkim/storerating-backend/internal/app/service"
	"github.com/ikkim/storerating-backend/internal/db"
	"github.com/ikkim/storerating-backend/internal/middleware"
	"github.com/ikkim/storerating-backend/pkg/util"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

type testEnv struct {
	router     *gin.Engine
	tokens     *util.TokenService
	userRepo   repository.UserRepository
	storeRepo  repository.StoreRepository
	ratingRepo repository.RatingRepository
	auth       *middleware.AuthMiddleware
}

func setupControllerTest(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	RegisterValidators()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	tokens := util.NewTokenService(testJWTSecret, time.Hour)
	return &testEnv{
		router:     gin.New(),
		tokens:     tokens,
		userRepo:   repository.NewUserRepository(testDB),
		storeRepo:  repository.NewStoreRepository(testDB),
		ratingRepo: repository.NewRatingRepository(testDB),
		auth:       middleware.NewAuthMiddleware(tokens, nil),
	}
}

func (e *testEnv) authService() service.AuthService {
	return service.NewAuthService(e.userRepo, e.tokens, nil, false)
}

func (e *testEnv) storeService() service.StoreService {
	return service.NewStoreService(e.storeRepo, e.userRepo)
}

func (e *testEnv) createUser(t *testing.T, email string, role model.UserRole) (*model.User, string) {
	t.Helper()
	hash, err := util.HashPassword("Password1!")
	require.NoError(t, err)
	user := &model.User{
		Name:         "Controller Test User Full Name",
		Email:        email,
		PasswordHash: hash,
		Address:      "10 Test Avenue",
		Role:         role,
	}
	require.NoError(t, e.userRepo.Create(context.Background(), user))

	token, err := e.tokens.Issue(user.ID, user.Email, string(user.Role))
	require.NoError(t, err)
	return user, token
}

func (e *testEnv) createStore(t *testing.T, name, email string, ownerID *uint) *model.Store {
	t.Helper()
	store := &model.Store{Name: name, Email: email, Address: "1 Market Street", OwnerID: ownerID}
	require.NoError(t, e.storeRepo.Create(context.Background(), store))
	return store
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func uintPtr(v uint) *uint { return &v }

func strPtr(s string) *string { return &s }

// validName is exactly 20 characters.
const validName = "Alice Wonderland Doe"
