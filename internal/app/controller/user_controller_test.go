package controller

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/internal/app/service"
	apperrors "github.com/ikkim/storerating-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupUserControllerTest(t *testing.T) *testEnv {
	env := setupControllerTest(t)
	ctrl := NewUserController(service.NewUserService(env.userRepo), env.authService())

	users := env.router.Group("/users", env.auth.Authenticate())
	users.PUT("/password", ctrl.ChangePassword)

	admin := users.Group("", env.auth.RequireRole(model.RoleAdmin))
	admin.GET("", ctrl.ListUsers)
	admin.POST("", ctrl.CreateUser)
	admin.GET("/:id", ctrl.GetUser)
	return env
}

func TestUserController_RequiresAdmin(t *testing.T) {
	env := setupUserControllerTest(t)
	_, userToken := env.createUser(t, "alice@example.com", model.RoleUser)
	_, ownerToken := env.createUser(t, "owner@example.com", model.RoleStoreOwner)

	for _, token := range []string{userToken, ownerToken} {
		assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/users", token, nil).Code)
		assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, "/users", token, registerBody("x@example.com")).Code)
	}
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/users", "", nil).Code)
}

func TestUserController_CreateAndList(t *testing.T) {
	env := setupUserControllerTest(t)
	_, adminToken := env.createUser(t, "admin@example.com", model.RoleAdmin)

	body := registerBody("owner@example.com")
	body["role"] = "store_owner"
	w := env.do(t, http.MethodPost, "/users", adminToken, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Message string `json:"message"`
		ID      uint   `json:"id"`
	}
	decode(t, w, &created)
	assert.Equal(t, "User created", created.Message)
	assert.NotZero(t, created.ID)

	w = env.do(t, http.MethodPost, "/users", adminToken, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "User already exists")

	tests := []struct {
		name       string
		query      string
		wantEmails []string
	}{
		{name: "All sorted by email", query: "?sortBy=email", wantEmails: []string{"admin@example.com", "owner@example.com"}},
		{name: "Descending", query: "?sortBy=email&order=desc", wantEmails: []string{"owner@example.com", "admin@example.com"}},
		{name: "Role filter", query: "?role=store_owner", wantEmails: []string{"owner@example.com"}},
		{name: "Email substring", query: "?email=adm", wantEmails: []string{"admin@example.com"}},
		{name: "Injected sort falls back", query: "?sortBy=email;DROP%20TABLE%20users", wantEmails: []string{"admin@example.com", "owner@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, "/users"+tt.query, adminToken, nil)
			require.Equal(t, http.StatusOK, w.Code)

			var users []model.PublicUser
			decode(t, w, &users)
			emails := make([]string, 0, len(users))
			for _, u := range users {
				emails = append(emails, u.Email)
			}
			if tt.name == "Injected sort falls back" {
				assert.ElementsMatch(t, tt.wantEmails, emails)
				return
			}
			assert.Equal(t, tt.wantEmails, emails)
		})
	}
}

func TestUserController_GetUser(t *testing.T) {
	env := setupUserControllerTest(t)
	_, adminToken := env.createUser(t, "admin@example.com", model.RoleAdmin)
	owner, _ := env.createUser(t, "owner@example.com", model.RoleStoreOwner)
	rater, _ := env.createUser(t, "rater@example.com", model.RoleUser)
	store := env.createStore(t, "Corner Coffee", "coffee@example.com", &owner.ID)
	_, _, err := env.ratingRepo.Upsert(context.Background(), rater.ID, store.ID, 4, nil)
	require.NoError(t, err)

	w := env.do(t, http.MethodGet, fmt.Sprintf("/users/%d", owner.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail model.UserDetail
	decode(t, w, &detail)
	assert.Equal(t, owner.Email, detail.Email)
	require.NotNil(t, detail.AverageRating)
	assert.InDelta(t, 4.0, *detail.AverageRating, 0.001)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/users/9999", adminToken, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/users/abc", adminToken, nil).Code)
}

func TestUserController_ChangePassword(t *testing.T) {
	env := setupUserControllerTest(t)
	_, token := env.createUser(t, "alice@example.com", model.RoleUser)

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
		wantError  string
		wantCode   string
	}{
		{
			name:       "Wrong current password",
			body:       map[string]string{"currentPassword": "Nope123!", "newPassword": "weak"},
			wantStatus: http.StatusBadRequest,
			wantError:  "Current password is incorrect",
			wantCode:   apperrors.AuthPasswordIncorrect,
		},
		{
			name:       "Weak new password",
			body:       map[string]string{"currentPassword": "Password1!", "newPassword": "weakpass"},
			wantStatus: http.StatusBadRequest,
			wantError:  "New password must be 8-16 characters with at least one uppercase letter and one special character",
			wantCode:   apperrors.ValidationInvalidInput,
		},
		{
			name:       "Success",
			body:       map[string]string{"currentPassword": "Password1!", "newPassword": "Changed1@"},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPut, "/users/password", token, tt.body)
			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus != http.StatusOK {
				var resp apperrors.ErrorResponse
				decode(t, w, &resp)
				assert.Equal(t, tt.wantError, resp.Error)
				assert.Equal(t, tt.wantCode, resp.Code)
				return
			}
			assert.Contains(t, w.Body.String(), "Password updated successfully")
		})
	}

	_, _, err := env.authService().Login(context.Background(), "alice@example.com", "Changed1@")
	assert.NoError(t, err)
}
