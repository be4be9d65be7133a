package controller

import (
	"context"
	"net/http"
	"testing"

	"github.com/ikkim/storerating-backend/internal/app/model"
	apperrors "github.com/ikkim/storerating-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthControllerTest(t *testing.T) *testEnv {
	env := setupControllerTest(t)
	ctrl := NewAuthController(env.authService())

	env.router.POST("/register", ctrl.Register)
	env.router.POST("/login", ctrl.Login)
	env.router.GET("/verify", env.auth.Authenticate(), ctrl.Verify)
	env.router.POST("/logout", env.auth.Authenticate(), ctrl.Logout)
	return env
}

type authResponse struct {
	Message string           `json:"message"`
	Token   string           `json:"token"`
	User    model.PublicUser `json:"user"`
}

func registerBody(email string) map[string]interface{} {
	return map[string]interface{}{
		"name":     validName,
		"email":    email,
		"password": "Secret1!",
		"address":  "1 Rabbit Hole Lane",
	}
}

func TestAuthController_Register_Success(t *testing.T) {
	env := setupAuthControllerTest(t)

	w := env.do(t, http.MethodPost, "/register", "", registerBody("alice@example.com"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp authResponse
	decode(t, w, &resp)
	assert.Equal(t, "User created", resp.Message)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.Equal(t, model.RoleUser, resp.User.Role)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestAuthController_Register_Validation(t *testing.T) {
	env := setupAuthControllerTest(t)

	tests := []struct {
		name         string
		mutate       func(map[string]interface{})
		wantMessages []string
	}{
		{
			name:         "Name too short",
			mutate:       func(b map[string]interface{}) { b["name"] = "Alice" },
			wantMessages: []string{"Name must be between 20 and 60 characters"},
		},
		{
			name:         "Invalid email",
			mutate:       func(b map[string]interface{}) { b["email"] = "not-an-email" },
			wantMessages: []string{"Valid email is required"},
		},
		{
			name:         "Weak password",
			mutate:       func(b map[string]interface{}) { b["password"] = "secret" },
			wantMessages: []string{"Password must be 8-16 characters with at least one uppercase letter and one special character"},
		},
		{
			name: "Several failures",
			mutate: func(b map[string]interface{}) {
				b["name"] = ""
				b["address"] = ""
			},
			wantMessages: []string{"Name must be between 20 and 60 characters", "Address is required and must be less than 400 characters"},
		},
		{
			name:         "Unknown role",
			mutate:       func(b map[string]interface{}) { b["role"] = "root" },
			wantMessages: []string{"Role must be one of user, admin, store_owner"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := registerBody("valid@example.com")
			tt.mutate(body)

			w := env.do(t, http.MethodPost, "/register", "", body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			var resp apperrors.ValidationErrorResponse
			decode(t, w, &resp)
			assert.Equal(t, apperrors.ValidationInvalidInput, resp.Code)
			assert.ElementsMatch(t, tt.wantMessages, resp.Errors)
		})
	}

	count, err := env.userRepo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAuthController_Register_Duplicate(t *testing.T) {
	env := setupAuthControllerTest(t)

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/register", "", registerBody("alice@example.com")).Code)

	w := env.do(t, http.MethodPost, "/register", "", registerBody("alice@example.com"))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp apperrors.ErrorResponse
	decode(t, w, &resp)
	assert.Equal(t, "User already exists", resp.Error)
	assert.Equal(t, apperrors.AuthEmailAlreadyExists, resp.Code)

	count, err := env.userRepo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAuthController_Register_AdminRejected(t *testing.T) {
	env := setupAuthControllerTest(t)

	body := registerBody("admin@example.com")
	body["role"] = "admin"
	w := env.do(t, http.MethodPost, "/register", "", body)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp apperrors.ErrorResponse
	decode(t, w, &resp)
	assert.Equal(t, apperrors.AuthRoleNotAllowed, resp.Code)
}

func TestAuthController_Login(t *testing.T) {
	env := setupAuthControllerTest(t)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/register", "", registerBody("alice@example.com")).Code)

	tests := []struct {
		name       string
		email      string
		password   string
		wantStatus int
	}{
		{name: "Valid", email: "alice@example.com", password: "Secret1!", wantStatus: http.StatusOK},
		{name: "Wrong password", email: "alice@example.com", password: "Wrong1!x", wantStatus: http.StatusBadRequest},
		{name: "Unknown email", email: "nobody@example.com", password: "Secret1!", wantStatus: http.StatusBadRequest},
		{name: "Malformed email", email: "bob", password: "Secret1!", wantStatus: http.StatusBadRequest},
	}

	var bodies []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/login", "", map[string]string{"email": tt.email, "password": tt.password})
			require.Equal(t, tt.wantStatus, w.Code)

			if tt.wantStatus == http.StatusOK {
				var resp authResponse
				decode(t, w, &resp)
				assert.Equal(t, "Login successful", resp.Message)
				assert.NotEmpty(t, resp.Token)
				return
			}
			bodies = append(bodies, w.Body.String())
		})
	}

	require.Len(t, bodies, 3)
	for _, body := range bodies[1:] {
		assert.Equal(t, bodies[0], body, "login failures must be indistinguishable")
	}
	assert.Contains(t, bodies[0], "Invalid credentials")
}

func TestAuthController_RegisterLoginVerifyRoundTrip(t *testing.T) {
	env := setupAuthControllerTest(t)

	body := registerBody("owner@example.com")
	body["role"] = "store_owner"
	w := env.do(t, http.MethodPost, "/register", "", body)
	require.Equal(t, http.StatusCreated, w.Code)
	var registered authResponse
	decode(t, w, &registered)

	w = env.do(t, http.MethodPost, "/login", "", map[string]string{"email": "owner@example.com", "password": "Secret1!"})
	require.Equal(t, http.StatusOK, w.Code)
	var loggedIn authResponse
	decode(t, w, &loggedIn)

	w = env.do(t, http.MethodGet, "/verify", loggedIn.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var verified struct {
		User model.PublicUser `json:"user"`
	}
	decode(t, w, &verified)

	assert.Equal(t, registered.User.ID, verified.User.ID)
	assert.Equal(t, registered.User.Email, verified.User.Email)
	assert.Equal(t, model.RoleStoreOwner, verified.User.Role)
}

func TestAuthController_Verify_Errors(t *testing.T) {
	env := setupAuthControllerTest(t)

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/verify", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/verify", "garbage", nil).Code)

	ghost, err := env.tokens.Issue(4242, "ghost@example.com", "user")
	require.NoError(t, err)
	w := env.do(t, http.MethodGet, "/verify", ghost, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "User not found")
}

func TestAuthController_Logout(t *testing.T) {
	env := setupAuthControllerTest(t)
	_, token := env.createUser(t, "alice@example.com", model.RoleUser)

	w := env.do(t, http.MethodPost, "/logout", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Logged out")

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/logout", "", nil).Code)
}
