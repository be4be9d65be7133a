package service

import (
	"context"
	"errors"
	"time"

	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/internal/app/repository"
	apperrors "github.com/ikkim/storerating-backend/internal/errors"
	"github.com/ikkim/storerating-backend/pkg/logger"
	"github.com/ikkim/storerating-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidRole         = errors.New("invalid role")
	ErrAdminSignupDisabled = errors.New("admin accounts cannot be self-registered")
	ErrIncorrectPassword   = errors.New("current password is incorrect")
	ErrWeakPassword        = errors.New("password does not meet the policy")
)

// TokenRevoker remembers logged out tokens until they expire.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

// RegisterInput carries the fields accepted by public registration and admin user creation.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Address  string
	Role     model.UserRole
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
	ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error
	Logout(ctx context.Context, claims *util.Claims) error
}

type authService struct {
	userRepo         repository.UserRepository
	tokens           *util.TokenService
	revoker          TokenRevoker
	allowAdminSignup bool
}

// NewAuthService builds the auth service. revoker may be nil, in which case
// logout does not invalidate tokens server side.
func NewAuthService(
	userRepo repository.UserRepository,
	tokens *util.TokenService,
	revoker TokenRevoker,
	allowAdminSignup bool,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		tokens:           tokens,
		revoker:          revoker,
		allowAdminSignup: allowAdminSignup,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*model.User, string, error) {
	logger.Info("Attempting user registration", map[string]interface{}{
		"email": input.Email,
		"role":  input.Role,
	})

	if input.Role == "" {
		input.Role = model.RoleUser
	}
	if !input.Role.Valid() {
		return nil, "", ErrInvalidRole
	}
	if input.Role == model.RoleAdmin && !s.allowAdminSignup {
		logger.Warn("Registration rejected: admin self-signup disabled", map[string]interface{}{
			"email": input.Email,
		})
		return nil, "", ErrAdminSignupDisabled
	}

	user, err := createUser(ctx, s.userRepo, input)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID, user.Email, string(user.Role))
	if err != nil {
		logger.Error("Failed to generate token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, "", err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
	})
	return user, token, nil
}

// createUser is shared by registration and admin user creation.
func createUser(ctx context.Context, userRepo repository.UserRepository, input RegisterInput) (*model.User, error) {
	existingUser, err := userRepo.FindByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing user", err, map[string]interface{}{
			"email": input.Email,
		})
		return nil, err
	}
	if existingUser != nil {
		logger.Warn("User creation failed: email already exists", map[string]interface{}{
			"email": input.Email,
		})
		return nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := util.HashPassword(input.Password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": input.Email,
		})
		return nil, err
	}

	user := &model.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Address:      input.Address,
		Role:         input.Role,
	}
	if err := userRepo.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if apperrors.IsDuplicateKey(err) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, "", ErrInvalidCredentials
		}
		logger.Error("Failed to find user", err, map[string]interface{}{
			"email": email,
		})
		return nil, "", err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"email":   email,
			"user_id": user.ID,
		})
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email, string(user.Role))
	if err != nil {
		logger.Error("Failed to generate token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, "", err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
		"role":    user.Role,
	})
	return user, token, nil
}

func (s *authService) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("User not found", map[string]interface{}{
				"user_id": id,
			})
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to fetch user", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}
	return user, nil
}

// ChangePassword checks the current password before the policy, so a wrong
// current password is reported even when the new one is also invalid.
func (s *authService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if !util.VerifyPassword(user.PasswordHash, currentPassword) {
		logger.Warn("Password change failed: current password mismatch", map[string]interface{}{
			"user_id": userID,
		})
		return ErrIncorrectPassword
	}
	if !util.ValidPassword(newPassword) {
		return ErrWeakPassword
	}

	hashedPassword, err := util.HashPassword(newPassword)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	logger.Info("Password updated", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}

func (s *authService) Logout(ctx context.Context, claims *util.Claims) error {
	if s.revoker == nil {
		logger.Info("Token revocation disabled, logout is client side only", map[string]interface{}{
			"user_id": claims.UserID,
		})
		return nil
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
		logger.Error("Failed to revoke token", err, map[string]interface{}{
			"user_id": claims.UserID,
		})
		return err
	}

	logger.Info("User logged out", map[string]interface{}{
		"user_id": claims.UserID,
	})
	return nil
}
