package service

import (
	"context"
	"errors"

	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/internal/app/repository"
	"github.com/ikkim/storerating-backend/pkg/logger"
	"gorm.io/gorm"
)

// UserService covers admin user management.
type UserService interface {
	CreateUser(ctx context.Context, input RegisterInput) (*model.User, error)
	ListUsers(ctx context.Context, filter repository.UserFilter) ([]model.PublicUser, error)
	GetUserDetail(ctx context.Context, id uint) (*model.UserDetail, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// CreateUser lets an admin create an account with any role.
func (s *userService) CreateUser(ctx context.Context, input RegisterInput) (*model.User, error) {
	if input.Role == "" {
		input.Role = model.RoleUser
	}
	if !input.Role.Valid() {
		return nil, ErrInvalidRole
	}

	user, err := createUser(ctx, s.userRepo, input)
	if err != nil {
		return nil, err
	}

	logger.Info("User created by admin", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
	})
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]model.PublicUser, error) {
	users, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := make([]model.PublicUser, 0, len(users))
	for i := range users {
		result = append(result, users[i].Public())
	}
	return result, nil
}

func (s *userService) GetUserDetail(ctx context.Context, id uint) (*model.UserDetail, error) {
	detail, err := s.userRepo.FindDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return detail, nil
}
