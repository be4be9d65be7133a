package service

import (
	"context"
	"errors"

	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/internal/app/repository"
	apperrors "github.com/ikkim/storerating-backend/internal/errors"
	"github.com/ikkim/storerating-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrStoreNotFound      = errors.New("store not found")
	ErrStoreAlreadyExists = errors.New("store already exists")
	ErrOwnerNotFound      = errors.New("owner not found")
	ErrOwnerNotStoreOwner = errors.New("owner must have the store_owner role")
	ErrNotStoreOwner      = errors.New("access denied")
)

type CreateStoreInput struct {
	Name    string
	Email   string
	Address string
	OwnerID *uint
}

type StoreService interface {
	CreateStore(ctx context.Context, input CreateStoreInput) (*model.Store, error)
	ListStores(ctx context.Context, filter repository.StoreFilter) ([]model.StoreWithStats, error)
	ListOwnerStores(ctx context.Context, ownerID uint, filter repository.StoreFilter) ([]model.StoreWithStats, error)
	GetStore(ctx context.Context, id uint, viewerID uint) (*model.StoreWithStats, error)
	// EnsureOwner returns ErrStoreNotFound or ErrNotStoreOwner unless userID owns storeID.
	EnsureOwner(ctx context.Context, storeID, userID uint) error
}

type storeService struct {
	storeRepo repository.StoreRepository
	userRepo  repository.UserRepository
}

func NewStoreService(storeRepo repository.StoreRepository, userRepo repository.UserRepository) StoreService {
	return &storeService{
		storeRepo: storeRepo,
		userRepo:  userRepo,
	}
}

func (s *storeService) CreateStore(ctx context.Context, input CreateStoreInput) (*model.Store, error) {
	logger.Info("Creating store", map[string]interface{}{
		"name":     input.Name,
		"email":    input.Email,
		"owner_id": input.OwnerID,
	})

	exists, err := s.storeRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		logger.Warn("Store creation failed: email already exists", map[string]interface{}{
			"email": input.Email,
		})
		return nil, ErrStoreAlreadyExists
	}

	if input.OwnerID != nil {
		owner, err := s.userRepo.FindByID(ctx, *input.OwnerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrOwnerNotFound
			}
			return nil, err
		}
		if owner.Role != model.RoleStoreOwner {
			logger.Warn("Store creation failed: owner is not a store owner", map[string]interface{}{
				"owner_id": owner.ID,
				"role":     owner.Role,
			})
			return nil, ErrOwnerNotStoreOwner
		}
	}

	store := &model.Store{
		Name:    input.Name,
		Email:   input.Email,
		Address: input.Address,
		OwnerID: input.OwnerID,
	}
	if err := s.storeRepo.Create(ctx, store); err != nil {
		if apperrors.IsDuplicateKey(err) {
			return nil, ErrStoreAlreadyExists
		}
		return nil, err
	}

	logger.Info("Store created", map[string]interface{}{
		"store_id": store.ID,
		"name":     store.Name,
	})
	return store, nil
}

func (s *storeService) ListStores(ctx context.Context, filter repository.StoreFilter) ([]model.StoreWithStats, error) {
	return s.storeRepo.ListWithStats(ctx, filter)
}

func (s *storeService) ListOwnerStores(ctx context.Context, ownerID uint, filter repository.StoreFilter) ([]model.StoreWithStats, error) {
	filter.OwnerID = &ownerID
	return s.storeRepo.ListWithStats(ctx, filter)
}

func (s *storeService) GetStore(ctx context.Context, id uint, viewerID uint) (*model.StoreWithStats, error) {
	store, err := s.storeRepo.FindWithStats(ctx, id, viewerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return store, nil
}

func (s *storeService) EnsureOwner(ctx context.Context, storeID, userID uint) error {
	store, err := s.storeRepo.FindByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStoreNotFound
		}
		return err
	}
	if store.OwnerID == nil || *store.OwnerID != userID {
		logger.Warn("Store access denied", map[string]interface{}{
			"store_id": storeID,
			"user_id":  userID,
		})
		return ErrNotStoreOwner
	}
	return nil
}
