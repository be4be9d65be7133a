package service

import (
	"context"
	"testing"

	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_Stats(t *testing.T) {
	deps := setupServiceTest(t)
	dashboard := NewDashboardService(deps.userRepo, deps.storeRepo, deps.ratingRepo)
	ctx := context.Background()

	empty, err := dashboard.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.PlatformStats{}, *empty)

	alice := deps.createUser(t, "alice@example.com", model.RoleUser)
	bob := deps.createUser(t, "bob@example.com", model.RoleUser)
	store := deps.createStore(t, "coffee@example.com", nil)
	for _, u := range []*model.User{alice, bob} {
		_, _, err := deps.ratingRepo.Upsert(ctx, u.ID, store.ID, 3, nil)
		require.NoError(t, err)
	}

	stats, err := dashboard.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.TotalStores)
	assert.Equal(t, int64(2), stats.TotalRatings)
}
