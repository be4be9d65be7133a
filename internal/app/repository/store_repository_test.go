package repository

import (
	"context"
	"testing"

	"github.com/ikkim/storerating-backend/internal/app/model"
	apperrors "github.com/ikkim/storerating-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestStoreRepository_CreateAndExists(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewStoreRepository(testDB)
	ctx := context.Background()

	store := &model.Store{Name: "Corner Bakery", Email: "bakery@example.com", Address: "1 Corner St"}
	require.NoError(t, repo.Create(ctx, store))
	assert.NotZero(t, store.ID)

	exists, err := repo.ExistsByEmail(ctx, "bakery@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail(ctx, "other@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	err = repo.Create(ctx, &model.Store{Name: "Copy", Email: "bakery@example.com", Address: "2 Corner St"})
	require.Error(t, err)
	assert.True(t, apperrors.IsDuplicateKey(err))

	found, err := repo.FindByID(ctx, store.ID)
	require.NoError(t, err)
	assert.Equal(t, "Corner Bakery", found.Name)

	_, err = repo.FindByID(ctx, 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestStoreRepository_ListWithStats(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewStoreRepository(testDB)
	ratings := NewRatingRepository(testDB)
	ctx := context.Background()

	owner := createUser(t, testDB, "Bob Builder Store Owner", "bob@shop.com", model.RoleStoreOwner)
	alice := createUser(t, testDB, "Alice Wonderland Example", "alice@example.com", model.RoleUser)
	carol := createUser(t, testDB, "Carol Danvers Example Name", "carol@example.com", model.RoleUser)

	apple := createStore(t, testDB, "Apple Market", "10 Orchard Road", &owner.ID)
	bread := createStore(t, testDB, "Bread House", "20 Baker Street", nil)
	cheese := createStore(t, testDB, "Cheese Corner", "30 Orchard Road", nil)

	_, _, err := ratings.Upsert(ctx, alice.ID, apple.ID, 4, nil)
	require.NoError(t, err)
	_, _, err = ratings.Upsert(ctx, carol.ID, apple.ID, 5, nil)
	require.NoError(t, err)
	_, _, err = ratings.Upsert(ctx, alice.ID, bread.ID, 2, nil)
	require.NoError(t, err)

	t.Run("Aggregates and owner name", func(t *testing.T) {
		stores, err := repo.ListWithStats(ctx, StoreFilter{})
		require.NoError(t, err)
		require.Len(t, stores, 3)

		byID := map[uint]model.StoreWithStats{}
		for _, s := range stores {
			byID[s.ID] = s
		}

		require.NotNil(t, byID[apple.ID].AverageRating)
		assert.InDelta(t, 4.5, *byID[apple.ID].AverageRating, 0.001)
		assert.Equal(t, int64(2), byID[apple.ID].RatingCount)
		require.NotNil(t, byID[apple.ID].OwnerName)
		assert.Equal(t, "Bob Builder Store Owner", *byID[apple.ID].OwnerName)

		assert.Nil(t, byID[cheese.ID].AverageRating)
		assert.Equal(t, int64(0), byID[cheese.ID].RatingCount)
		assert.Nil(t, byID[cheese.ID].OwnerName)
		assert.Nil(t, byID[cheese.ID].UserRating)
	})

	t.Run("Sorting", func(t *testing.T) {
		stores, err := repo.ListWithStats(ctx, StoreFilter{SortBy: "rating_count", Order: "desc"})
		require.NoError(t, err)
		assert.Equal(t, []uint{apple.ID, bread.ID, cheese.ID}, storeIDs(stores))

		stores, err = repo.ListWithStats(ctx, StoreFilter{SortBy: "name", Order: "desc"})
		require.NoError(t, err)
		assert.Equal(t, []uint{cheese.ID, bread.ID, apple.ID}, storeIDs(stores))

		stores, err = repo.ListWithStats(ctx, StoreFilter{SortBy: "bogus"})
		require.NoError(t, err)
		assert.Equal(t, []uint{apple.ID, bread.ID, cheese.ID}, storeIDs(stores))
	})

	t.Run("Filters", func(t *testing.T) {
		stores, err := repo.ListWithStats(ctx, StoreFilter{Address: "Orchard"})
		require.NoError(t, err)
		assert.Equal(t, []uint{apple.ID, cheese.ID}, storeIDs(stores))

		stores, err = repo.ListWithStats(ctx, StoreFilter{Name: "Bread"})
		require.NoError(t, err)
		assert.Equal(t, []uint{bread.ID}, storeIDs(stores))

		stores, err = repo.ListWithStats(ctx, StoreFilter{OwnerID: &owner.ID})
		require.NoError(t, err)
		assert.Equal(t, []uint{apple.ID}, storeIDs(stores))
	})

	t.Run("Viewer rating", func(t *testing.T) {
		stores, err := repo.ListWithStats(ctx, StoreFilter{ViewerID: alice.ID})
		require.NoError(t, err)
		require.Len(t, stores, 3)

		require.NotNil(t, stores[0].UserRating)
		assert.Equal(t, 4, *stores[0].UserRating)
		require.NotNil(t, stores[1].UserRating)
		assert.Equal(t, 2, *stores[1].UserRating)
		assert.Nil(t, stores[2].UserRating)
		// the viewer's join must not change the aggregates
		assert.Equal(t, int64(2), stores[0].RatingCount)
	})

	t.Run("Empty result is an empty slice", func(t *testing.T) {
		stores, err := repo.ListWithStats(ctx, StoreFilter{Name: "does not exist"})
		require.NoError(t, err)
		assert.NotNil(t, stores)
		assert.Empty(t, stores)
	})
}

func TestStoreRepository_FindWithStats(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewStoreRepository(testDB)
	ratings := NewRatingRepository(testDB)
	ctx := context.Background()

	alice := createUser(t, testDB, "Alice Wonderland Example", "alice@example.com", model.RoleUser)
	store := createStore(t, testDB, "Apple Market", "10 Orchard Road", nil)

	_, _, err := ratings.Upsert(ctx, alice.ID, store.ID, 3, nil)
	require.NoError(t, err)

	found, err := repo.FindWithStats(ctx, store.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, store.ID, found.ID)
	assert.Equal(t, int64(1), found.RatingCount)
	assert.Nil(t, found.UserRating)

	found, err = repo.FindWithStats(ctx, store.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, found.UserRating)
	assert.Equal(t, 3, *found.UserRating)

	_, err = repo.FindWithStats(ctx, 9999, 0)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func storeIDs(stores []model.StoreWithStats) []uint {
	ids := make([]uint, 0, len(stores))
	for _, s := range stores {
		ids = append(ids, s.ID)
	}
	return ids
}
