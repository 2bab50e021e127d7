package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/stayhaven/internal/domain"
)

func TestReviewStoreOnePerUserAndSpot(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	s := NewReviewStore(d)
	owner := createUser(t, d, "owner")
	guest := createUser(t, d, "guest")
	spot := createSpot(t, d, owner.ID, "Cabin", 100)

	_, err := s.Create(ctx, guest.ID, spot.ID, "Great", 5)
	require.NoError(t, err)
	_, err = s.Create(ctx, guest.ID, spot.ID, "Again", 4)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	existing, err := s.GetByUserAndSpot(ctx, guest.ID, spot.ID)
	require.NoError(t, err)
	require.NotNil(t, existing)
	assert.Equal(t, "Great", existing.Body)

	none, err := s.GetByUserAndSpot(ctx, owner.ID, spot.ID)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestReviewStoreListings(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	s := NewReviewStore(d)
	owner := createUser(t, d, "owner")
	guest := createUser(t, d, "guest")
	cabin := createSpot(t, d, owner.ID, "Cabin", 100)
	loft := createSpot(t, d, owner.ID, "Loft", 200)

	first, err := s.Create(ctx, guest.ID, cabin.ID, "Cozy", 4)
	require.NoError(t, err)
	second, err := s.Create(ctx, guest.ID, loft.ID, "Bright", 5)
	require.NoError(t, err)

	bySpot, err := s.ListBySpotID(ctx, cabin.ID)
	require.NoError(t, err)
	require.Len(t, bySpot, 1)
	assert.Equal(t, "Cozy", bySpot[0].Body)
	assert.Equal(t, guest.ID, bySpot[0].User.ID)
	assert.Equal(t, "guest", bySpot[0].User.LastName)
	assert.Nil(t, bySpot[0].Spot)

	byUser, err := s.ListByUserID(ctx, guest.ID)
	require.NoError(t, err)
	require.Len(t, byUser, 2)
	// Same created_at second, so ordering falls back to id.
	assert.Equal(t, second.ID, byUser[0].ID)
	assert.Equal(t, first.ID, byUser[1].ID)
	require.NotNil(t, byUser[0].Spot)
	assert.Equal(t, "Loft", byUser[0].Spot.Name)
	assert.Equal(t, domain.NoPreviewImage, byUser[0].Spot.PreviewImage)
}

func TestReviewStoreUpdateAndStats(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	s := NewReviewStore(d)
	owner := createUser(t, d, "owner")
	a := createUser(t, d, "a")
	b := createUser(t, d, "b")
	spot := createSpot(t, d, owner.ID, "Cabin", 100)

	stats, err := s.Stats(ctx, spot.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewStats{}, stats)

	r, err := s.Create(ctx, a.ID, spot.ID, "Fine", 3)
	require.NoError(t, err)
	_, err = s.Create(ctx, b.ID, spot.ID, "Good", 4)
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, r.ID, "Better on second thought", 5))
	got, err := s.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Better on second thought", got.Body)
	assert.Equal(t, 5, got.Stars)

	stats, err = s.Stats(ctx, spot.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Count)
	assert.Equal(t, 4.5, stats.Average)
}

func TestReviewImageStore(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	owner := createUser(t, d, "owner")
	guest := createUser(t, d, "guest")
	spot := createSpot(t, d, owner.ID, "Cabin", 100)
	r1, err := NewReviewStore(d).Create(ctx, guest.ID, spot.ID, "One", 4)
	require.NoError(t, err)
	r2, err := NewReviewStore(d).Create(ctx, owner.ID, spot.ID, "Two", 5)
	require.NoError(t, err)

	images := NewReviewImageStore(d)
	for _, url := range []string{"https://img/1.jpg", "https://img/2.jpg"} {
		_, err := images.Create(ctx, r1.ID, url)
		require.NoError(t, err)
	}
	img3, err := images.Create(ctx, r2.ID, "https://img/3.jpg")
	require.NoError(t, err)

	n, err := images.CountByReviewID(ctx, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	grouped, err := images.ListByReviewIDs(ctx, []int64{r1.ID, r2.ID})
	require.NoError(t, err)
	assert.Len(t, grouped[r1.ID], 2)
	assert.Len(t, grouped[r2.ID], 1)

	empty, err := images.ListByReviewIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, images.Delete(ctx, img3.ID))
	assert.ErrorIs(t, images.Delete(ctx, img3.ID), domain.ErrNotFound)
}
