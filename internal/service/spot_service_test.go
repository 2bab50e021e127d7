package service

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/stayhaven/internal/domain"
)

func TestCreateSpotValidation(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signUp(t, "owner")

	_, err := env.spots.CreateSpot(context.Background(), owner.ID, SpotInput{City: "San Francisco 94"})
	verr := requireValidation(t, err)
	assert.Equal(t, map[string]string{
		"address":     "Street address is required",
		"city":        "City may only contain letters, spaces and underscores",
		"state":       "State is required",
		"country":     "Country is required",
		"name":        "Name must be less than 50 characters",
		"description": "Description is required",
		"price":       "Price per day must be a positive number",
	}, verr.Fields)

	in := validSpotInput("Cabin")
	badLat, badLng := 91.0, -181.0
	in.Lat, in.Lng = &badLat, &badLng
	_, err = env.spots.CreateSpot(context.Background(), owner.ID, in)
	verr = requireValidation(t, err)
	assert.Contains(t, verr.Fields, "lat")
	assert.Contains(t, verr.Fields, "lng")

	in = validSpotInput("This name is certainly far longer than fifty characters")
	_, err = env.spots.CreateSpot(context.Background(), owner.ID, in)
	verr = requireValidation(t, err)
	assert.Contains(t, verr.Fields, "name")
}

func TestCreateSpotWithoutCoordinates(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signUp(t, "owner")

	in := validSpotInput("Cabin")
	in.Lat, in.Lng = nil, nil
	spot, err := env.spots.CreateSpot(context.Background(), owner.ID, in)
	require.NoError(t, err)
	assert.Nil(t, spot.Lat)
	assert.Equal(t, owner.ID, spot.OwnerID)
}

func TestUpdateAndDeleteSpotOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.signUp(t, "owner")
	intruder := env.signUp(t, "intruder")
	spot := env.createSpot(t, owner.ID, "Cabin")

	in := validSpotInput("Renamed Cabin")
	_, err := env.spots.UpdateSpot(ctx, intruder.ID, spot.ID, in)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, env.spots.DeleteSpot(ctx, intruder.ID, spot.ID), domain.ErrForbidden)

	_, err = env.spots.UpdateSpot(ctx, owner.ID, 999, in)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	updated, err := env.spots.UpdateSpot(ctx, owner.ID, spot.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Cabin", updated.Name)

	require.NoError(t, env.spots.DeleteSpot(ctx, owner.ID, spot.ID))
	_, err = env.spots.GetSpot(ctx, spot.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetSpotDetails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.signUp(t, "owner")
	a := env.signUp(t, "guesta")
	b := env.signUp(t, "guestb")
	spot := env.createSpot(t, owner.ID, "Cabin")

	_, err := env.spots.AddImage(ctx, owner.ID, spot.ID, SpotImageInput{URL: "https://img.example.com/1.jpg", Preview: true})
	require.NoError(t, err)
	for user, n := range map[int64]float64{a.ID: 5, b.ID: 2} {
		_, err := env.reviews.CreateReview(ctx, user, spot.ID, ReviewInput{Review: "ok", Stars: stars(n)})
		require.NoError(t, err)
	}

	detail, err := env.spots.GetSpot(ctx, spot.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, detail.NumReviews)
	assert.Equal(t, 3.5, detail.AvgStarRating)
	require.Len(t, detail.SpotImages, 1)
	assert.True(t, detail.SpotImages[0].Preview)
	assert.Equal(t, &domain.UserRef{ID: owner.ID, FirstName: "Test", LastName: "owner"}, detail.Owner)
}

func TestSpotImages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.signUp(t, "owner")
	intruder := env.signUp(t, "intruder")
	spot := env.createSpot(t, owner.ID, "Cabin")

	_, err := env.spots.AddImage(ctx, intruder.ID, spot.ID, SpotImageInput{URL: "https://img.example.com/x.jpg"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = env.spots.AddImage(ctx, owner.ID, spot.ID, SpotImageInput{URL: "not a url"})
	verr := requireValidation(t, err)
	assert.Contains(t, verr.Fields, "url")

	img, err := env.spots.AddImage(ctx, owner.ID, spot.ID, SpotImageInput{URL: "https://img.example.com/x.jpg"})
	require.NoError(t, err)
	assert.False(t, img.Preview)

	assert.ErrorIs(t, env.spots.DeleteImage(ctx, intruder.ID, img.ID), domain.ErrForbidden)
	require.NoError(t, env.spots.DeleteImage(ctx, owner.ID, img.ID))

	err = env.spots.DeleteImage(ctx, owner.ID, img.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.EqualError(t, err, "Spot image couldn't be found")
}

func TestParseSpotFilter(t *testing.T) {
	f, err := ParseSpotFilter(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, domain.SpotFilter{Page: 1, Size: 20}, f)

	f, err = ParseSpotFilter(url.Values{
		"page": {"3"}, "size": {"5"}, "minLat": {"-10.5"}, "maxPrice": {"300"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 5, f.Size)
	require.NotNil(t, f.MinLat)
	assert.Equal(t, -10.5, *f.MinLat)
	require.NotNil(t, f.MaxPrice)
	assert.Nil(t, f.MinPrice)

	_, err = ParseSpotFilter(url.Values{
		"page": {"0"}, "size": {"21"}, "minLat": {"-91"}, "maxLng": {"abc"}, "minPrice": {"-1"},
	})
	verr := requireValidation(t, err)
	assert.Equal(t, map[string]string{
		"page":     "page must be a valid number >= 1",
		"size":     "size must be a valid number >= 1 and <= 20",
		"minLat":   "minLat must be a valid number >= -90 and <= 90",
		"maxLng":   "maxLng must be a valid number >= -180 and <= 180",
		"minPrice": "minPrice must be a valid number >= 0",
	}, verr.Fields)
}

func TestListSpotsUsesCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.signUp(t, "owner")
	env.createSpot(t, owner.ID, "Cabin")

	filter := domain.SpotFilter{Page: 1, Size: 20}
	page, err := env.spots.ListSpots(ctx, filter)
	require.NoError(t, err)
	require.Len(t, page.Spots, 1)
	assert.Len(t, env.cache.entries, 1)

	// A write that bypasses the service is invisible until invalidation.
	_, err = env.db.Exec(`UPDATE spots SET name = 'Sneaky'`)
	require.NoError(t, err)
	page, err = env.spots.ListSpots(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, "Cabin", page.Spots[0].Name)

	before := env.cache.invalidated
	env.createSpot(t, owner.ID, "Loft")
	assert.Equal(t, before+1, env.cache.invalidated)

	page, err = env.spots.ListSpots(ctx, filter)
	require.NoError(t, err)
	require.Len(t, page.Spots, 2)
	assert.Equal(t, "Sneaky", page.Spots[0].Name)
}

func TestListSpotsSurvivesCacheFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.signUp(t, "owner")
	env.createSpot(t, owner.ID, "Cabin")
	env.cache.err = errors.New("redis down")

	page, err := env.spots.ListSpots(ctx, domain.SpotFilter{Page: 1, Size: 20})
	require.NoError(t, err)
	assert.Len(t, page.Spots, 1)

	env.createSpot(t, owner.ID, "Loft")
}

func TestListingKeyDistinguishesFilters(t *testing.T) {
	price := 100.0
	a := listingKey(domain.SpotFilter{Page: 1, Size: 20})
	b := listingKey(domain.SpotFilter{Page: 1, Size: 20, MinPrice: &price})
	c := listingKey(domain.SpotFilter{Page: 1, Size: 20, MaxPrice: &price})
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, b, c)
	assert.Equal(t, a, listingKey(domain.SpotFilter{Page: 1, Size: 20}))
}
