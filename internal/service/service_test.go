package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/stayhaven/internal/db"
	"github.com/vbonduro/stayhaven/internal/domain"
	"github.com/vbonduro/stayhaven/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// fixedNow is the clock every date rule in these tests runs against.
var fixedNow = time.Date(2030, time.June, 15, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubCache is an in-memory SpotListCache that counts invalidations.
type stubCache struct {
	mu          sync.Mutex
	entries     map[string]any
	invalidated int
	err         error
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string]any)}
}

func (c *stubCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, c.err
	}
	v, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	page, ok := dest.(*SpotPage)
	if !ok {
		return false, errors.New("unexpected cache destination")
	}
	*page = *(v.(*SpotPage))
	return true, nil
}

func (c *stubCache) Set(_ context.Context, key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.entries[key] = value
	return nil
}

func (c *stubCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	c.entries = make(map[string]any)
	return c.err
}

type testEnv struct {
	db       *sqlx.DB
	cache    *stubCache
	users    *UserService
	spots    *SpotService
	reviews  *ReviewService
	bookings *BookingService
	wishlist *WishlistService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	logger := discardLogger()
	c := newStubCache()
	spotStore := store.NewSpotStore(d)
	reviewStore := store.NewReviewStore(d)

	return &testEnv{
		db:       d,
		cache:    c,
		users:    NewUserService(store.NewUserStore(d), c, logger).WithHashCost(bcrypt.MinCost),
		spots:    NewSpotService(spotStore, store.NewSpotImageStore(d), reviewStore, c, logger),
		reviews:  NewReviewService(reviewStore, store.NewReviewImageStore(d), spotStore, c, logger),
		bookings: NewBookingService(store.NewBookingStore(d), spotStore, fixedClock, logger),
		wishlist: NewWishlistService(store.NewWishlistStore(d), spotStore),
	}
}

func (e *testEnv) signUp(t *testing.T, username string) *domain.User {
	t.Helper()
	u, err := e.users.SignUp(context.Background(), SignUpInput{
		FirstName: "Test",
		LastName:  username,
		Email:     username + "@example.com",
		Username:  username,
		Password:  "password",
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) createSpot(t *testing.T, ownerID int64, name string) *domain.Spot {
	t.Helper()
	spot, err := e.spots.CreateSpot(context.Background(), ownerID, validSpotInput(name))
	require.NoError(t, err)
	return spot
}

func validSpotInput(name string) SpotInput {
	price := 125.0
	lat, lng := 37.7645, -122.4730
	return SpotInput{
		Address:     "123 Disney Lane",
		City:        "San Francisco",
		State:       "California",
		Country:     "United States of America",
		Lat:         &lat,
		Lng:         &lng,
		Name:        name,
		Description: "Place where web developers are created",
		Price:       &price,
	}
}

func requireValidation(t *testing.T, err error) *domain.ValidationError {
	t.Helper()
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	return verr
}
