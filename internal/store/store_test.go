package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/stayhaven/internal/db"
	"github.com/vbonduro/stayhaven/internal/domain"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func createUser(t *testing.T, d *sqlx.DB, username string) *domain.User {
	t.Helper()
	u, err := NewUserStore(d).Create(context.Background(), &domain.User{
		FirstName:      "Test",
		LastName:       username,
		Username:       username,
		Email:          username + "@example.com",
		HashedPassword: "hash",
	})
	require.NoError(t, err)
	return u
}

func createSpot(t *testing.T, d *sqlx.DB, ownerID int64, name string, price float64) *domain.Spot {
	t.Helper()
	spot, err := NewSpotStore(d).Create(context.Background(), &domain.Spot{
		OwnerID:     ownerID,
		Address:     fmt.Sprintf("%s Street", name),
		City:        "Springfield",
		State:       "IL",
		Country:     "USA",
		Name:        name,
		Description: "A place to stay",
		Price:       price,
	})
	require.NoError(t, err)
	return spot
}

func floatPtr(f float64) *float64 { return &f }

func dateRange(start, end string) domain.DateRange {
	return domain.DateRange{Start: domain.MustDate(start), End: domain.MustDate(end)}
}
