package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/vbonduro/stayhaven/internal/domain"
)

type WishlistStore struct {
	db *sqlx.DB
}

func NewWishlistStore(db *sqlx.DB) *WishlistStore {
	return &WishlistStore{db: db}
}

// Add saves the spot to the user's wishlist. Saving it twice is a no-op.
func (s *WishlistStore) Add(ctx context.Context, userID, spotID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO wishlists (user_id, spot_id) VALUES (?, ?)
	`, userID, spotID)
	if err != nil {
		return fmt.Errorf("failed to add to wishlist: %w", err)
	}
	return nil
}

func (s *WishlistStore) Remove(ctx context.Context, userID, spotID int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM wishlists WHERE user_id = ? AND spot_id = ?
	`, userID, spotID)
	if err != nil {
		return fmt.Errorf("failed to remove from wishlist: %w", err)
	}
	return expectOneRow(result, "wishlist entry")
}

// ListSpots returns the saved spots, most recently saved first.
func (s *WishlistStore) ListSpots(ctx context.Context, userID int64) ([]*domain.SpotSummary, error) {
	spots := []*domain.SpotSummary{}
	err := s.db.SelectContext(ctx, &spots, spotSummarySelect+`
		JOIN wishlists w ON w.spot_id = s.id
		WHERE w.user_id = ?
		ORDER BY w.created_at DESC, s.id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	for _, spot := range spots {
		spot.AvgRating = domain.RoundRating(spot.AvgRating)
	}
	return spots, nil
}
