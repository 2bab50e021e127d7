package service

import (
	"context"
	"errors"

	"github.com/vbonduro/stayhaven/internal/domain"
)

// wishlistRepository is the subset of store.WishlistStore that WishlistService requires.
type wishlistRepository interface {
	Add(ctx context.Context, userID, spotID int64) error
	Remove(ctx context.Context, userID, spotID int64) error
	ListSpots(ctx context.Context, userID int64) ([]*domain.SpotSummary, error)
}

type WishlistService struct {
	wishlist wishlistRepository
	spots    spotLookup
}

func NewWishlistService(wishlist wishlistRepository, spots spotLookup) *WishlistService {
	return &WishlistService{wishlist: wishlist, spots: spots}
}

func (s *WishlistService) List(ctx context.Context, userID int64) ([]*domain.SpotSummary, error) {
	return s.wishlist.ListSpots(ctx, userID)
}

func (s *WishlistService) Add(ctx context.Context, userID, spotID int64) error {
	if err := s.requireSpot(ctx, spotID); err != nil {
		return err
	}
	return s.wishlist.Add(ctx, userID, spotID)
}

// Remove takes the spot off the wishlist. Removing a spot that was never
// saved succeeds.
func (s *WishlistService) Remove(ctx context.Context, userID, spotID int64) error {
	if err := s.requireSpot(ctx, spotID); err != nil {
		return err
	}
	if err := s.wishlist.Remove(ctx, userID, spotID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

func (s *WishlistService) requireSpot(ctx context.Context, spotID int64) error {
	spot, err := s.spots.GetByID(ctx, spotID)
	if err != nil {
		return err
	}
	if spot == nil {
		return domain.NotFound("Spot")
	}
	return nil
}
