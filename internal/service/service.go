// Package service holds the business rules of StayHaven: validation,
// ownership checks, booking conflicts and listing cache upkeep. Handlers call
// services; services call stores.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/vbonduro/stayhaven/internal/cache"
	"github.com/vbonduro/stayhaven/internal/domain"
)

// Clock returns the current time. Date rules use its UTC calendar day.
type Clock func() time.Time

func SystemClock() time.Time { return time.Now() }

// requireOwner fails with ErrForbidden unless actorID owns the resource.
func requireOwner(ownerID, actorID int64) error {
	if ownerID != actorID {
		return domain.ErrForbidden
	}
	return nil
}

// invalidateListings drops cached spot listings. A cache failure is logged
// and otherwise ignored: the entries expire on their own.
func invalidateListings(ctx context.Context, c cache.SpotListCache, logger *slog.Logger) {
	if err := c.Invalidate(ctx); err != nil {
		logger.Warn("spot list cache invalidation failed", "error", err)
	}
}
