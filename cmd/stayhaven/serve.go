package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vbonduro/stayhaven/internal/auth"
	"github.com/vbonduro/stayhaven/internal/cache"
	"github.com/vbonduro/stayhaven/internal/config"
	"github.com/vbonduro/stayhaven/internal/db"
	"github.com/vbonduro/stayhaven/internal/service"
	"github.com/vbonduro/stayhaven/internal/store"
	"github.com/vbonduro/stayhaven/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	logger := a.logger

	database, err := db.Open(a.cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	listCache, closeCache := newListCache(ctx, a.cfg, logger)
	defer closeCache()

	userStore := store.NewUserStore(database)
	spotStore := store.NewSpotStore(database)
	reviewStore := store.NewReviewStore(database)

	server := web.NewServer(web.Services{
		Users:    service.NewUserService(userStore, listCache, logger),
		Spots:    service.NewSpotService(spotStore, store.NewSpotImageStore(database), reviewStore, listCache, logger),
		Reviews:  service.NewReviewService(reviewStore, store.NewReviewImageStore(database), spotStore, listCache, logger),
		Bookings: service.NewBookingService(store.NewBookingStore(database), spotStore, service.SystemClock, logger),
		Wishlist: service.NewWishlistService(store.NewWishlistStore(database), spotStore),
	}, auth.NewVerifier(a.cfg.JWTSecret), logger)

	return server.Run(ctx, a.cfg.ListenAddr)
}

// newListCache connects to Redis when configured. The listing cache is an
// optimisation, so an unreachable server degrades to no caching.
func newListCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cache.SpotListCache, func()) {
	if !cfg.CacheEnabled() {
		logger.Info("spot listing cache disabled")
		return cache.NopCache{}, func() {}
	}

	rc, err := cache.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.CacheTTL)
	if err != nil {
		logger.Warn("redis unavailable; spot listing cache disabled", "addr", cfg.RedisAddr, "error", err)
		return cache.NopCache{}, func() {}
	}
	logger.Info("using redis spot listing cache", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
	return rc, func() {
		if err := rc.Close(); err != nil {
			logger.Error("failed to close redis client", "error", err)
		}
	}
}
