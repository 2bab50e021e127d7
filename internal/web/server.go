package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/vbonduro/stayhaven/internal/auth"
	"github.com/vbonduro/stayhaven/internal/service"
)

// Services are the application services the API is served from.
type Services struct {
	Users    *service.UserService
	Spots    *service.SpotService
	Reviews  *service.ReviewService
	Bookings *service.BookingService
	Wishlist *service.WishlistService
}

type Server struct {
	users    *service.UserService
	spots    *service.SpotService
	reviews  *service.ReviewService
	bookings *service.BookingService
	wishlist *service.WishlistService
	mux      *http.ServeMux
	handler  http.Handler
	logger   *slog.Logger
}

func NewServer(svc Services, verifier *auth.Verifier, logger *slog.Logger) *Server {
	s := &Server{
		users:    svc.Users,
		spots:    svc.Spots,
		reviews:  svc.Reviews,
		bookings: svc.Bookings,
		wishlist: svc.Wishlist,
		mux:      http.NewServeMux(),
		logger:   logger,
	}
	s.registerRoutes()
	s.handler = requestLogger(logger,
		securityHeaders(
			recoverPanic(logger,
				authenticate(verifier, svc.Users, logger, s.mux))))
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "The requested resource couldn't be found.")
	})

	s.mux.HandleFunc("POST /api/users", s.handleSignUp)
	s.mux.HandleFunc("GET /api/users/current", s.requireAuth(s.handleGetCurrentUser))
	s.mux.HandleFunc("PUT /api/users/profile", s.requireAuth(s.handleUpdateProfile))
	s.mux.HandleFunc("PUT /api/users/change-password", s.requireAuth(s.handleChangePassword))
	s.mux.HandleFunc("DELETE /api/users/current", s.requireAuth(s.handleDeleteAccount))

	s.mux.HandleFunc("GET /api/spots", s.handleListSpots)
	s.mux.HandleFunc("GET /api/spots/current", s.requireAuth(s.handleListOwnedSpots))
	s.mux.HandleFunc("GET /api/spots/{spotId}", s.handleGetSpot)
	s.mux.HandleFunc("POST /api/spots", s.requireAuth(s.handleCreateSpot))
	s.mux.HandleFunc("PUT /api/spots/{spotId}", s.requireAuth(s.handleUpdateSpot))
	s.mux.HandleFunc("DELETE /api/spots/{spotId}", s.requireAuth(s.handleDeleteSpot))
	s.mux.HandleFunc("POST /api/spots/{spotId}/images", s.requireAuth(s.handleAddSpotImage))
	s.mux.HandleFunc("GET /api/spots/{spotId}/reviews", s.handleListSpotReviews)
	s.mux.HandleFunc("POST /api/spots/{spotId}/reviews", s.requireAuth(s.handleCreateReview))
	s.mux.HandleFunc("GET /api/spots/{spotId}/bookings", s.requireAuth(s.handleListSpotBookings))
	s.mux.HandleFunc("POST /api/spots/{spotId}/bookings", s.requireAuth(s.handleCreateBooking))

	s.mux.HandleFunc("GET /api/reviews/current", s.requireAuth(s.handleListOwnReviews))
	s.mux.HandleFunc("PUT /api/reviews/{reviewId}", s.requireAuth(s.handleUpdateReview))
	s.mux.HandleFunc("DELETE /api/reviews/{reviewId}", s.requireAuth(s.handleDeleteReview))
	s.mux.HandleFunc("POST /api/reviews/{reviewId}/images", s.requireAuth(s.handleAddReviewImage))

	s.mux.HandleFunc("GET /api/bookings/current", s.requireAuth(s.handleListOwnBookings))
	s.mux.HandleFunc("PUT /api/bookings/{bookingId}", s.requireAuth(s.handleUpdateBooking))
	s.mux.HandleFunc("DELETE /api/bookings/{bookingId}", s.requireAuth(s.handleDeleteBooking))

	s.mux.HandleFunc("DELETE /api/spot-images/{imageId}", s.requireAuth(s.handleDeleteSpotImage))
	s.mux.HandleFunc("DELETE /api/review-images/{imageId}", s.requireAuth(s.handleDeleteReviewImage))

	s.mux.HandleFunc("GET /api/wishlist/current", s.requireAuth(s.handleListWishlist))
	s.mux.HandleFunc("POST /api/wishlist/{spotId}", s.requireAuth(s.handleAddToWishlist))
	s.mux.HandleFunc("DELETE /api/wishlist/{spotId}", s.requireAuth(s.handleRemoveFromWishlist))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// shutdownTimeout bounds how long in-flight requests may run after ctx ends.
const shutdownTimeout = 10 * time.Second

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
