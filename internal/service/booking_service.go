package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/vbonduro/stayhaven/internal/domain"
)

const bookingConflictMessage = "Sorry, this spot is already booked for the specified dates"

// bookingRepository is the subset of store.BookingStore that BookingService requires.
type bookingRepository interface {
	Create(ctx context.Context, spotID, userID int64, rng domain.DateRange) (*domain.Booking, []*domain.Booking, error)
	Reschedule(ctx context.Context, id, spotID int64, rng domain.DateRange) (*domain.Booking, []*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	Delete(ctx context.Context, id int64) error
	ListBySpotID(ctx context.Context, spotID int64) ([]*domain.BookingDetail, error)
	ListByUserID(ctx context.Context, userID int64) ([]*domain.BookingDetail, error)
}

type BookingService struct {
	bookings bookingRepository
	spots    spotLookup
	now      Clock
	logger   *slog.Logger
}

func NewBookingService(bookings bookingRepository, spots spotLookup, now Clock, logger *slog.Logger) *BookingService {
	return &BookingService{bookings: bookings, spots: spots, now: now, logger: logger}
}

// BookingInput carries requested dates as sent by the client.
type BookingInput struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// parse validates the requested stay against today and returns it as a range.
func (in *BookingInput) parse(today domain.Date) (domain.DateRange, error) {
	var (
		v   domain.Validation
		rng domain.DateRange
	)
	readDate := func(field, raw, label string, dst *domain.Date) bool {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			v.Add(field, label+" is required")
			return false
		}
		d, err := domain.ParseDate(raw)
		if err != nil {
			v.Add(field, label+" must be a date in YYYY-MM-DD format")
			return false
		}
		*dst = d
		return true
	}
	startOK := readDate("startDate", in.StartDate, "Start date", &rng.Start)
	endOK := readDate("endDate", in.EndDate, "End date", &rng.End)

	if startOK && rng.Start.Before(today) {
		v.Add("startDate", "Start date cannot be in the past")
	}
	if startOK && endOK && !rng.Valid() {
		v.Add("endDate", "End date cannot be on or before start date")
	}
	return rng, v.Err()
}

// SpotBookings is a spot's booking calendar as seen by one user. The owner
// gets full bookings with guests; everyone else only the occupied dates.
type SpotBookings struct {
	IsOwner bool
	Full    []*domain.BookingDetail
	Public  []domain.PublicBooking
}

func (s *BookingService) ListForUser(ctx context.Context, userID int64) ([]*domain.BookingDetail, error) {
	return s.bookings.ListByUserID(ctx, userID)
}

func (s *BookingService) ListForSpot(ctx context.Context, actorID, spotID int64) (*SpotBookings, error) {
	spot, err := s.findSpot(ctx, spotID)
	if err != nil {
		return nil, err
	}

	bookings, err := s.bookings.ListBySpotID(ctx, spotID)
	if err != nil {
		return nil, err
	}
	if spot.OwnerID == actorID {
		return &SpotBookings{IsOwner: true, Full: bookings}, nil
	}

	public := make([]domain.PublicBooking, 0, len(bookings))
	for _, b := range bookings {
		public = append(public, domain.PublicBooking{SpotID: b.SpotID, StartDate: b.StartDate, EndDate: b.EndDate})
	}
	return &SpotBookings{Public: public}, nil
}

// CreateBooking books the spot for the user. Requests that overlap an
// existing stay fail with a ConflictError naming the colliding dates.
func (s *BookingService) CreateBooking(ctx context.Context, userID, spotID int64, in BookingInput) (*domain.Booking, error) {
	spot, err := s.findSpot(ctx, spotID)
	if err != nil {
		return nil, err
	}
	if spot.OwnerID == userID {
		return nil, &domain.RuleError{Message: "Cannot book your own spot"}
	}

	rng, err := in.parse(s.today())
	if err != nil {
		return nil, err
	}

	booking, conflicts, err := s.bookings.Create(ctx, spotID, userID, rng)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		s.logger.Info("booking rejected", "spot_id", spotID, "user_id", userID,
			"start_date", rng.Start.String(), "end_date", rng.End.String(), "conflicts", len(conflicts))
		return nil, conflictError(rng, conflicts)
	}

	s.logger.Info("booking created", "booking_id", booking.ID, "spot_id", spotID, "user_id", userID)
	return booking, nil
}

func (s *BookingService) UpdateBooking(ctx context.Context, actorID, bookingID int64, in BookingInput) (*domain.Booking, error) {
	booking, err := s.findOwnedBooking(ctx, actorID, bookingID)
	if err != nil {
		return nil, err
	}

	today := s.today()
	if booking.EndDate.Before(today) {
		return nil, &domain.RuleError{Message: "Past bookings can't be modified"}
	}
	if booking.StartDate.Before(today) {
		return nil, &domain.RuleError{Message: "Bookings that have been started can't be modified"}
	}

	rng, err := in.parse(today)
	if err != nil {
		return nil, err
	}

	updated, conflicts, err := s.bookings.Reschedule(ctx, booking.ID, booking.SpotID, rng)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, conflictError(rng, conflicts)
	}
	return updated, nil
}

func (s *BookingService) DeleteBooking(ctx context.Context, actorID, bookingID int64) error {
	booking, err := s.findOwnedBooking(ctx, actorID, bookingID)
	if err != nil {
		return err
	}
	if booking.StartDate.Before(s.today()) {
		return &domain.RuleError{Message: "Bookings that have been started can't be deleted"}
	}
	return s.bookings.Delete(ctx, booking.ID)
}

// conflictError names the requested dates that fall inside existing stays.
func conflictError(rng domain.DateRange, conflicts []*domain.Booking) error {
	fields := make(map[string]string, 2)
	for _, existing := range conflicts {
		start, end := rng.Collisions(existing.Range())
		if start {
			fields["startDate"] = "Start date conflicts with an existing booking"
		}
		if end {
			fields["endDate"] = "End date conflicts with an existing booking"
		}
	}
	return &domain.ConflictError{Message: bookingConflictMessage, Fields: fields}
}

func (s *BookingService) today() domain.Date {
	return domain.DateOf(s.now())
}

func (s *BookingService) findSpot(ctx context.Context, spotID int64) (*domain.Spot, error) {
	spot, err := s.spots.GetByID(ctx, spotID)
	if err != nil {
		return nil, err
	}
	if spot == nil {
		return nil, domain.NotFound("Spot")
	}
	return spot, nil
}

func (s *BookingService) findOwnedBooking(ctx context.Context, actorID, bookingID int64) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, domain.NotFound("Booking")
	}
	if err := requireOwner(booking.UserID, actorID); err != nil {
		return nil, err
	}
	return booking, nil
}
