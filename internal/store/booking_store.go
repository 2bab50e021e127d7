package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/vbonduro/stayhaven/internal/domain"
)

const bookingColumns = `b.id, b.spot_id, b.user_id, b.start_date, b.end_date, b.created_at, b.updated_at`

type bookingRow struct {
	domain.Booking
	Guest domain.UserRef `db:"guest"`
	Spot  domain.SpotRef `db:"spot"`
}

type BookingStore struct {
	db *sqlx.DB
}

func NewBookingStore(db *sqlx.DB) *BookingStore {
	return &BookingStore{db: db}
}

// Create inserts the booking unless it overlaps an existing booking of the
// same spot. On overlap nothing is written and the colliding bookings are
// returned instead. The check and the insert share one transaction, and the
// connection opens transactions with BEGIN IMMEDIATE, so two concurrent
// requests for the same dates cannot both succeed.
func (s *BookingStore) Create(ctx context.Context, spotID, userID int64, rng domain.DateRange) (*domain.Booking, []*domain.Booking, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	conflicts, err := overlapping(ctx, tx, spotID, rng, 0)
	if err != nil {
		return nil, nil, err
	}
	if len(conflicts) > 0 {
		return nil, conflicts, nil
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO bookings (spot_id, user_id, start_date, end_date) VALUES (?, ?, ?, ?)
	`, spotID, userID, rng.Start, rng.End)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit booking: %w", err)
	}

	booking, err := s.GetByID(ctx, id)
	return booking, nil, err
}

// Reschedule moves the booking to rng under the same overlap rule as Create,
// ignoring the booking's own current dates.
func (s *BookingStore) Reschedule(ctx context.Context, id, spotID int64, rng domain.DateRange) (*domain.Booking, []*domain.Booking, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	conflicts, err := overlapping(ctx, tx, spotID, rng, id)
	if err != nil {
		return nil, nil, err
	}
	if len(conflicts) > 0 {
		return nil, conflicts, nil
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE bookings SET start_date = ?, end_date = ?, updated_at = datetime('now') WHERE id = ?
	`, rng.Start, rng.End, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update booking: %w", err)
	}
	if err := expectOneRow(result, "booking"); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit booking: %w", err)
	}

	booking, err := s.GetByID(ctx, id)
	return booking, nil, err
}

// overlapping returns the spot's bookings whose half-open stay intersects rng,
// skipping excludeID.
func overlapping(ctx context.Context, tx *sqlx.Tx, spotID int64, rng domain.DateRange, excludeID int64) ([]*domain.Booking, error) {
	conflicts := []*domain.Booking{}
	err := tx.SelectContext(ctx, &conflicts, `
		SELECT `+bookingColumns+` FROM bookings b
		WHERE b.spot_id = ? AND b.start_date < ? AND ? < b.end_date AND b.id != ?
		ORDER BY b.start_date ASC
	`, spotID, rng.End, rng.Start, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to check booking conflicts: %w", err)
	}
	return conflicts, nil
}

func (s *BookingStore) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	booking := &domain.Booking{}
	err := s.db.GetContext(ctx, booking, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func (s *BookingStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return expectOneRow(result, "booking")
}

// ListBySpotID returns the spot's bookings in date order with their guests.
func (s *BookingStore) ListBySpotID(ctx context.Context, spotID int64) ([]*domain.BookingDetail, error) {
	var rows []*bookingRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+bookingColumns+`,
			u.id AS "guest.id", u.first_name AS "guest.first_name", u.last_name AS "guest.last_name"
		FROM bookings b
		JOIN users u ON u.id = b.user_id
		WHERE b.spot_id = ?
		ORDER BY b.start_date ASC, b.id ASC
	`, spotID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	out := make([]*domain.BookingDetail, 0, len(rows))
	for _, row := range rows {
		guest := row.Guest
		out = append(out, &domain.BookingDetail{Booking: row.Booking, User: &guest})
	}
	return out, nil
}

// ListByUserID returns the user's bookings in date order with the booked spots.
func (s *BookingStore) ListByUserID(ctx context.Context, userID int64) ([]*domain.BookingDetail, error) {
	var rows []*bookingRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+bookingColumns+`,
			s.id AS "spot.id", s.owner_id AS "spot.owner_id", s.address AS "spot.address",
			s.city AS "spot.city", s.state AS "spot.state", s.country AS "spot.country",
			s.lat AS "spot.lat", s.lng AS "spot.lng", s.name AS "spot.name", s.price AS "spot.price",
			`+previewImageExpr+` AS "spot.preview_image"
		FROM bookings b
		JOIN spots s ON s.id = b.spot_id
		WHERE b.user_id = ?
		ORDER BY b.start_date ASC, b.id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	out := make([]*domain.BookingDetail, 0, len(rows))
	for _, row := range rows {
		spot := row.Spot
		out = append(out, &domain.BookingDetail{Booking: row.Booking, Spot: &spot})
	}
	return out, nil
}
