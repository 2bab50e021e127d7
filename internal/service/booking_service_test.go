package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/stayhaven/internal/domain"
)

// Today for these tests is 2030-06-15 (fixedNow).

func TestCreateBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.signUp(t, "owner")
	guest := env.signUp(t, "guest")
	spot := env.createSpot(t, owner.ID, "Cabin")

	b, err := env.bookings.CreateBooking(ctx, guest.ID, spot.ID, BookingInput{StartDate: "2030-07-01", EndDate: "2030-07-07"})
	require.NoError(t, err)
	assert.Equal(t, spot.ID, b.SpotID)
	assert.Equal(t, guest.ID, b.UserID)
	assert.Equal(t, "2030-07-07", b.EndDate.String())
}

func TestCreateBookingStartingToday(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signUp(t, "owner")
	guest := env.signUp(t, "guest")
	spot := env.createSpot(t, owner.ID, "Cabin")

	_, err := env.bookings.CreateBooking(context.Background(), guest.ID, spot.ID, BookingInput{StartDate: "2030-06-15", EndDate: "2030-06-16"})
	assert.NoError(t, err)
}

func TestCreateBookingValidation(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signUp(t, "owner")
	guest := env.signUp(t, "guest")
	spot := env.createSpot(t, owner.ID, "Cabin")

	cases := []struct {
		name   string
		in     BookingInput
		fields map[string]string
	}{
		{
			name: "missing dates",
			in:   BookingInput{},
			fields: map[string]string{
				"startDate": "Start date is required",
				"endDate":   "End date is required",
			},
		},
		{
			name:   "malformed start",
			in:     BookingInput{StartDate: "07/01/2030", EndDate: "2030-07-05"},
			fields: map[string]string{"startDate": "Start date must be a date in YYYY-MM-DD format"},
		},
		{
			name:   "start in the past",
			in:     BookingInput{StartDate: "2030-06-14", EndDate: "2030-06-20"},
			fields: map[string]string{"startDate": "Start date cannot be in the past"},
		},
		{
			name:   "end equals start",
			in:     BookingInput{StartDate: "2030-07-01", EndDate: "2030-07-01"},
			fields: map[string]string{"endDate": "End date cannot be on or before start date"},
		},
		{
			name:   "end before start",
			in:     BookingInput{StartDate: "2030-07-05", EndDate: "2030-07-01"},
			fields: map[string]string{"endDate": "End date cannot be on or before start date"},
		},
		{
			name: "past and inverted",
			in:   BookingInput{StartDate: "2030-06-10", EndDate: "2030-06-01"},
			fields: map[string]string{
				"startDate": "Start date cannot be in the past",
				"endDate":   "End date cannot be on or before start date",
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.bookings.CreateBooking(context.Background(), guest.ID, spot.ID, tc.in)
			verr := requireValidation(t, err)
			assert.Equal(t, "Bad Request", verr.Message)
			assert.Equal(t, tc.fields, verr.Fields)
		})
	}
}

func TestCreateBookingOwnSpot(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signUp(t, "owner")
	spot := env.createSpot(t, owner.ID, "Cabin")

	_, err := env.bookings.CreateBooking(context.Background(), owner.ID, spot.ID, BookingInput{StartDate: "2030-07-01", EndDate: "2030-07-02"})
	var rerr *domain.RuleError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "Cannot book your own spot", rerr.Message)
}

func TestCreateBookingMissingSpot(t *testing.T) {
	env := newTestEnv(t)
	guest := env.signUp(t, "guest")

	_, err := env.bookings.CreateBooking(context.Background(), guest.ID, 404, BookingInput{StartDate: "2030-07-01", EndDate: "2030-07-02"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.EqualError(t, err, "Spot couldn't be found")
}

func TestCreateBookingConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.signUp(t, "owner")
	guest := env.signUp(t, "guest")
	other := env.signUp(t, "other")
	spot := env.createSpot(t, owner.ID, "Cabin")

	_, err := env.bookings.CreateBooking(ctx, guest.ID, spot.ID, BookingInput{StartDate: "2030-07-01", EndDate: "2030-07-07"})
	require.NoError(t, err)

	startConflict := map[string]string{"startDate": "Start date conflicts with an existing booking"}
	endConflict := map[string]string{"endDate": "End date conflicts with an existing booking"}
	bothConflict := map[string]string{
		"startDate": "Start date conflicts with an existing booking",
		"endDate":   "End date conflicts with an existing booking",
	}

	cases := []struct {
		name   string
		in     BookingInput
		fields map[string]string
	}{
		{"start inside", BookingInput{StartDate: "2030-07-05", EndDate: "2030-07-10"}, startConflict},
		{"end inside", BookingInput{StartDate: "2030-06-28", EndDate: "2030-07-03"}, endConflict},
		{"within", BookingInput{StartDate: "2030-07-02", EndDate: "2030-07-04"}, bothConflict},
		{"encloses", BookingInput{StartDate: "2030-06-30", EndDate: "2030-07-09"}, bothConflict},
		{"identical", BookingInput{StartDate: "2030-07-01", EndDate: "2030-07-07"}, bothConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.bookings.CreateBooking(ctx, other.ID, spot.ID, tc.in)
			var cerr *domain.ConflictError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, "Sorry, this spot is already booked for the specified dates", cerr.Message)
			assert.Equal(t, tc.fields, cerr.Fields)
		})
	}

	// Back-to-back stays share a changeover day.
	_, err = env.bookings.CreateBooking(ctx, other.ID, spot.ID, BookingInput{StartDate: "2030-07-07", EndDate: "2030-07-10"})
	assert.NoError(t, err)
	_, err = env.bookings.CreateBooking(ctx, other.ID, spot.ID, BookingInput{StartDate: "2030-06-25", EndDate: "2030-07-01"})
	assert.NoError(t, err)
}

func TestUpdateBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.signUp(t, "owner")
	guest := env.signUp(t, "guest")
	spot := env.createSpot(t, owner.ID, "Cabin")

	b, err := env.bookings.CreateBooking(ctx, guest.ID, spot.ID, BookingInput{StartDate: "2030-07-01", EndDate: "2030-07-05"})
	require.NoError(t, err)
	_, err = env.bookings.CreateBooking(ctx, guest.ID, spot.ID, BookingInput{StartDate: "2030-07-10", EndDate: "2030-07-12"})
	require.NoError(t, err)

	// Moving within its own current dates is not a conflict with itself.
	moved, err := env.bookings.UpdateBooking(ctx, guest.ID, b.ID, BookingInput{StartDate: "2030-07-02", EndDate: "2030-07-06"})
	require.NoError(t, err)
	assert.Equal(t, "2030-07-02", moved.StartDate.String())

	_, err = env.bookings.UpdateBooking(ctx, guest.ID, b.ID, BookingInput{StartDate: "2030-07-08", EndDate: "2030-07-11"})
	var cerr *domain.ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, map[string]string{"endDate": "End date conflicts with an existing booking"}, cerr.Fields)

	_, err = env.bookings.UpdateBooking(ctx, owner.ID, b.ID, BookingInput{StartDate: "2030-08-01", EndDate: "2030-08-02"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = env.bookings.UpdateBooking(ctx, guest.ID, 999, BookingInput{StartDate: "2030-08-01", EndDate: "2030-08-02"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.bookings.UpdateBooking(ctx, guest.ID, b.ID, BookingInput{StartDate: "2030-08-05", EndDate: "2030-08-01"})
	requireValidation(t, err)
}

// insertBooking writes a booking directly, bypassing the start date rule.
func insertBooking(t *testing.T, env *testEnv, spotID, userID int64, start, end string) int64 {
	t.Helper()
	result, err := env.db.Exec(`INSERT INTO bookings (spot_id, user_id, start_date, end_date) VALUES (?, ?, ?, ?)`,
		spotID, userID, start, end)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return id
}

func TestUpdateBookingTimeRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.signUp(t, "owner")
	guest := env.signUp(t, "guest")
	spot := env.createSpot(t, owner.ID, "Cabin")

	past := insertBooking(t, env, spot.ID, guest.ID, "2030-06-01", "2030-06-05")
	started := insertBooking(t, env, spot.ID, guest.ID, "2030-06-14", "2030-06-18")
	in := BookingInput{StartDate: "2030-09-01", EndDate: "2030-09-03"}

	_, err := env.bookings.UpdateBooking(ctx, guest.ID, past, in)
	var rerr *domain.RuleError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "Past bookings can't be modified", rerr.Message)

	_, err = env.bookings.UpdateBooking(ctx, guest.ID, started, in)
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "Bookings that have been started can't be modified", rerr.Message)
}

func TestDeleteBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.signUp(t, "owner")
	guest := env.signUp(t, "guest")
	spot := env.createSpot(t, owner.ID, "Cabin")

	started := insertBooking(t, env, spot.ID, guest.ID, "2030-06-14", "2030-06-18")
	err := env.bookings.DeleteBooking(ctx, guest.ID, started)
	var rerr *domain.RuleError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "Bookings that have been started can't be deleted", rerr.Message)

	upcoming := insertBooking(t, env, spot.ID, guest.ID, "2030-06-20", "2030-06-22")
	assert.ErrorIs(t, env.bookings.DeleteBooking(ctx, owner.ID, upcoming), domain.ErrForbidden)
	require.NoError(t, env.bookings.DeleteBooking(ctx, guest.ID, upcoming))
	assert.ErrorIs(t, env.bookings.DeleteBooking(ctx, guest.ID, upcoming), domain.ErrNotFound)
}

func TestListBookingsForSpot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.signUp(t, "owner")
	guest := env.signUp(t, "guest")
	spot := env.createSpot(t, owner.ID, "Cabin")

	_, err := env.bookings.CreateBooking(ctx, guest.ID, spot.ID, BookingInput{StartDate: "2030-07-01", EndDate: "2030-07-05"})
	require.NoError(t, err)

	asOwner, err := env.bookings.ListForSpot(ctx, owner.ID, spot.ID)
	require.NoError(t, err)
	assert.True(t, asOwner.IsOwner)
	require.Len(t, asOwner.Full, 1)
	assert.Equal(t, guest.ID, asOwner.Full[0].User.ID)

	asGuest, err := env.bookings.ListForSpot(ctx, guest.ID, spot.ID)
	require.NoError(t, err)
	assert.False(t, asGuest.IsOwner)
	require.Len(t, asGuest.Public, 1)
	assert.Equal(t, domain.PublicBooking{
		SpotID:    spot.ID,
		StartDate: domain.MustDate("2030-07-01"),
		EndDate:   domain.MustDate("2030-07-05"),
	}, asGuest.Public[0])

	mine, err := env.bookings.ListForUser(ctx, guest.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Cabin", mine[0].Spot.Name)

	_, err = env.bookings.ListForSpot(ctx, guest.ID, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
