package web

import (
	"net/http"

	"github.com/vbonduro/stayhaven/internal/auth"
	"github.com/vbonduro/stayhaven/internal/service"
)

type bookingsEnvelope struct {
	Bookings any `json:"Bookings"`
}

func (s *Server) handleListOwnBookings(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	bookings, err := s.bookings.ListForUser(r.Context(), p.UserID)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingsEnvelope{Bookings: bookings})
}

// handleListSpotBookings shows the owner every booking with its guest and
// anyone else only the occupied date ranges.
func (s *Server) handleListSpotBookings(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	spotID, err := parseID(r, "spotId", "Spot")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	cal, err := s.bookings.ListForSpot(r.Context(), p.UserID, spotID)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if cal.IsOwner {
		writeJSON(w, http.StatusOK, bookingsEnvelope{Bookings: cal.Full})
		return
	}
	writeJSON(w, http.StatusOK, bookingsEnvelope{Bookings: cal.Public})
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	spotID, err := parseID(r, "spotId", "Spot")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	var in service.BookingInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	booking, err := s.bookings.CreateBooking(r.Context(), p.UserID, spotID, in)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *Server) handleUpdateBooking(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	bookingID, err := parseID(r, "bookingId", "Booking")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	var in service.BookingInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	booking, err := s.bookings.UpdateBooking(r.Context(), p.UserID, bookingID, in)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleDeleteBooking(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	bookingID, err := parseID(r, "bookingId", "Booking")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	if err := s.bookings.DeleteBooking(r.Context(), p.UserID, bookingID); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, "Successfully deleted")
}
