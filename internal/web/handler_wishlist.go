package web

import (
	"net/http"

	"github.com/vbonduro/stayhaven/internal/auth"
)

func (s *Server) handleListWishlist(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	spots, err := s.wishlist.List(r.Context(), p.UserID)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, spotsEnvelope{Spots: spots})
}

func (s *Server) handleAddToWishlist(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	spotID, err := parseID(r, "spotId", "Spot")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	if err := s.wishlist.Add(r.Context(), p.UserID, spotID); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, "Added to wishlist")
}

func (s *Server) handleRemoveFromWishlist(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	spotID, err := parseID(r, "spotId", "Spot")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	if err := s.wishlist.Remove(r.Context(), p.UserID, spotID); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, "Removed from wishlist")
}
