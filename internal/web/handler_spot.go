package web

import (
	"net/http"

	"github.com/vbonduro/stayhaven/internal/auth"
	"github.com/vbonduro/stayhaven/internal/domain"
	"github.com/vbonduro/stayhaven/internal/service"
)

type spotsEnvelope struct {
	Spots []*domain.SpotSummary `json:"Spots"`
}

func (s *Server) handleListSpots(w http.ResponseWriter, r *http.Request) {
	filter, err := service.ParseSpotFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	page, err := s.spots.ListSpots(r.Context(), filter)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleListOwnedSpots(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	spots, err := s.spots.ListOwnedSpots(r.Context(), p.UserID)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, spotsEnvelope{Spots: spots})
}

func (s *Server) handleGetSpot(w http.ResponseWriter, r *http.Request) {
	spotID, err := parseID(r, "spotId", "Spot")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	spot, err := s.spots.GetSpot(r.Context(), spotID)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, spot)
}

func (s *Server) handleCreateSpot(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	var in service.SpotInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	spot, err := s.spots.CreateSpot(r.Context(), p.UserID, in)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, spot)
}

func (s *Server) handleUpdateSpot(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	spotID, err := parseID(r, "spotId", "Spot")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	var in service.SpotInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	spot, err := s.spots.UpdateSpot(r.Context(), p.UserID, spotID, in)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, spot)
}

func (s *Server) handleDeleteSpot(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	spotID, err := parseID(r, "spotId", "Spot")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	if err := s.spots.DeleteSpot(r.Context(), p.UserID, spotID); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, "Successfully deleted")
}

func (s *Server) handleAddSpotImage(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	spotID, err := parseID(r, "spotId", "Spot")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	var in service.SpotImageInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	img, err := s.spots.AddImage(r.Context(), p.UserID, spotID, in)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, img)
}

func (s *Server) handleDeleteSpotImage(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	imageID, err := parseID(r, "imageId", "Spot image")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	if err := s.spots.DeleteImage(r.Context(), p.UserID, imageID); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, "Successfully deleted")
}
