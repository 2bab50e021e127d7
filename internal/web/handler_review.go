package web

import (
	"net/http"

	"github.com/vbonduro/stayhaven/internal/auth"
	"github.com/vbonduro/stayhaven/internal/domain"
	"github.com/vbonduro/stayhaven/internal/service"
)

type reviewsEnvelope struct {
	Reviews []*domain.ReviewDetail `json:"Reviews"`
}

func (s *Server) handleListSpotReviews(w http.ResponseWriter, r *http.Request) {
	spotID, err := parseID(r, "spotId", "Spot")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	reviews, err := s.reviews.ListForSpot(r.Context(), spotID)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, reviewsEnvelope{Reviews: reviews})
}

func (s *Server) handleListOwnReviews(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	reviews, err := s.reviews.ListForUser(r.Context(), p.UserID)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, reviewsEnvelope{Reviews: reviews})
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	spotID, err := parseID(r, "spotId", "Spot")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	var in service.ReviewInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	review, err := s.reviews.CreateReview(r.Context(), p.UserID, spotID, in)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	reviewID, err := parseID(r, "reviewId", "Review")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	var in service.ReviewInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	review, err := s.reviews.UpdateReview(r.Context(), p.UserID, reviewID, in)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	reviewID, err := parseID(r, "reviewId", "Review")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	if err := s.reviews.DeleteReview(r.Context(), p.UserID, reviewID); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, "Successfully deleted")
}

func (s *Server) handleAddReviewImage(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	reviewID, err := parseID(r, "reviewId", "Review")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	var in service.ReviewImageInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	img, err := s.reviews.AddImage(r.Context(), p.UserID, reviewID, in)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, img)
}

func (s *Server) handleDeleteReviewImage(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	imageID, err := parseID(r, "imageId", "Review image")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	if err := s.reviews.DeleteImage(r.Context(), p.UserID, imageID); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, "Successfully deleted")
}
