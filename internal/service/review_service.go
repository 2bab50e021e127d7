package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"

	"github.com/vbonduro/stayhaven/internal/cache"
	"github.com/vbonduro/stayhaven/internal/domain"
)

// MaxReviewImages caps the images attached to one review.
const MaxReviewImages = 10

// reviewRepository is the subset of store.ReviewStore that ReviewService requires.
type reviewRepository interface {
	Create(ctx context.Context, userID, spotID int64, text string, stars int) (*domain.Review, error)
	GetByID(ctx context.Context, id int64) (*domain.Review, error)
	GetByUserAndSpot(ctx context.Context, userID, spotID int64) (*domain.Review, error)
	Update(ctx context.Context, id int64, text string, stars int) error
	Delete(ctx context.Context, id int64) error
	ListBySpotID(ctx context.Context, spotID int64) ([]*domain.ReviewDetail, error)
	ListByUserID(ctx context.Context, userID int64) ([]*domain.ReviewDetail, error)
}

// reviewImageRepository is the subset of store.ReviewImageStore that ReviewService requires.
type reviewImageRepository interface {
	Create(ctx context.Context, reviewID int64, url string) (*domain.ReviewImage, error)
	GetByID(ctx context.Context, id int64) (*domain.ReviewImage, error)
	ListByReviewIDs(ctx context.Context, reviewIDs []int64) (map[int64][]*domain.ReviewImage, error)
	CountByReviewID(ctx context.Context, reviewID int64) (int, error)
	Delete(ctx context.Context, id int64) error
}

// spotLookup is the subset of store.SpotStore needed to resolve a spot.
type spotLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.Spot, error)
}

type ReviewService struct {
	reviews reviewRepository
	images  reviewImageRepository
	spots   spotLookup
	cache   cache.SpotListCache
	logger  *slog.Logger
}

func NewReviewService(
	reviews reviewRepository,
	images reviewImageRepository,
	spots spotLookup,
	listCache cache.SpotListCache,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviews: reviews,
		images:  images,
		spots:   spots,
		cache:   listCache,
		logger:  logger,
	}
}

type ReviewInput struct {
	Review string   `json:"review"`
	Stars  *float64 `json:"stars"`
}

func (in *ReviewInput) validate() error {
	var v domain.Validation
	if strings.TrimSpace(in.Review) == "" {
		v.Add("review", "Review text is required")
	}
	if in.Stars == nil || *in.Stars != math.Trunc(*in.Stars) || *in.Stars < 1 || *in.Stars > 5 {
		v.Add("stars", "Stars must be an integer from 1 to 5")
	}
	return v.Err()
}

func (s *ReviewService) ListForSpot(ctx context.Context, spotID int64) ([]*domain.ReviewDetail, error) {
	spot, err := s.spots.GetByID(ctx, spotID)
	if err != nil {
		return nil, err
	}
	if spot == nil {
		return nil, domain.NotFound("Spot")
	}

	reviews, err := s.reviews.ListBySpotID(ctx, spotID)
	if err != nil {
		return nil, err
	}
	return reviews, s.attachImages(ctx, reviews)
}

func (s *ReviewService) ListForUser(ctx context.Context, userID int64) ([]*domain.ReviewDetail, error) {
	reviews, err := s.reviews.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return reviews, s.attachImages(ctx, reviews)
}

func (s *ReviewService) attachImages(ctx context.Context, reviews []*domain.ReviewDetail) error {
	ids := make([]int64, len(reviews))
	for i, r := range reviews {
		ids[i] = r.ID
	}
	images, err := s.images.ListByReviewIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, r := range reviews {
		r.ReviewImages = images[r.ID]
		if r.ReviewImages == nil {
			r.ReviewImages = []*domain.ReviewImage{}
		}
	}
	return nil
}

func errAlreadyReviewed() error {
	return &domain.ConflictError{Message: "User already has a review for this spot"}
}

// CreateReview records the user's review of a spot. A user reviews a spot
// at most once.
func (s *ReviewService) CreateReview(ctx context.Context, userID, spotID int64, in ReviewInput) (*domain.Review, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	spot, err := s.spots.GetByID(ctx, spotID)
	if err != nil {
		return nil, err
	}
	if spot == nil {
		return nil, domain.NotFound("Spot")
	}

	existing, err := s.reviews.GetByUserAndSpot(ctx, userID, spotID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errAlreadyReviewed()
	}

	review, err := s.reviews.Create(ctx, userID, spotID, strings.TrimSpace(in.Review), int(*in.Stars))
	if errors.Is(err, domain.ErrDuplicate) {
		return nil, errAlreadyReviewed()
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("review created", "review_id", review.ID, "spot_id", spotID, "user_id", userID)
	invalidateListings(ctx, s.cache, s.logger)
	return review, nil
}

func (s *ReviewService) UpdateReview(ctx context.Context, actorID, reviewID int64, in ReviewInput) (*domain.Review, error) {
	review, err := s.findOwnedReview(ctx, actorID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	if err := s.reviews.Update(ctx, review.ID, strings.TrimSpace(in.Review), int(*in.Stars)); err != nil {
		return nil, err
	}

	invalidateListings(ctx, s.cache, s.logger)
	return s.reviews.GetByID(ctx, review.ID)
}

func (s *ReviewService) DeleteReview(ctx context.Context, actorID, reviewID int64) error {
	review, err := s.findOwnedReview(ctx, actorID, reviewID)
	if err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, review.ID); err != nil {
		return err
	}

	invalidateListings(ctx, s.cache, s.logger)
	return nil
}

type ReviewImageInput struct {
	URL string `json:"url"`
}

func (s *ReviewService) AddImage(ctx context.Context, actorID, reviewID int64, in ReviewImageInput) (*domain.ReviewImage, error) {
	review, err := s.findOwnedReview(ctx, actorID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := validateURL(in.URL); err != nil {
		return nil, err
	}

	n, err := s.images.CountByReviewID(ctx, review.ID)
	if err != nil {
		return nil, err
	}
	if n >= MaxReviewImages {
		return nil, &domain.RuleError{Message: "Maximum number of images for this resource was reached"}
	}

	return s.images.Create(ctx, review.ID, strings.TrimSpace(in.URL))
}

// DeleteImage removes a review image. Only the author of the review may.
func (s *ReviewService) DeleteImage(ctx context.Context, actorID, imageID int64) error {
	img, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		return err
	}
	if img == nil {
		return domain.NotFound("Review image")
	}
	if _, err := s.findOwnedReview(ctx, actorID, img.ReviewID); err != nil {
		return err
	}
	return s.images.Delete(ctx, imageID)
}

func (s *ReviewService) findOwnedReview(ctx context.Context, actorID, reviewID int64) (*domain.Review, error) {
	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, domain.NotFound("Review")
	}
	if err := requireOwner(review.UserID, actorID); err != nil {
		return nil, err
	}
	return review, nil
}
