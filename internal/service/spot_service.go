package service

import (
	"context"
	"log/slog"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/vbonduro/stayhaven/internal/cache"
	"github.com/vbonduro/stayhaven/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 20
)

var cityPattern = regexp.MustCompile(`^[a-zA-Z_ ]+$`)

// spotRepository is the subset of store.SpotStore that SpotService requires.
type spotRepository interface {
	Create(ctx context.Context, spot *domain.Spot) (*domain.Spot, error)
	GetByID(ctx context.Context, id int64) (*domain.Spot, error)
	Update(ctx context.Context, spot *domain.Spot) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f domain.SpotFilter) ([]*domain.SpotSummary, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*domain.SpotSummary, error)
	GetOwner(ctx context.Context, spotID int64) (*domain.UserRef, error)
}

// spotImageRepository is the subset of store.SpotImageStore that SpotService requires.
type spotImageRepository interface {
	Create(ctx context.Context, spotID int64, url string, preview bool) (*domain.SpotImage, error)
	GetByID(ctx context.Context, id int64) (*domain.SpotImage, error)
	ListBySpotID(ctx context.Context, spotID int64) ([]*domain.SpotImage, error)
	Delete(ctx context.Context, id int64) error
}

// reviewStatsRepository is the subset of store.ReviewStore that SpotService requires.
type reviewStatsRepository interface {
	Stats(ctx context.Context, spotID int64) (domain.ReviewStats, error)
}

type SpotService struct {
	spots   spotRepository
	images  spotImageRepository
	reviews reviewStatsRepository
	cache   cache.SpotListCache
	logger  *slog.Logger
}

func NewSpotService(
	spots spotRepository,
	images spotImageRepository,
	reviews reviewStatsRepository,
	listCache cache.SpotListCache,
	logger *slog.Logger,
) *SpotService {
	return &SpotService{
		spots:   spots,
		images:  images,
		reviews: reviews,
		cache:   listCache,
		logger:  logger,
	}
}

// SpotInput is the writable part of a spot.
type SpotInput struct {
	Address     string   `json:"address"`
	City        string   `json:"city"`
	State       string   `json:"state"`
	Country     string   `json:"country"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
}

func (in *SpotInput) validate() error {
	var v domain.Validation
	if strings.TrimSpace(in.Address) == "" {
		v.Add("address", "Street address is required")
	}
	if strings.TrimSpace(in.City) == "" {
		v.Add("city", "City is required")
	} else if !cityPattern.MatchString(in.City) {
		v.Add("city", "City may only contain letters, spaces and underscores")
	}
	if strings.TrimSpace(in.State) == "" {
		v.Add("state", "State is required")
	}
	if strings.TrimSpace(in.Country) == "" {
		v.Add("country", "Country is required")
	}
	if in.Lat != nil && (*in.Lat < -90 || *in.Lat > 90) {
		v.Add("lat", "Latitude must be within -90 and 90")
	}
	if in.Lng != nil && (*in.Lng < -180 || *in.Lng > 180) {
		v.Add("lng", "Longitude must be within -180 and 180")
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(in.Name)); n == 0 || n > 50 {
		v.Add("name", "Name must be less than 50 characters")
	}
	if strings.TrimSpace(in.Description) == "" {
		v.Add("description", "Description is required")
	}
	if in.Price == nil || *in.Price < 1 {
		v.Add("price", "Price per day must be a positive number")
	}
	return v.Err()
}

func (in *SpotInput) apply(spot *domain.Spot) {
	spot.Address = strings.TrimSpace(in.Address)
	spot.City = strings.TrimSpace(in.City)
	spot.State = strings.TrimSpace(in.State)
	spot.Country = strings.TrimSpace(in.Country)
	spot.Lat = in.Lat
	spot.Lng = in.Lng
	spot.Name = strings.TrimSpace(in.Name)
	spot.Description = strings.TrimSpace(in.Description)
	spot.Price = *in.Price
}

// SpotPage is one page of the public spot listing.
type SpotPage struct {
	Spots []*domain.SpotSummary `json:"Spots"`
	Page  int                   `json:"page"`
	Size  int                   `json:"size"`
}

// ParseSpotFilter reads listing parameters from a query string. Absent
// parameters take their defaults; malformed or out-of-range ones are
// reported per field.
func ParseSpotFilter(q url.Values) (domain.SpotFilter, error) {
	f := domain.SpotFilter{Page: 1, Size: defaultPageSize}
	var v domain.Validation

	intParam := func(name string, dst *int, lo, hi int, msg string) {
		raw := q.Get(name)
		if raw == "" {
			return
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < lo || n > hi {
			v.Add(name, msg)
			return
		}
		*dst = n
	}
	floatParam := func(name string, dst **float64, lo, hi float64, msg string) {
		raw := q.Get(name)
		if raw == "" {
			return
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(n) || n < lo || n > hi {
			v.Add(name, msg)
			return
		}
		*dst = &n
	}

	intParam("page", &f.Page, 1, math.MaxInt32, "page must be a valid number >= 1")
	intParam("size", &f.Size, 1, maxPageSize, "size must be a valid number >= 1 and <= 20")
	floatParam("minLat", &f.MinLat, -90, 90, "minLat must be a valid number >= -90 and <= 90")
	floatParam("maxLat", &f.MaxLat, -90, 90, "maxLat must be a valid number >= -90 and <= 90")
	floatParam("minLng", &f.MinLng, -180, 180, "minLng must be a valid number >= -180 and <= 180")
	floatParam("maxLng", &f.MaxLng, -180, 180, "maxLng must be a valid number >= -180 and <= 180")
	floatParam("minPrice", &f.MinPrice, 0, math.MaxFloat64, "minPrice must be a valid number >= 0")
	floatParam("maxPrice", &f.MaxPrice, 0, math.MaxFloat64, "maxPrice must be a valid number >= 0")

	return f, v.Err()
}

// listingKey renders the filter as the canonical cache key.
func listingKey(f domain.SpotFilter) string {
	params := map[string]string{
		"page": strconv.Itoa(f.Page),
		"size": strconv.Itoa(f.Size),
	}
	bound := func(name string, v *float64) {
		if v != nil {
			params[name] = strconv.FormatFloat(*v, 'g', -1, 64)
		}
	}
	bound("minLat", f.MinLat)
	bound("maxLat", f.MaxLat)
	bound("minLng", f.MinLng)
	bound("maxLng", f.MaxLng)
	bound("minPrice", f.MinPrice)
	bound("maxPrice", f.MaxPrice)
	return cache.Key(params)
}

func (s *SpotService) ListSpots(ctx context.Context, f domain.SpotFilter) (*SpotPage, error) {
	key := listingKey(f)

	var page SpotPage
	found, err := s.cache.Get(ctx, key, &page)
	if err != nil {
		s.logger.Warn("spot list cache read failed", "error", err)
	}
	if found {
		return &page, nil
	}

	spots, err := s.spots.List(ctx, f)
	if err != nil {
		return nil, err
	}
	page = SpotPage{Spots: spots, Page: f.Page, Size: f.Size}

	if err := s.cache.Set(ctx, key, &page); err != nil {
		s.logger.Warn("spot list cache write failed", "error", err)
	}
	return &page, nil
}

func (s *SpotService) ListOwnedSpots(ctx context.Context, ownerID int64) ([]*domain.SpotSummary, error) {
	return s.spots.ListByOwner(ctx, ownerID)
}

// GetSpot returns the spot with its images, owner and review aggregates.
func (s *SpotService) GetSpot(ctx context.Context, spotID int64) (*domain.SpotDetail, error) {
	spot, err := s.findSpot(ctx, spotID)
	if err != nil {
		return nil, err
	}

	images, err := s.images.ListBySpotID(ctx, spotID)
	if err != nil {
		return nil, err
	}
	owner, err := s.spots.GetOwner(ctx, spotID)
	if err != nil {
		return nil, err
	}
	stats, err := s.reviews.Stats(ctx, spotID)
	if err != nil {
		return nil, err
	}

	return &domain.SpotDetail{
		Spot:          *spot,
		NumReviews:    stats.Count,
		AvgStarRating: stats.Average,
		SpotImages:    images,
		Owner:         owner,
	}, nil
}

func (s *SpotService) CreateSpot(ctx context.Context, ownerID int64, in SpotInput) (*domain.Spot, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	spot := &domain.Spot{OwnerID: ownerID}
	in.apply(spot)
	created, err := s.spots.Create(ctx, spot)
	if err != nil {
		return nil, err
	}

	s.logger.Info("spot created", "spot_id", created.ID, "owner_id", ownerID)
	invalidateListings(ctx, s.cache, s.logger)
	return created, nil
}

func (s *SpotService) UpdateSpot(ctx context.Context, actorID, spotID int64, in SpotInput) (*domain.Spot, error) {
	spot, err := s.findSpot(ctx, spotID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(spot.OwnerID, actorID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	in.apply(spot)
	if err := s.spots.Update(ctx, spot); err != nil {
		return nil, err
	}

	invalidateListings(ctx, s.cache, s.logger)
	return s.findSpot(ctx, spotID)
}

func (s *SpotService) DeleteSpot(ctx context.Context, actorID, spotID int64) error {
	spot, err := s.findSpot(ctx, spotID)
	if err != nil {
		return err
	}
	if err := requireOwner(spot.OwnerID, actorID); err != nil {
		return err
	}
	if err := s.spots.Delete(ctx, spotID); err != nil {
		return err
	}

	s.logger.Info("spot deleted", "spot_id", spotID)
	invalidateListings(ctx, s.cache, s.logger)
	return nil
}

type SpotImageInput struct {
	URL     string `json:"url"`
	Preview bool   `json:"preview"`
}

func (s *SpotService) AddImage(ctx context.Context, actorID, spotID int64, in SpotImageInput) (*domain.SpotImage, error) {
	spot, err := s.findSpot(ctx, spotID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(spot.OwnerID, actorID); err != nil {
		return nil, err
	}
	if err := validateURL(in.URL); err != nil {
		return nil, err
	}

	img, err := s.images.Create(ctx, spotID, strings.TrimSpace(in.URL), in.Preview)
	if err != nil {
		return nil, err
	}

	invalidateListings(ctx, s.cache, s.logger)
	return img, nil
}

// DeleteImage removes a spot image. Only the owner of the image's spot may.
func (s *SpotService) DeleteImage(ctx context.Context, actorID, imageID int64) error {
	img, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		return err
	}
	if img == nil {
		return domain.NotFound("Spot image")
	}
	spot, err := s.findSpot(ctx, img.SpotID)
	if err != nil {
		return err
	}
	if err := requireOwner(spot.OwnerID, actorID); err != nil {
		return err
	}
	if err := s.images.Delete(ctx, imageID); err != nil {
		return err
	}

	invalidateListings(ctx, s.cache, s.logger)
	return nil
}

func (s *SpotService) findSpot(ctx context.Context, spotID int64) (*domain.Spot, error) {
	spot, err := s.spots.GetByID(ctx, spotID)
	if err != nil {
		return nil, err
	}
	if spot == nil {
		return nil, domain.NotFound("Spot")
	}
	return spot, nil
}

func validateURL(raw string) error {
	var v domain.Validation
	raw = strings.TrimSpace(raw)
	if raw == "" {
		v.Add("url", "Image url is required")
	} else if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
		v.Add("url", "Image url must be an absolute URL")
	}
	return v.Err()
}
