package domain

import "math"

// NoPreviewImage is reported as a spot's preview when it has no images.
const NoPreviewImage = "No preview image available"

// UserRef is the public subset of a user embedded in other resources.
type UserRef struct {
	ID        int64  `db:"id" json:"id"`
	FirstName string `db:"first_name" json:"firstName"`
	LastName  string `db:"last_name" json:"lastName"`
}

// SpotRef is the subset of a spot embedded in bookings and reviews.
type SpotRef struct {
	ID           int64    `db:"id" json:"id"`
	OwnerID      int64    `db:"owner_id" json:"ownerId"`
	Address      string   `db:"address" json:"address"`
	City         string   `db:"city" json:"city"`
	State        string   `db:"state" json:"state"`
	Country      string   `db:"country" json:"country"`
	Lat          *float64 `db:"lat" json:"lat"`
	Lng          *float64 `db:"lng" json:"lng"`
	Name         string   `db:"name" json:"name"`
	Price        float64  `db:"price" json:"price"`
	PreviewImage string   `db:"preview_image" json:"previewImage"`
}

// SpotSummary is a spot with its list-view aggregates.
type SpotSummary struct {
	Spot
	AvgRating    float64 `db:"avg_rating" json:"avgRating"`
	PreviewImage string  `db:"preview_image" json:"previewImage"`
}

// SpotDetail is a spot with its images, owner and review aggregates.
type SpotDetail struct {
	Spot
	NumReviews    int          `json:"numReviews"`
	AvgStarRating float64      `json:"avgStarRating"`
	SpotImages    []*SpotImage `json:"SpotImages"`
	Owner         *UserRef     `json:"Owner"`
}

type ReviewDetail struct {
	Review
	User         *UserRef       `json:"User"`
	Spot         *SpotRef       `json:"Spot,omitempty"`
	ReviewImages []*ReviewImage `json:"ReviewImages"`
}

type BookingDetail struct {
	Booking
	Spot *SpotRef `json:"Spot,omitempty"`
	User *UserRef `json:"User,omitempty"`
}

// PublicBooking is what a non-owner may see of someone else's booking.
type PublicBooking struct {
	SpotID    int64 `json:"spotId"`
	StartDate Date  `json:"startDate"`
	EndDate   Date  `json:"endDate"`
}

// ReviewStats holds the review aggregates of a single spot.
type ReviewStats struct {
	Count   int     `db:"num_reviews"`
	Average float64 `db:"avg_stars"`
}

// RoundRating rounds an average star rating to one decimal place.
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}

// SpotFilter narrows and paginates spot listings. Nil bounds are not applied.
type SpotFilter struct {
	Page     int
	Size     int
	MinLat   *float64
	MaxLat   *float64
	MinLng   *float64
	MaxLng   *float64
	MinPrice *float64
	MaxPrice *float64
}

func (f SpotFilter) Offset() int {
	return (f.Page - 1) * f.Size
}
