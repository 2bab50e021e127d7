package domain

import "time"

type User struct {
	ID             int64     `db:"id" json:"id"`
	FirstName      string    `db:"first_name" json:"firstName"`
	LastName       string    `db:"last_name" json:"lastName"`
	Username       string    `db:"username" json:"username"`
	Email          string    `db:"email" json:"email"`
	HashedPassword string    `db:"hashed_password" json:"-"`
	Bio            *string   `db:"bio" json:"bio"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

type Spot struct {
	ID          int64     `db:"id" json:"id"`
	OwnerID     int64     `db:"owner_id" json:"ownerId"`
	Address     string    `db:"address" json:"address"`
	City        string    `db:"city" json:"city"`
	State       string    `db:"state" json:"state"`
	Country     string    `db:"country" json:"country"`
	Lat         *float64  `db:"lat" json:"lat"`
	Lng         *float64  `db:"lng" json:"lng"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Price       float64   `db:"price" json:"price"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

type SpotImage struct {
	ID      int64  `db:"id" json:"id"`
	SpotID  int64  `db:"spot_id" json:"-"`
	URL     string `db:"url" json:"url"`
	Preview bool   `db:"preview" json:"preview"`
}

type Review struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"userId"`
	SpotID    int64     `db:"spot_id" json:"spotId"`
	Body      string    `db:"body" json:"review"`
	Stars     int       `db:"stars" json:"stars"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type ReviewImage struct {
	ID       int64  `db:"id" json:"id"`
	ReviewID int64  `db:"review_id" json:"-"`
	URL      string `db:"url" json:"url"`
}

type Booking struct {
	ID        int64     `db:"id" json:"id"`
	SpotID    int64     `db:"spot_id" json:"spotId"`
	UserID    int64     `db:"user_id" json:"userId"`
	StartDate Date      `db:"start_date" json:"startDate"`
	EndDate   Date      `db:"end_date" json:"endDate"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Range returns the booking's stay as a half-open date range.
func (b *Booking) Range() DateRange {
	return DateRange{Start: b.StartDate, End: b.EndDate}
}
