// Package seed loads a small demo data set into an empty database.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vbonduro/stayhaven/internal/domain"
	"github.com/vbonduro/stayhaven/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// DemoPassword is the password of every seeded user.
const DemoPassword = "password"

type demoUser struct {
	first, last, username, email string
}

var demoUsers = []demoUser{
	{"Demo", "Lition", "Demo-lition", "demo@user.io"},
	{"Fake", "User", "FakeUser1", "user1@user.io"},
	{"Fake", "User", "FakeUser2", "user2@user.io"},
	{"Ada", "Traveler", "AdaTravels", "ada@user.io"},
	{"Marco", "Roamer", "MarcoRoams", "marco@user.io"},
}

type demoSpot struct {
	spot    domain.Spot
	image   string
	preview bool
	review  string
	stars   int
	photo   string
}

func ptr(f float64) *float64 { return &f }

var demoSpots = []demoSpot{
	{
		spot: domain.Spot{
			Address: "Empire State Building, 20 W 34th St", City: "New York", State: "NY", Country: "USA",
			Lat: ptr(40.748817), Lng: ptr(-73.985428), Name: "Empire State Building",
			Description: "Iconic skyscraper in New York City.", Price: 50,
		},
		image:   "https://shorturl.at/voaJD",
		preview: true,
		review:  "The Empire State Building offers an amazing view of New York City. Highly recommend the observation deck!",
		stars:   5,
		photo:   "https://upload.wikimedia.org/wikipedia/commons/a/a6/Empire_State_Building_from_the_33rd_floor.JPG",
	},
	{
		spot: domain.Spot{
			Address: "Eiffel Tower, Champ de Mars", City: "Paris", State: "Île-de-France", Country: "France",
			Lat: ptr(48.858844), Lng: ptr(2.29435), Name: "Eiffel Tower",
			Description: "A wrought-iron lattice tower in Paris, France.", Price: 30,
		},
		image:  "https://shorturl.at/ljkCc",
		review: "Visiting the Eiffel Tower at night is a magical experience, especially when the lights twinkle. A must-see in Paris.",
		stars:  5,
		photo:  "https://upload.wikimedia.org/wikipedia/commons/0/0e/Eiffel_Tower_from_the_Trocad%C3%A9ro_%28cropped%29.jpg",
	},
	{
		spot: domain.Spot{
			Address: "Great Wall of China, Huairou", City: "Beijing", State: "Beijing", Country: "China",
			Lat: ptr(40.431907), Lng: ptr(116.570374), Name: "Great Wall of China",
			Description: "Historic fortification built to protect China.", Price: 15,
		},
		image:   "https://shorturl.at/Y0iam",
		preview: true,
		review:  "The Great Wall is an incredible feat of engineering. It's a long walk but the views are worth every step.",
		stars:   4,
		photo:   "https://upload.wikimedia.org/wikipedia/commons/d/d7/Great_Wall_of_China_July_2006.jpg",
	},
	{
		spot: domain.Spot{
			Address: "Taj Mahal, Dharmapuri", City: "Agra", State: "Uttar Pradesh", Country: "India",
			Lat: ptr(27.175144), Lng: ptr(78.042142), Name: "Taj Mahal",
			Description: "Famous white marble mausoleum in India.", Price: 25,
		},
		image:  "https://h2.gifposter.com/bingImages/TajMahalReflection_1920x1080.jpg",
		review: "The Taj Mahal is even more beautiful in person than in photos. The intricate design and the history behind it are remarkable.",
		stars:  5,
		photo:  "https://upload.wikimedia.org/wikipedia/commons/a/a0/Taj_Mahal%2C_Agra%2C_India.jpg",
	},
	{
		spot: domain.Spot{
			Address: "Colosseum, Piazza del Colosseo", City: "Rome", State: "Lazio", Country: "Italy",
			Lat: ptr(41.89021), Lng: ptr(12.492231), Name: "Colosseum",
			Description: "Ancient amphitheater in the heart of Rome.", Price: 18,
		},
		image:   "https://cdn.mos.cms.futurecdn.net/BiNbcY5fXy9Lra47jqHKGK.jpg",
		preview: true,
		review:  "The Colosseum is a fantastic piece of history. It's amazing to think about how it was used in ancient times for gladiator games.",
		stars:   4,
		photo:   "https://upload.wikimedia.org/wikipedia/commons/1/1c/Colosseum_in_Rome_-_April_2007.jpg",
	},
}

// Seeder writes the demo data set through the stores.
type Seeder struct {
	users        *store.UserStore
	spots        *store.SpotStore
	spotImages   *store.SpotImageStore
	reviews      *store.ReviewStore
	reviewImages *store.ReviewImageStore
	bookings     *store.BookingStore
	hashCost     int
	now          func() time.Time
	logger       *slog.Logger
}

func New(db *sqlx.DB, logger *slog.Logger) *Seeder {
	return &Seeder{
		users:        store.NewUserStore(db),
		spots:        store.NewSpotStore(db),
		spotImages:   store.NewSpotImageStore(db),
		reviews:      store.NewReviewStore(db),
		reviewImages: store.NewReviewImageStore(db),
		bookings:     store.NewBookingStore(db),
		hashCost:     bcrypt.DefaultCost,
		now:          time.Now,
		logger:       logger,
	}
}

// WithHashCost overrides the bcrypt cost used for the demo passwords.
func (s *Seeder) WithHashCost(cost int) *Seeder {
	s.hashCost = cost
	return s
}

// Run inserts the demo data unless the database already has users. It
// reports whether anything was written. Every demo user owns one spot and
// reviews and books the next user's spot, so no one books their own.
func (s *Seeder) Run(ctx context.Context) (bool, error) {
	n, err := s.users.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		s.logger.Info("database already has users; skipping seed", "users", n)
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), s.hashCost)
	if err != nil {
		return false, fmt.Errorf("failed to hash demo password: %w", err)
	}

	userIDs := make([]int64, len(demoUsers))
	for i, du := range demoUsers {
		u, err := s.users.Create(ctx, &domain.User{
			FirstName:      du.first,
			LastName:       du.last,
			Username:       du.username,
			Email:          du.email,
			HashedPassword: string(hash),
		})
		if err != nil {
			return false, err
		}
		userIDs[i] = u.ID
	}

	today := domain.DateOf(s.now())
	for i, ds := range demoSpots {
		spot := ds.spot
		spot.OwnerID = userIDs[i]
		created, err := s.spots.Create(ctx, &spot)
		if err != nil {
			return false, err
		}
		if _, err := s.spotImages.Create(ctx, created.ID, ds.image, ds.preview); err != nil {
			return false, err
		}

		guest := userIDs[(i+1)%len(userIDs)]
		review, err := s.reviews.Create(ctx, guest, created.ID, ds.review, ds.stars)
		if err != nil {
			return false, err
		}
		if _, err := s.reviewImages.Create(ctx, review.ID, ds.photo); err != nil {
			return false, err
		}

		start := today.AddDays(14 * (i + 1))
		stay := domain.DateRange{Start: start, End: start.AddDays(6)}
		if _, conflicts, err := s.bookings.Create(ctx, created.ID, guest, stay); err != nil {
			return false, err
		} else if len(conflicts) > 0 {
			return false, fmt.Errorf("demo booking for %q overlaps an existing stay", spot.Name)
		}
	}

	s.logger.Info("seeded demo data", "users", len(demoUsers), "spots", len(demoSpots))
	return true, nil
}
