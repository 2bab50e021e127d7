package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/vbonduro/stayhaven/internal/domain"
)

const spotColumns = `s.id, s.owner_id, s.address, s.city, s.state, s.country, s.lat, s.lng,
	s.name, s.description, s.price, s.created_at, s.updated_at`

// previewImageExpr picks the first image flagged as preview, falling back to
// the first image of any kind, then to the no-image sentinel. It expects the
// spot to be aliased as s.
const previewImageExpr = `COALESCE(
	(SELECT si.url FROM spot_images si WHERE si.spot_id = s.id ORDER BY si.preview DESC, si.id ASC LIMIT 1),
	'` + domain.NoPreviewImage + `')`

const spotSummarySelect = `
	SELECT ` + spotColumns + `,
		COALESCE((SELECT AVG(r.stars) FROM reviews r WHERE r.spot_id = s.id), 0) AS avg_rating,
		` + previewImageExpr + ` AS preview_image
	FROM spots s`

type SpotStore struct {
	db *sqlx.DB
}

func NewSpotStore(db *sqlx.DB) *SpotStore {
	return &SpotStore{db: db}
}

func (s *SpotStore) Create(ctx context.Context, spot *domain.Spot) (*domain.Spot, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO spots (owner_id, address, city, state, country, lat, lng, name, description, price)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, spot.OwnerID, spot.Address, spot.City, spot.State, spot.Country, spot.Lat, spot.Lng,
		spot.Name, spot.Description, spot.Price)
	if err != nil {
		return nil, fmt.Errorf("failed to create spot: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *SpotStore) GetByID(ctx context.Context, id int64) (*domain.Spot, error) {
	spot := &domain.Spot{}
	err := s.db.GetContext(ctx, spot, `SELECT `+spotColumns+` FROM spots s WHERE s.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get spot: %w", err)
	}
	return spot, nil
}

func (s *SpotStore) Update(ctx context.Context, spot *domain.Spot) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE spots SET address = ?, city = ?, state = ?, country = ?, lat = ?, lng = ?,
			name = ?, description = ?, price = ?, updated_at = datetime('now')
		WHERE id = ?
	`, spot.Address, spot.City, spot.State, spot.Country, spot.Lat, spot.Lng,
		spot.Name, spot.Description, spot.Price, spot.ID)
	if err != nil {
		return fmt.Errorf("failed to update spot: %w", err)
	}
	return expectOneRow(result, "spot")
}

// Delete removes the spot; images, reviews, bookings and wishlist entries
// go with it through ON DELETE CASCADE.
func (s *SpotStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM spots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete spot: %w", err)
	}
	return expectOneRow(result, "spot")
}

// List returns one page of spots matching every bound set in f.
func (s *SpotStore) List(ctx context.Context, f domain.SpotFilter) ([]*domain.SpotSummary, error) {
	var (
		conds []string
		args  []any
	)
	bound := func(cond string, v *float64) {
		if v != nil {
			conds = append(conds, cond)
			args = append(args, *v)
		}
	}
	bound("s.lat >= ?", f.MinLat)
	bound("s.lat <= ?", f.MaxLat)
	bound("s.lng >= ?", f.MinLng)
	bound("s.lng <= ?", f.MaxLng)
	bound("s.price >= ?", f.MinPrice)
	bound("s.price <= ?", f.MaxPrice)

	query := spotSummarySelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY s.id ASC LIMIT ? OFFSET ?"
	args = append(args, f.Size, f.Offset())

	return s.selectSummaries(ctx, query, args...)
}

func (s *SpotStore) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.SpotSummary, error) {
	return s.selectSummaries(ctx, spotSummarySelect+` WHERE s.owner_id = ? ORDER BY s.id ASC`, ownerID)
}

func (s *SpotStore) selectSummaries(ctx context.Context, query string, args ...any) ([]*domain.SpotSummary, error) {
	spots := []*domain.SpotSummary{}
	if err := s.db.SelectContext(ctx, &spots, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list spots: %w", err)
	}
	for _, spot := range spots {
		spot.AvgRating = domain.RoundRating(spot.AvgRating)
	}
	return spots, nil
}

// GetOwner returns the public profile of the spot's owner.
func (s *SpotStore) GetOwner(ctx context.Context, spotID int64) (*domain.UserRef, error) {
	owner := &domain.UserRef{}
	err := s.db.GetContext(ctx, owner, `
		SELECT u.id, u.first_name, u.last_name FROM users u
		JOIN spots s ON s.owner_id = u.id
		WHERE s.id = ?
	`, spotID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get spot owner: %w", err)
	}
	return owner, nil
}
