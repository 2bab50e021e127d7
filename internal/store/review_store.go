package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/vbonduro/stayhaven/internal/domain"
)

const reviewColumns = `r.id, r.user_id, r.spot_id, r.body, r.stars, r.created_at, r.updated_at`

// reviewRow is a review joined with its author and, for per-user listings,
// its spot. sqlx maps the prefixed columns onto the nested structs.
type reviewRow struct {
	domain.Review
	Author domain.UserRef `db:"author"`
	Spot   domain.SpotRef `db:"spot"`
}

type ReviewStore struct {
	db *sqlx.DB
}

func NewReviewStore(db *sqlx.DB) *ReviewStore {
	return &ReviewStore{db: db}
}

func (s *ReviewStore) Create(ctx context.Context, userID, spotID int64, text string, stars int) (*domain.Review, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO reviews (user_id, spot_id, body, stars) VALUES (?, ?, ?, ?)
	`, userID, spotID, text, stars)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("review of spot %d by user %d: %w", spotID, userID, domain.ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *ReviewStore) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	review := &domain.Review{}
	err := s.db.GetContext(ctx, review, `SELECT `+reviewColumns+` FROM reviews r WHERE r.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return review, nil
}

// GetByUserAndSpot returns the user's review of the spot, if any.
func (s *ReviewStore) GetByUserAndSpot(ctx context.Context, userID, spotID int64) (*domain.Review, error) {
	review := &domain.Review{}
	err := s.db.GetContext(ctx, review, `
		SELECT `+reviewColumns+` FROM reviews r WHERE r.user_id = ? AND r.spot_id = ?
	`, userID, spotID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return review, nil
}

func (s *ReviewStore) Update(ctx context.Context, id int64, text string, stars int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE reviews SET body = ?, stars = ?, updated_at = datetime('now') WHERE id = ?
	`, text, stars, id)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	return expectOneRow(result, "review")
}

func (s *ReviewStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return expectOneRow(result, "review")
}

// ListBySpotID returns the spot's reviews, newest first, with their authors.
func (s *ReviewStore) ListBySpotID(ctx context.Context, spotID int64) ([]*domain.ReviewDetail, error) {
	var rows []*reviewRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+reviewColumns+`,
			u.id AS "author.id", u.first_name AS "author.first_name", u.last_name AS "author.last_name"
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.spot_id = ?
		ORDER BY r.created_at DESC, r.id DESC
	`, spotID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	out := make([]*domain.ReviewDetail, 0, len(rows))
	for _, row := range rows {
		author := row.Author
		out = append(out, &domain.ReviewDetail{Review: row.Review, User: &author})
	}
	return out, nil
}

// ListByUserID returns the user's reviews with the reviewed spots.
func (s *ReviewStore) ListByUserID(ctx context.Context, userID int64) ([]*domain.ReviewDetail, error) {
	var rows []*reviewRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+reviewColumns+`,
			u.id AS "author.id", u.first_name AS "author.first_name", u.last_name AS "author.last_name",
			s.id AS "spot.id", s.owner_id AS "spot.owner_id", s.address AS "spot.address",
			s.city AS "spot.city", s.state AS "spot.state", s.country AS "spot.country",
			s.lat AS "spot.lat", s.lng AS "spot.lng", s.name AS "spot.name", s.price AS "spot.price",
			`+previewImageExpr+` AS "spot.preview_image"
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		JOIN spots s ON s.id = r.spot_id
		WHERE r.user_id = ?
		ORDER BY r.created_at DESC, r.id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	out := make([]*domain.ReviewDetail, 0, len(rows))
	for _, row := range rows {
		author, spot := row.Author, row.Spot
		out = append(out, &domain.ReviewDetail{Review: row.Review, User: &author, Spot: &spot})
	}
	return out, nil
}

// Stats returns the number of reviews of the spot and their rounded mean.
func (s *ReviewStore) Stats(ctx context.Context, spotID int64) (domain.ReviewStats, error) {
	var stats domain.ReviewStats
	err := s.db.GetContext(ctx, &stats, `
		SELECT COUNT(*) AS num_reviews, COALESCE(AVG(stars), 0) AS avg_stars FROM reviews WHERE spot_id = ?
	`, spotID)
	if err != nil {
		return stats, fmt.Errorf("failed to compute review stats: %w", err)
	}
	stats.Average = domain.RoundRating(stats.Average)
	return stats, nil
}
