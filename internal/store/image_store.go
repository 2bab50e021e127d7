package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/vbonduro/stayhaven/internal/domain"
)

type SpotImageStore struct {
	db *sqlx.DB
}

func NewSpotImageStore(db *sqlx.DB) *SpotImageStore {
	return &SpotImageStore{db: db}
}

func (s *SpotImageStore) Create(ctx context.Context, spotID int64, url string, preview bool) (*domain.SpotImage, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO spot_images (spot_id, url, preview) VALUES (?, ?, ?)
	`, spotID, url, preview)
	if err != nil {
		return nil, fmt.Errorf("failed to create spot image: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *SpotImageStore) GetByID(ctx context.Context, id int64) (*domain.SpotImage, error) {
	img := &domain.SpotImage{}
	err := s.db.GetContext(ctx, img, `SELECT id, spot_id, url, preview FROM spot_images WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get spot image: %w", err)
	}
	return img, nil
}

func (s *SpotImageStore) ListBySpotID(ctx context.Context, spotID int64) ([]*domain.SpotImage, error) {
	images := []*domain.SpotImage{}
	err := s.db.SelectContext(ctx, &images, `
		SELECT id, spot_id, url, preview FROM spot_images WHERE spot_id = ? ORDER BY id ASC
	`, spotID)
	if err != nil {
		return nil, fmt.Errorf("failed to list spot images: %w", err)
	}
	return images, nil
}

func (s *SpotImageStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM spot_images WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete spot image: %w", err)
	}
	return expectOneRow(result, "spot image")
}

type ReviewImageStore struct {
	db *sqlx.DB
}

func NewReviewImageStore(db *sqlx.DB) *ReviewImageStore {
	return &ReviewImageStore{db: db}
}

func (s *ReviewImageStore) Create(ctx context.Context, reviewID int64, url string) (*domain.ReviewImage, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO review_images (review_id, url) VALUES (?, ?)
	`, reviewID, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create review image: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *ReviewImageStore) GetByID(ctx context.Context, id int64) (*domain.ReviewImage, error) {
	img := &domain.ReviewImage{}
	err := s.db.GetContext(ctx, img, `SELECT id, review_id, url FROM review_images WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review image: %w", err)
	}
	return img, nil
}

// ListByReviewIDs returns the images of every given review, grouped by review.
func (s *ReviewImageStore) ListByReviewIDs(ctx context.Context, reviewIDs []int64) (map[int64][]*domain.ReviewImage, error) {
	out := make(map[int64][]*domain.ReviewImage, len(reviewIDs))
	if len(reviewIDs) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, review_id, url FROM review_images WHERE review_id IN (?) ORDER BY id ASC
	`, reviewIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build review image query: %w", err)
	}

	var images []*domain.ReviewImage
	if err := s.db.SelectContext(ctx, &images, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list review images: %w", err)
	}
	for _, img := range images {
		out[img.ReviewID] = append(out[img.ReviewID], img)
	}
	return out, nil
}

func (s *ReviewImageStore) CountByReviewID(ctx context.Context, reviewID int64) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM review_images WHERE review_id = ?`, reviewID); err != nil {
		return 0, fmt.Errorf("failed to count review images: %w", err)
	}
	return n, nil
}

func (s *ReviewImageStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM review_images WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review image: %w", err)
	}
	return expectOneRow(result, "review image")
}
