package repository

import (
	"context"
	"database/sql"
	"fmt"

	"tunemart/model"
)

// ReviewRepository defines the interface for review persistence.
// FindByID and FindByMusicAndCustomer return (nil, nil) when no row exists.
type ReviewRepository interface {
	Create(ctx context.Context, rev *model.Review) (int64, error)
	FindByID(ctx context.Context, id int64) (*model.Review, error)
	FindByMusicID(ctx context.Context, musicID int64, offset, limit int) ([]*model.Review, int64, error)
	FindByMusicAndCustomer(ctx context.Context, musicID int64, customer string) (*model.Review, error)
	Update(ctx context.Context, rev *model.Review) error
	Delete(ctx context.Context, id int64) error
	AggregateForMusic(ctx context.Context, musicID int64) (average float64, total int, err error)
}

// mysqlReviewRepository implements ReviewRepository for MySQL.
type mysqlReviewRepository struct {
	db *sql.DB
}

// NewMySQLReviewRepository creates a new MySQL-backed review repository.
func NewMySQLReviewRepository(db *sql.DB) ReviewRepository {
	return &mysqlReviewRepository{db: db}
}

const reviewColumns = `id, music_id, customer_username, rating, comment, created_at, updated_at`

func scanReview(s scanner) (*model.Review, error) {
	rev := &model.Review{}
	var comment sql.NullString
	err := s.Scan(&rev.ID, &rev.MusicID, &rev.CustomerUsername, &rev.Rating, &comment,
		&rev.CreatedAt, &rev.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rev.Comment = comment.String
	return rev, nil
}

// Create inserts a new review and returns its assigned id.
func (r *mysqlReviewRepository) Create(ctx context.Context, rev *model.Review) (int64, error) {
	query := `INSERT INTO reviews (music_id, customer_username, rating, comment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		rev.MusicID, rev.CustomerUsername, rev.Rating, nullString(rev.Comment),
		rev.CreatedAt, rev.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert review: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for review: %w", err)
	}
	return id, nil
}

// FindByID retrieves a review by its ID.
func (r *mysqlReviewRepository) FindByID(ctx context.Context, id int64) (*model.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = ?`
	rev, err := scanReview(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan review %d: %w", id, err)
	}
	return rev, nil
}

// FindByMusicID retrieves one page of the reviews for a record, newest first.
func (r *mysqlReviewRepository) FindByMusicID(ctx context.Context, musicID int64, offset, limit int) ([]*model.Review, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews WHERE music_id = ?`, musicID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews for music record %d: %w", musicID, err)
	}

	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE music_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, musicID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query reviews for music record %d: %w", musicID, err)
	}
	defer rows.Close()

	reviews := make([]*model.Review, 0)
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, rev)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error during review rows iteration: %w", err)
	}
	return reviews, total, nil
}

// FindByMusicAndCustomer retrieves the review a customer left on a record, if any.
func (r *mysqlReviewRepository) FindByMusicAndCustomer(ctx context.Context, musicID int64, customer string) (*model.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE music_id = ? AND customer_username = ?`
	rev, err := scanReview(r.db.QueryRowContext(ctx, query, musicID, customer))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan review for music record %d by %s: %w", musicID, customer, err)
	}
	return rev, nil
}

// Update persists the rating and comment of an existing review.
func (r *mysqlReviewRepository) Update(ctx context.Context, rev *model.Review) error {
	query := `UPDATE reviews SET rating = ?, comment = ?, updated_at = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, rev.Rating, nullString(rev.Comment), rev.UpdatedAt, rev.ID); err != nil {
		return fmt.Errorf("failed to update review %d: %w", rev.ID, err)
	}
	return nil
}

// Delete removes a review.
func (r *mysqlReviewRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete review %d: %w", id, err)
	}
	return nil
}

// AggregateForMusic computes the live mean rating and count for a record.
func (r *mysqlReviewRepository) AggregateForMusic(ctx context.Context, musicID int64) (float64, int, error) {
	query := `SELECT COALESCE(AVG(rating), 0), COUNT(*) FROM reviews WHERE music_id = ?`
	var average float64
	var total int
	if err := r.db.QueryRowContext(ctx, query, musicID).Scan(&average, &total); err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate reviews for music record %d: %w", musicID, err)
	}
	return average, total, nil
}
