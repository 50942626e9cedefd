// Package review owns customer reviews and keeps the catalog's cached
// rating fields in step with them.
package review

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"tunemart/apperr"
	"tunemart/logger"
	"tunemart/model"
	"tunemart/repository"
)

const maxCommentLength = 1000

// Catalog is the slice of the catalog service the review service needs:
// existence checks before writing and rating recomputation after.
type Catalog interface {
	Get(ctx context.Context, id int64) (*model.Music, error)
	RecomputeRating(ctx context.Context, id int64) error
}

// Input carries the caller-editable fields of a review.
type Input struct {
	Rating  int
	Comment string
}

// Service is the sole authority over reviews.
type Service struct {
	reviews repository.ReviewRepository
	catalog Catalog
	log     *logger.Logger
}

// NewService wires the review service with its collaborators.
func NewService(reviews repository.ReviewRepository, catalog Catalog, log *logger.Logger) *Service {
	return &Service{reviews: reviews, catalog: catalog, log: log}
}

func validateInput(in Input) []string {
	var violations []string
	if in.Rating < 1 || in.Rating > 5 {
		violations = append(violations, "rating must be between 1 and 5")
	}
	if utf8.RuneCountInString(in.Comment) > maxCommentLength {
		violations = append(violations, fmt.Sprintf("comment cannot exceed %d characters", maxCommentLength))
	}
	return violations
}

// Create adds a review to a record. One review per customer per record;
// the record's rating cache is recomputed before returning.
func (s *Service) Create(ctx context.Context, musicID int64, in Input, customer string) (*model.Review, error) {
	violations := validateInput(in)
	if strings.TrimSpace(customer) == "" {
		violations = append(violations, "customer identity is required")
	}
	if len(violations) > 0 {
		return nil, apperr.Validation(violations...)
	}

	// Existence check surfaces NotFoundError before any write.
	if _, err := s.catalog.Get(ctx, musicID); err != nil {
		return nil, err
	}

	existing, err := s.reviews.FindByMusicAndCustomer(ctx, musicID, customer)
	if err != nil {
		return nil, apperr.Storage("review lookup", err)
	}
	if existing != nil {
		return nil, apperr.Validation("you have already reviewed this record")
	}

	now := time.Now()
	rev := &model.Review{
		MusicID:          musicID,
		CustomerUsername: customer,
		Rating:           in.Rating,
		Comment:          in.Comment,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	id, err := s.reviews.Create(ctx, rev)
	if err != nil {
		return nil, apperr.Storage("review insert", err)
	}
	rev.ID = id

	if err := s.catalog.RecomputeRating(ctx, musicID); err != nil {
		return nil, err
	}

	s.log.Info("review created",
		logger.Int64("reviewId", id),
		logger.Int64("musicId", musicID),
		logger.String("customer", customer))
	return rev, nil
}

// loadOwned fetches a review and verifies the caller wrote it.
func (s *Service) loadOwned(ctx context.Context, id int64, customer string) (*model.Review, error) {
	rev, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Storage("review lookup", err)
	}
	if rev == nil {
		return nil, apperr.NotFound("review", strconv.FormatInt(id, 10))
	}
	if rev.CustomerUsername != customer {
		return nil, apperr.Unauthorized("caller is not the review author")
	}
	return rev, nil
}

// Update edits an existing review and recomputes the record's rating cache.
func (s *Service) Update(ctx context.Context, id int64, in Input, customer string) (*model.Review, error) {
	rev, err := s.loadOwned(ctx, id, customer)
	if err != nil {
		return nil, err
	}
	if violations := validateInput(in); len(violations) > 0 {
		return nil, apperr.Validation(violations...)
	}

	rev.Rating = in.Rating
	rev.Comment = in.Comment
	rev.UpdatedAt = time.Now()

	if err := s.reviews.Update(ctx, rev); err != nil {
		return nil, apperr.Storage("review update", err)
	}
	if err := s.catalog.RecomputeRating(ctx, rev.MusicID); err != nil {
		return nil, err
	}

	s.log.Info("review updated", logger.Int64("reviewId", id), logger.String("customer", customer))
	return rev, nil
}

// Delete removes a review and recomputes the record's rating cache.
func (s *Service) Delete(ctx context.Context, id int64, customer string) error {
	rev, err := s.loadOwned(ctx, id, customer)
	if err != nil {
		return err
	}

	if err := s.reviews.Delete(ctx, id); err != nil {
		return apperr.Storage("review delete", err)
	}
	if err := s.catalog.RecomputeRating(ctx, rev.MusicID); err != nil {
		return err
	}

	s.log.Info("review deleted", logger.Int64("reviewId", id), logger.String("customer", customer))
	return nil
}

// ListByMusic returns one page of a record's reviews, newest first.
func (s *Service) ListByMusic(ctx context.Context, musicID int64, page, size int) (model.Page[*model.Review], error) {
	var empty model.Page[*model.Review]
	var violations []string
	if page < 0 {
		violations = append(violations, "page index must not be negative")
	}
	if size <= 0 {
		violations = append(violations, "page size must be positive")
	}
	if len(violations) > 0 {
		return empty, apperr.Validation(violations...)
	}

	items, total, err := s.reviews.FindByMusicID(ctx, musicID, page*size, size)
	if err != nil {
		return empty, apperr.Storage("review listing", err)
	}
	return model.NewPage(items, page, size, total), nil
}
