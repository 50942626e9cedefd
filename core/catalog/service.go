// Package catalog owns the marketplace catalog lifecycle: validation,
// ownership checks, asset persistence, moderation flags, and the cached
// rating fields. Everything below it (SQL, object storage, Redis) is a
// collaborator injected through the constructor.
package catalog

import (
	"context"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"tunemart/apperr"
	"tunemart/logger"
	"tunemart/model"
	"tunemart/repository"
	"tunemart/storage"
)

// RecordCache is the optional read cache for single-record lookups.
type RecordCache interface {
	Get(ctx context.Context, id int64) (*model.Music, bool)
	Set(ctx context.Context, m *model.Music)
	Invalidate(ctx context.Context, id int64)
}

// Asset is one uploaded binary with its declared media type.
type Asset struct {
	Reader      io.Reader
	Size        int64
	ContentType string
	Filename    string
}

// UploadInput carries the metadata fields of a new listing. The owning
// artist comes from the authenticated identity, never from the payload.
type UploadInput struct {
	Name        string
	Description string
	Price       float64
	Category    string
	AlbumName   string
	Genre       string
	ReleaseYear int
}

// UpdateInput carries the mutable metadata fields of an existing listing.
// There is deliberately no artist field: ownership is immutable.
type UpdateInput struct {
	Name        string
	Description string
	Price       float64
	Category    string
	AlbumName   string
	Genre       string
	ReleaseYear int
}

// Service is the sole authority over catalog records.
type Service struct {
	records repository.MusicRepository
	reviews repository.ReviewRepository
	uploads storage.Uploader
	cache   RecordCache // nil disables caching
	log     *logger.Logger
}

// NewService wires the catalog service with its collaborators.
func NewService(
	records repository.MusicRepository,
	reviews repository.ReviewRepository,
	uploads storage.Uploader,
	cache RecordCache,
	log *logger.Logger,
) *Service {
	return &Service{
		records: records,
		reviews: reviews,
		uploads: uploads,
		cache:   cache,
		log:     log,
	}
}

// Upload validates a new listing, persists both binary assets, and writes
// the catalog record owned by the uploader identity.
//
// The two asset writes are independent: if the cover write fails after the
// audio write succeeded, the audio object is left behind. Known gap.
func (s *Service) Upload(ctx context.Context, in UploadInput, audio, cover Asset, uploader string) (*model.Music, error) {
	violations := validateFields(in.Name, in.Category, in.Price, in.Description)
	if strings.TrimSpace(uploader) == "" {
		violations = append(violations, "uploader identity is required")
	}
	violations = append(violations, validateAsset(audio, "audio/", "audio")...)
	violations = append(violations, validateAsset(cover, "image/", "cover image")...)
	if len(violations) > 0 {
		return nil, apperr.Validation(violations...)
	}

	base := storage.SafeBaseName(uploader, in.Name)
	audioKey := storage.ObjectKey(storage.AudioPrefix, base, audio.Filename)
	coverKey := storage.ObjectKey(storage.CoverPrefix, base, cover.Filename)

	audioRef, err := s.uploads.Upload(ctx, audio.Reader, audio.Size, audio.ContentType, audioKey)
	if err != nil {
		return nil, apperr.Storage("audio upload", err)
	}
	coverRef, err := s.uploads.Upload(ctx, cover.Reader, cover.Size, cover.ContentType, coverKey)
	if err != nil {
		return nil, apperr.Storage("cover upload", err)
	}

	now := time.Now()
	record := &model.Music{
		Name:             strings.TrimSpace(in.Name),
		Description:      in.Description,
		Price:            in.Price,
		Category:         strings.TrimSpace(in.Category),
		ArtistUsername:   uploader,
		AlbumName:        in.AlbumName,
		Genre:            in.Genre,
		ReleaseYear:      in.ReleaseYear,
		ImageURL:         "/assets/" + coverRef,
		AudioFilePath:    audioRef,
		OriginalFileName: audio.Filename,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	id, err := s.records.Create(ctx, record)
	if err != nil {
		return nil, apperr.Storage("music insert", err)
	}
	record.ID = id

	s.log.Info("music uploaded",
		logger.Int64("musicId", id),
		logger.String("artist", uploader),
		logger.String("name", record.Name))
	return record, nil
}

// Get returns one catalog record, going through the cache when present.
func (s *Service) Get(ctx context.Context, id int64) (*model.Music, error) {
	if s.cache != nil {
		if m, ok := s.cache.Get(ctx, id); ok {
			return m, nil
		}
	}
	m, err := s.records.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Storage("music lookup", err)
	}
	if m == nil {
		return nil, apperr.NotFound("music", strconv.FormatInt(id, 10))
	}
	if s.cache != nil {
		s.cache.Set(ctx, m)
	}
	return m, nil
}

// ListAll returns one page of the whole catalog.
func (s *Service) ListAll(ctx context.Context, page, size int) (model.Page[*model.Music], error) {
	var empty model.Page[*model.Music]
	if err := validatePaging(page, size); err != nil {
		return empty, err
	}
	items, total, err := s.records.FindAll(ctx, page*size, size)
	if err != nil {
		return empty, apperr.Storage("music listing", err)
	}
	return model.NewPage(items, page, size, total), nil
}

// ListByGenre returns one page of records with the given genre.
func (s *Service) ListByGenre(ctx context.Context, genre string, page, size int) (model.Page[*model.Music], error) {
	var empty model.Page[*model.Music]
	if strings.TrimSpace(genre) == "" {
		return empty, apperr.Validation("genre is required")
	}
	if err := validatePaging(page, size); err != nil {
		return empty, err
	}
	items, total, err := s.records.FindByGenre(ctx, genre, page*size, size)
	if err != nil {
		return empty, apperr.Storage("genre listing", err)
	}
	return model.NewPage(items, page, size, total), nil
}

// ListByArtist returns one page of the records owned by an artist.
func (s *Service) ListByArtist(ctx context.Context, artist string, page, size int) (model.Page[*model.Music], error) {
	var empty model.Page[*model.Music]
	if strings.TrimSpace(artist) == "" {
		return empty, apperr.Validation("artist is required")
	}
	if err := validatePaging(page, size); err != nil {
		return empty, err
	}
	items, total, err := s.records.FindByArtist(ctx, artist, page*size, size)
	if err != nil {
		return empty, apperr.Storage("artist listing", err)
	}
	return model.NewPage(items, page, size, total), nil
}

// Search matches the query case-insensitively against record name or
// artist username as a substring.
func (s *Service) Search(ctx context.Context, query string, page, size int) (model.Page[*model.Music], error) {
	var empty model.Page[*model.Music]
	if strings.TrimSpace(query) == "" {
		return empty, apperr.Validation("search query is required")
	}
	if err := validatePaging(page, size); err != nil {
		return empty, err
	}
	items, total, err := s.records.SearchByNameOrArtist(ctx, query, page*size, size)
	if err != nil {
		return empty, apperr.Storage("music search", err)
	}
	return model.NewPage(items, page, size, total), nil
}

// loadOwned fetches a record and verifies the caller owns it.
// The check compares authenticated identity against the stored artist
// username; a forged artist field in a payload never reaches this point.
func (s *Service) loadOwned(ctx context.Context, id int64, caller string) (*model.Music, error) {
	m, err := s.records.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Storage("music lookup", err)
	}
	if m == nil {
		return nil, apperr.NotFound("music", strconv.FormatInt(id, 10))
	}
	if m.ArtistUsername != caller {
		return nil, apperr.Unauthorized("caller is not the owning artist")
	}
	return m, nil
}

// Update applies new metadata to a record after existence, ownership, and
// validation checks, in that order. The artist identity never changes.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput, caller string) (*model.Music, error) {
	m, err := s.loadOwned(ctx, id, caller)
	if err != nil {
		return nil, err
	}
	if violations := validateFields(in.Name, in.Category, in.Price, in.Description); len(violations) > 0 {
		return nil, apperr.Validation(violations...)
	}

	m.Name = strings.TrimSpace(in.Name)
	m.Description = in.Description
	m.Price = in.Price
	m.Category = strings.TrimSpace(in.Category)
	m.AlbumName = in.AlbumName
	m.Genre = in.Genre
	m.ReleaseYear = in.ReleaseYear
	m.UpdatedAt = time.Now()

	if err := s.records.Update(ctx, m); err != nil {
		return nil, apperr.Storage("music update", err)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}

	s.log.Info("music updated", logger.Int64("musicId", id), logger.String("artist", caller))
	return m, nil
}

// Delete removes a record and its reviews all-or-nothing, then removes the
// stored assets best effort.
func (s *Service) Delete(ctx context.Context, id int64, caller string) error {
	m, err := s.loadOwned(ctx, id, caller)
	if err != nil {
		return err
	}

	if err := s.records.DeleteWithReviews(ctx, id); err != nil {
		return apperr.Storage("music delete", err)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}

	// Asset removal after the committed delete: a leftover object is
	// preferable to a record pointing at nothing.
	if m.AudioFilePath != "" {
		if err := s.uploads.Remove(ctx, m.AudioFilePath); err != nil {
			s.log.Warn("failed to remove audio asset", logger.Int64("musicId", id), logger.ErrorField(err))
		}
	}
	if key := strings.TrimPrefix(m.ImageURL, "/assets/"); key != "" && key != m.ImageURL {
		if err := s.uploads.Remove(ctx, key); err != nil {
			s.log.Warn("failed to remove cover asset", logger.Int64("musicId", id), logger.ErrorField(err))
		}
	}

	s.log.Info("music deleted", logger.Int64("musicId", id), logger.String("artist", caller))
	return nil
}

// Flag marks a record for moderation. The timestamp, reporter id, and
// flag bit change together in one statement.
func (s *Service) Flag(ctx context.Context, id int64, customerID int64) error {
	m, err := s.records.FindByID(ctx, id)
	if err != nil {
		return apperr.Storage("music lookup", err)
	}
	if m == nil {
		return apperr.NotFound("music", strconv.FormatInt(id, 10))
	}

	if err := s.records.SetFlag(ctx, id, customerID, time.Now()); err != nil {
		return apperr.Storage("music flag", err)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}

	s.log.Info("music flagged", logger.Int64("musicId", id), logger.Int64("customerId", customerID))
	return nil
}

// Unflag clears the whole moderation group. Only the customer who filed
// the flag may retract it. Unflagging an unflagged record is a no-op.
func (s *Service) Unflag(ctx context.Context, id int64, customerID int64) error {
	m, err := s.records.FindByID(ctx, id)
	if err != nil {
		return apperr.Storage("music lookup", err)
	}
	if m == nil {
		return apperr.NotFound("music", strconv.FormatInt(id, 10))
	}
	if !m.IsFlagged {
		return nil
	}
	if m.FlaggedByCustomerID == nil || *m.FlaggedByCustomerID != customerID {
		return apperr.Unauthorized("only the reporting customer can retract a flag")
	}

	if err := s.records.ClearFlag(ctx, id); err != nil {
		return apperr.Storage("music unflag", err)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}

	s.log.Info("music unflagged", logger.Int64("musicId", id), logger.Int64("customerId", customerID))
	return nil
}

// RecomputeRating refreshes the cached average and count from the live
// review set. Called by the review service after every review mutation,
// never routed to API callers directly.
func (s *Service) RecomputeRating(ctx context.Context, id int64) error {
	m, err := s.records.FindByID(ctx, id)
	if err != nil {
		return apperr.Storage("music lookup", err)
	}
	if m == nil {
		return apperr.NotFound("music", strconv.FormatInt(id, 10))
	}

	average, total, err := s.reviews.AggregateForMusic(ctx, id)
	if err != nil {
		return apperr.Storage("review aggregation", err)
	}

	average = math.Round(average*100) / 100
	if average < 0 {
		average = 0
	}
	if average > 5 {
		average = 5
	}

	if err := s.records.UpdateRating(ctx, id, average, total); err != nil {
		return apperr.Storage("rating update", err)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}

	s.log.Debug("rating recomputed",
		logger.Int64("musicId", id),
		logger.Float64("average", average),
		logger.Int("total", total))
	return nil
}
