package server

import (
	"context"
	"net/http"
	"strconv"

	"tunemart/apperr"
	"tunemart/config"
	"tunemart/core/auth"
	"tunemart/core/catalog"
	"tunemart/core/review"
	"tunemart/logger"
	"tunemart/model"
	"tunemart/repository"
	"tunemart/storage"
)

// CatalogService captures the catalog operations the HTTP handlers need.
type CatalogService interface {
	Upload(ctx context.Context, in catalog.UploadInput, audio, cover catalog.Asset, uploader string) (*model.Music, error)
	Get(ctx context.Context, id int64) (*model.Music, error)
	ListAll(ctx context.Context, page, size int) (model.Page[*model.Music], error)
	ListByGenre(ctx context.Context, genre string, page, size int) (model.Page[*model.Music], error)
	ListByArtist(ctx context.Context, artist string, page, size int) (model.Page[*model.Music], error)
	Search(ctx context.Context, query string, page, size int) (model.Page[*model.Music], error)
	Update(ctx context.Context, id int64, in catalog.UpdateInput, caller string) (*model.Music, error)
	Delete(ctx context.Context, id int64, caller string) error
	Flag(ctx context.Context, id int64, customerID int64) error
	Unflag(ctx context.Context, id int64, customerID int64) error
}

// ReviewService captures the review operations the HTTP handlers need.
type ReviewService interface {
	Create(ctx context.Context, musicID int64, in review.Input, customer string) (*model.Review, error)
	Update(ctx context.Context, id int64, in review.Input, customer string) (*model.Review, error)
	Delete(ctx context.Context, id int64, customer string) error
	ListByMusic(ctx context.Context, musicID int64, page, size int) (model.Page[*model.Review], error)
}

// APIHandler holds every collaborator the HTTP layer talks to.
type APIHandler struct {
	catalog CatalogService
	reviews ReviewService
	users   repository.UserRepository
	uploads storage.Uploader
	tokens  *auth.TokenIssuer
	cfg     *config.Config
	log     *logger.Logger
}

// NewAPIHandler creates the handler set for the marketplace API.
func NewAPIHandler(
	catalogSvc CatalogService,
	reviewSvc ReviewService,
	users repository.UserRepository,
	uploads storage.Uploader,
	tokens *auth.TokenIssuer,
	cfg *config.Config,
	log *logger.Logger,
) *APIHandler {
	return &APIHandler{
		catalog: catalogSvc,
		reviews: reviewSvc,
		users:   users,
		uploads: uploads,
		tokens:  tokens,
		cfg:     cfg,
		log:     log,
	}
}

// parsePaging reads page/size query parameters with defaults page=0 size=10.
// Range rules (page >= 0, size > 0) are enforced by the services.
func parsePaging(r *http.Request) (int, int, error) {
	page, size := 0, 10
	if raw := r.URL.Query().Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, apperr.Validation("page index must be an integer")
		}
		page = v
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, apperr.Validation("page size must be an integer")
		}
		size = v
	}
	return page, size, nil
}

// pathID reads the {id} route variable as an int64.
func pathID(vars map[string]string, name string) (int64, error) {
	id, err := strconv.ParseInt(vars[name], 10, 64)
	if err != nil {
		return 0, apperr.Validation(name + " must be a numeric id")
	}
	return id, nil
}
