package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"tunemart/apperr"
	"tunemart/core/catalog"
	"tunemart/logger"
)

// UploadMusicHandler creates a new listing from a multipart form.
// Expected fields: name, category, price, description, albumName, genre,
// releaseYear; files: musicFile, coverImage. Any artist field in the
// payload is ignored — ownership comes from the token.
func (h *APIHandler) UploadMusicHandler(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.log.Warn("failed to parse upload form", logger.ErrorField(err))
		writeJSON(w, http.StatusBadRequest, "Failed to parse upload form", nil)
		return
	}

	// A missing price flows through as zero so the service reports it with
	// the rest of the violation list; a malformed one is rejected here.
	price := 0.0
	if raw := r.FormValue("price"); raw != "" {
		var err error
		price, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, h.log, apperr.Validation("price must be a number"))
			return
		}
	}
	releaseYear := 0
	if raw := r.FormValue("releaseYear"); raw != "" {
		releaseYear, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, h.log, apperr.Validation("releaseYear must be an integer"))
			return
		}
	}
	in := catalog.UploadInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       price,
		Category:    r.FormValue("category"),
		AlbumName:   r.FormValue("albumName"),
		Genre:       r.FormValue("genre"),
		ReleaseYear: releaseYear,
	}

	audio, closeAudio, err := formAsset(r, "musicFile", h.cfg.MaxAudioUploadSize)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	defer closeAudio()
	cover, closeCover, err := formAsset(r, "coverImage", h.cfg.MaxImageUploadSize)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	defer closeCover()

	record, err := h.catalog.Upload(r.Context(), in, audio, cover, claims.Username)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, "Music uploaded successfully", record)
}

// formAsset pulls one uploaded file out of the multipart form. A missing
// file comes back as a zero Asset so the service reports it alongside the
// other validation failures.
func formAsset(r *http.Request, field string, maxSize int64) (catalog.Asset, func(), error) {
	noop := func() {}
	file, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return catalog.Asset{}, noop, nil
		}
		return catalog.Asset{}, noop, apperr.Validation("failed to read " + field)
	}
	if header.Size > maxSize {
		file.Close()
		return catalog.Asset{}, noop, apperr.Validation(field + " exceeds the maximum allowed size")
	}
	asset := catalog.Asset{
		Reader:      file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Filename:    header.Filename,
	}
	return asset, func() { file.Close() }, nil
}

// GetMusicHandler returns one listing.
func (h *APIHandler) GetMusicHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	record, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, "OK", record)
}

// ListMusicHandler returns one page of the whole catalog.
func (h *APIHandler) ListMusicHandler(w http.ResponseWriter, r *http.Request) {
	page, size, err := parsePaging(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	result, err := h.catalog.ListAll(r.Context(), page, size)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, "OK", result)
}

// ListByGenreHandler returns one page of listings with the given genre.
func (h *APIHandler) ListByGenreHandler(w http.ResponseWriter, r *http.Request) {
	page, size, err := parsePaging(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	result, err := h.catalog.ListByGenre(r.Context(), mux.Vars(r)["genre"], page, size)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, "OK", result)
}

// SearchMusicHandler matches ?q= against listing name or artist username.
func (h *APIHandler) SearchMusicHandler(w http.ResponseWriter, r *http.Request) {
	page, size, err := parsePaging(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	result, err := h.catalog.Search(r.Context(), r.URL.Query().Get("q"), page, size)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, "OK", result)
}

// MyMusicHandler returns one page of the authenticated artist's listings.
func (h *APIHandler) MyMusicHandler(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	page, size, err := parsePaging(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	result, err := h.catalog.ListByArtist(r.Context(), claims.Username, page, size)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, "OK", result)
}

// updateMusicRequest is the JSON body for metadata updates. An
// artistUsername field, if supplied, is dropped on the floor.
type updateMusicRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	AlbumName   string  `json:"albumName"`
	Genre       string  `json:"genre"`
	ReleaseYear int     `json:"releaseYear"`
}

// UpdateMusicHandler edits a listing's metadata. Ownership is verified
// inside the catalog service against the token identity.
func (h *APIHandler) UpdateMusicHandler(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	var req updateMusicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	record, err := h.catalog.Update(r.Context(), id, catalog.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		AlbumName:   req.AlbumName,
		Genre:       req.Genre,
		ReleaseYear: req.ReleaseYear,
	}, claims.Username)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, "Music updated successfully", record)
}

// DeleteMusicHandler removes a listing and its reviews.
func (h *APIHandler) DeleteMusicHandler(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := h.catalog.Delete(r.Context(), id, claims.Username); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, "Music deleted successfully", nil)
}

// FlagMusicHandler lets a customer report a listing for moderation.
func (h *APIHandler) FlagMusicHandler(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := h.catalog.Flag(r.Context(), id, claims.UserID); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, "Music flagged for review", nil)
}

// UnflagMusicHandler lets the reporting customer retract a flag.
func (h *APIHandler) UnflagMusicHandler(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := h.catalog.Unflag(r.Context(), id, claims.UserID); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, "Flag removed", nil)
}
