package server

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"

	"tunemart/logger"
)

// AssetHandler streams a stored object (cover art or purchased audio)
// out of the bucket.
func (h *APIHandler) AssetHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	objectKey := vars["kind"] + "/" + vars["object"]

	object, err := h.uploads.Fetch(r.Context(), objectKey)
	if err != nil {
		writeJSON(w, http.StatusNotFound, "File not found", nil)
		return
	}
	defer object.Close()

	contentType := mime.TypeByExtension(filepath.Ext(objectKey))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000")

	if _, err := io.Copy(w, object); err != nil {
		h.log.Error("error streaming asset", logger.String("objectKey", objectKey), logger.ErrorField(err))
	}
}
