package controllers

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"

	"eventbooking/internal/delivery/http/helpers"
	"eventbooking/internal/domain"
)

type AssetController struct {
	Logger *slog.Logger
	Store  domain.AssetStore
}

func NewAssetController(logger *slog.Logger, store domain.AssetStore) *AssetController {
	return &AssetController{
		Logger: logger,
		Store:  store,
	}
}

// Serve godoc
// @Summary Serve an uploaded image
// @Description Streams a stored event image by its reference. Public.
// @Tags uploads
// @Produce image/jpeg
// @Param ref path string true "Image reference"
// @Success 200 {file} binary "image bytes"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /uploads/{ref} [get]
func (c *AssetController) Serve(w http.ResponseWriter, r *http.Request) {
	ref := r.PathValue("ref")
	if ref == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing ref")
		return
	}
	rc, err := c.Store.Open(ref)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "image not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(ref))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, rc); err != nil {
		c.Logger.WarnContext(r.Context(), "image stream interrupted", "ref", ref, "err", err)
	}
}
