package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/forgo/hearth/api/internal/model"
	"github.com/forgo/hearth/api/internal/service"
)

// AssetService stores and serves content-addressed blobs
type AssetService interface {
	Upload(ctx context.Context, data []byte, contentType string) (*model.Asset, error)
	Get(ctx context.Context, hash string) (*model.Asset, error)
	MaxBytes() int
}

// AssetHandler handles asset uploads and downloads
type AssetHandler struct {
	svc AssetService
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(svc AssetService) *AssetHandler {
	return &AssetHandler{svc: svc}
}

// Upload handles POST /v1/assets. The body is the raw asset; its content
// type is taken from the request as given.
func (h *AssetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	limit := int64(h.svc.MaxBytes())
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeServiceError(w, r, fmt.Errorf("%w: limit %d bytes", service.ErrAssetTooLarge, limit))
			return
		}
		WriteError(w, model.NewBadRequestError("could not read request body"))
		return
	}

	asset, err := h.svc.Upload(r.Context(), data, r.Header.Get("Content-Type"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusCreated, asset, map[string]string{"self": "/v1/assets/" + asset.Hash})
}

// Get handles GET /v1/assets/{hash}
func (h *AssetHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	hash, ok := pathParam(w, r, "hash")
	if !ok {
		return
	}

	asset, err := h.svc.Get(r.Context(), hash)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", asset.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(asset.Data)))
	// the hash names the bytes, so they never change
	w.Header().Set("Cache-Control", "private, max-age=31536000, immutable")
	w.Header().Set("ETag", `"`+asset.Hash+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(asset.Data)
}
