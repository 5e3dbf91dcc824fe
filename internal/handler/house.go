package handler

import (
	"context"
	"net/http"

	"github.com/forgo/hearth/api/internal/model"
)

// HouseService manages a group's house
type HouseService interface {
	Create(ctx context.Context, meID string, req model.HouseRequest) (model.HouseView, error)
	Get(ctx context.Context, meID, houseID string) (model.HouseView, error)
	Update(ctx context.Context, meID, houseID string, req model.HouseRequest) (model.HouseView, error)
	Delete(ctx context.Context, meID, houseID string) error
}

// HouseHandler handles house HTTP requests
type HouseHandler struct {
	svc HouseService
}

// NewHouseHandler creates a new house handler
func NewHouseHandler(svc HouseService) *HouseHandler {
	return &HouseHandler{svc: svc}
}

// Create handles POST /v1/houses
func (h *HouseHandler) Create(w http.ResponseWriter, r *http.Request) {
	meID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.HouseRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	view, err := h.svc.Create(r.Context(), meID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusCreated, view, nil)
}

// Get handles GET /v1/houses/{houseId}
func (h *HouseHandler) Get(w http.ResponseWriter, r *http.Request) {
	meID, ok := requireUser(w, r)
	if !ok {
		return
	}
	houseID, ok := pathParam(w, r, "houseId")
	if !ok {
		return
	}

	view, err := h.svc.Get(r.Context(), meID, houseID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, view, nil)
}

// Update handles PATCH /v1/houses/{houseId}
func (h *HouseHandler) Update(w http.ResponseWriter, r *http.Request) {
	meID, ok := requireUser(w, r)
	if !ok {
		return
	}
	houseID, ok := pathParam(w, r, "houseId")
	if !ok {
		return
	}

	var req model.HouseRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	view, err := h.svc.Update(r.Context(), meID, houseID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, view, nil)
}

// Delete handles DELETE /v1/houses/{houseId}
func (h *HouseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	meID, ok := requireUser(w, r)
	if !ok {
		return
	}
	houseID, ok := pathParam(w, r, "houseId")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), meID, houseID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteNoContent(w)
}
