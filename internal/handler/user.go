package handler

import (
	"context"
	"net/http"

	"github.com/forgo/hearth/api/internal/model"
	"github.com/forgo/hearth/api/internal/service"
)

// UserService serves user profiles
type UserService interface {
	GetMe(ctx context.Context, meID string) (model.UserView, error)
	UpdateMe(ctx context.Context, meID string, req model.UpdateMeRequest) (model.UserView, error)
	GetUser(ctx context.Context, meID, userID string) (model.UserView, error)
	Subscribe(ctx context.Context, meID, subscriberID string) (*service.Subscriber, error)
	Unsubscribe(meID, subscriberID string)
}

// UserHandler handles user HTTP requests
type UserHandler struct {
	svc UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// GetMe handles GET /v1/users/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	meID, ok := requireUser(w, r)
	if !ok {
		return
	}

	view, err := h.svc.GetMe(r.Context(), meID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, view, nil)
}

// UpdateMe handles PATCH /v1/users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	meID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.UpdateMeRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	view, err := h.svc.UpdateMe(r.Context(), meID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, view, nil)
}

// Get handles GET /v1/users/{userId}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	meID, ok := requireUser(w, r)
	if !ok {
		return
	}
	userID, ok := pathParam(w, r, "userId")
	if !ok {
		return
	}

	view, err := h.svc.GetUser(r.Context(), meID, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, view, nil)
}

// Stream handles GET /v1/users/me/stream, the caller's personal event
// stream.
func (h *UserHandler) Stream(w http.ResponseWriter, r *http.Request) {
	meID, ok := requireUser(w, r)
	if !ok {
		return
	}

	serveEvents(w, r,
		func(id string) (*service.Subscriber, error) { return h.svc.Subscribe(r.Context(), meID, id) },
		func(id string) { h.svc.Unsubscribe(meID, id) },
	)
}
