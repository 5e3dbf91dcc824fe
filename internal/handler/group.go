package handler

import (
	"context"
	"net/http"

	"github.com/forgo/hearth/api/internal/model"
)

// GroupService manages groups and membership
type GroupService interface {
	Create(ctx context.Context, meID string, req model.CreateGroupRequest) (model.GroupView, error)
	Get(ctx context.Context, meID, groupID string) (model.GroupView, error)
	Update(ctx context.Context, meID, groupID string, req model.UpdateGroupRequest) (model.GroupView, error)
	Delete(ctx context.Context, meID, groupID string) error
	Leave(ctx context.Context, meID, groupID string) error
	AddMember(ctx context.Context, meID, groupID, userID string) (model.GroupView, error)
}

// GroupHandler handles group HTTP requests
type GroupHandler struct {
	svc GroupService
}

// NewGroupHandler creates a new group handler
func NewGroupHandler(svc GroupService) *GroupHandler {
	return &GroupHandler{svc: svc}
}

// Create handles POST /v1/groups
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	meID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateGroupRequest
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

// Get handles GET /v1/groups/{groupId}
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	meID, ok := requireUser(w, r)
	if !ok {
		return
	}
	groupID, ok := pathParam(w, r, "groupId")
	if !ok {
		return
	}

	view, err := h.svc.Get(r.Context(), meID, groupID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, view, nil)
}

// Update handles PATCH /v1/groups/{groupId}
func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	meID, ok := requireUser(w, r)
	if !ok {
		return
	}
	groupID, ok := pathParam(w, r, "groupId")
	if !ok {
		return
	}

	var req model.UpdateGroupRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	view, err := h.svc.Update(r.Context(), meID, groupID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, view, nil)
}

// Delete handles DELETE /v1/groups/{groupId}
func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	meID, ok := requireUser(w, r)
	if !ok {
		return
	}
	groupID, ok := pathParam(w, r, "groupId")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), meID, groupID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteNoContent(w)
}

// Leave handles POST /v1/groups/{groupId}/leave
func (h *GroupHandler) Leave(w http.ResponseWriter, r *http.Request) {
	meID, ok := requireUser(w, r)
	if !ok {
		return
	}
	groupID, ok := pathParam(w, r, "groupId")
	if !ok {
		return
	}

	if err := h.svc.Leave(r.Context(), meID, groupID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteNoContent(w)
}

// AddMember handles POST /v1/groups/{groupId}/members/{userId}
func (h *GroupHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	meID, ok := requireUser(w, r)
	if !ok {
		return
	}
	groupID, ok := pathParam(w, r, "groupId")
	if !ok {
		return
	}
	userID, ok := pathParam(w, r, "userId")
	if !ok {
		return
	}

	view, err := h.svc.AddMember(r.Context(), meID, groupID, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, view, nil)
}
