package handler

import (
	"context"
	"net/http"

	"github.com/forgo/hearth/api/internal/model"
)

// RelationshipService manages interest and access grants
type RelationshipService interface {
	ExpressInterest(ctx context.Context, meID, groupID string) (*model.Relationship, error)
	AcceptInterest(ctx context.Context, meID, userID string) (*model.Relationship, error)
	SetLevel(ctx context.Context, meID, groupID, userID string, level model.AccessLevel) (*model.Relationship, error)
	ListForGroup(ctx context.Context, meID, groupID string) ([]*model.Relationship, error)
}

// RelationshipHandler handles interest and access grant requests
type RelationshipHandler struct {
	svc RelationshipService
}

// NewRelationshipHandler creates a new relationship handler
func NewRelationshipHandler(svc RelationshipService) *RelationshipHandler {
	return &RelationshipHandler{svc: svc}
}

// ExpressInterest handles POST /v1/groups/{groupId}/interest
func (h *RelationshipHandler) ExpressInterest(w http.ResponseWriter, r *http.Request) {
	meID, ok := requireUser(w, r)
	if !ok {
		return
	}
	groupID, ok := pathParam(w, r, "groupId")
	if !ok {
		return
	}

	rel, err := h.svc.ExpressInterest(r.Context(), meID, groupID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, rel, nil)
}

// Accept handles POST /v1/users/{userId}/accept
func (h *RelationshipHandler) Accept(w http.ResponseWriter, r *http.Request) {
	meID, ok := requireUser(w, r)
	if !ok {
		return
	}
	userID, ok := pathParam(w, r, "userId")
	if !ok {
		return
	}

	rel, err := h.svc.AcceptInterest(r.Context(), meID, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, rel, nil)
}

// SetLevel handles PUT /v1/groups/{groupId}/relationships/{userId}
func (h *RelationshipHandler) SetLevel(w http.ResponseWriter, r *http.Request) {
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

	var req model.SetLevelRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	rel, err := h.svc.SetLevel(r.Context(), meID, groupID, userID, req.Level)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, rel, nil)
}

// List handles GET /v1/groups/{groupId}/relationships
func (h *RelationshipHandler) List(w http.ResponseWriter, r *http.Request) {
	meID, ok := requireUser(w, r)
	if !ok {
		return
	}
	groupID, ok := pathParam(w, r, "groupId")
	if !ok {
		return
	}

	rels, err := h.svc.ListForGroup(r.Context(), meID, groupID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteCollection(w, http.StatusOK, rels, nil, nil)
}
