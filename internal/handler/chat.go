package handler

import (
	"context"
	"net/http"

	"github.com/forgo/hearth/api/internal/model"
	"github.com/forgo/hearth/api/internal/service"
)

// ChatService is the group chat API
type ChatService interface {
	ListGroups(ctx context.Context, meID string) ([]model.GroupView, error)
	Send(ctx context.Context, meID, groupID string, req model.SendChatMessageRequest) (*model.ChatMessage, error)
	List(ctx context.Context, meID, groupID, before string, limit int) ([]*model.ChatMessage, error)
	Subscribe(ctx context.Context, meID, groupID, subscriberID string) (*service.Subscriber, error)
	Unsubscribe(groupID, subscriberID string)
}

// ChatHandler handles chat requests and the SSE message stream
type ChatHandler struct {
	svc ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(svc ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// ListGroups handles GET /v1/chat/groups
func (h *ChatHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	meID, ok := requireUser(w, r)
	if !ok {
		return
	}

	groups, err := h.svc.ListGroups(r.Context(), meID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteCollection(w, http.StatusOK, groups, nil, nil)
}

// ListMessages handles GET /v1/chat/groups/{groupId}/messages?before&limit
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	meID, ok := requireUser(w, r)
	if !ok {
		return
	}
	groupID, ok := pathParam(w, r, "groupId")
	if !ok {
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		WriteError(w, model.NewBadRequestError("limit must be an integer"))
		return
	}
	n := model.DefaultChatPageSize
	if limit != nil {
		n = *limit
	}

	msgs, err := h.svc.List(r.Context(), meID, groupID, r.URL.Query().Get("before"), n)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	// a full page means older messages may remain
	pagination := &PaginationInfo{HasMore: len(msgs) > 0 && len(msgs) >= min(max(n, 1), model.MaxChatPageSize)}
	if pagination.HasMore {
		pagination.Cursor = msgs[len(msgs)-1].ID
	}
	WriteCollection(w, http.StatusOK, msgs, pagination, nil)
}

// Send handles POST /v1/chat/groups/{groupId}/messages
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	meID, ok := requireUser(w, r)
	if !ok {
		return
	}
	groupID, ok := pathParam(w, r, "groupId")
	if !ok {
		return
	}

	var req model.SendChatMessageRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	msg, err := h.svc.Send(r.Context(), meID, groupID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusCreated, msg, nil)
}

// Stream handles GET /v1/chat/groups/{groupId}/stream.
// This endpoint streams new messages of the group as server-sent events.
func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	meID, ok := requireUser(w, r)
	if !ok {
		return
	}
	groupID, ok := pathParam(w, r, "groupId")
	if !ok {
		return
	}

	serveEvents(w, r,
		func(id string) (*service.Subscriber, error) { return h.svc.Subscribe(r.Context(), meID, groupID, id) },
		func(id string) { h.svc.Unsubscribe(groupID, id) },
	)
}
