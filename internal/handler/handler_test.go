package handler

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/forgo/hearth/api/internal/middleware"
	"github.com/forgo/hearth/api/internal/model"
	"github.com/forgo/hearth/api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_Register(t *testing.T) {
	t.Parallel()
	svc := &mockAuthService{
		registerFunc: func(ctx context.Context, req model.RegisterRequest) (*model.TokenResponse, error) {
			assert.Equal(t, "ada@example.com", req.Email)
			return &model.TokenResponse{AccessToken: "tok", TokenType: "Bearer", UserID: "u1"}, nil
		},
	}
	h := NewAuthHandler(svc)

	body := `{"email":"ada@example.com","password":"correct horse","color":"#aabbcc","preferred_name":"Ada"}`
	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/register", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Data model.TokenResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "tok", resp.Data.AccessToken)
	assert.Equal(t, "u1", resp.Data.UserID)
}

func TestAuthHandler_RegisterRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	h := NewAuthHandler(&mockAuthService{})

	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/register", strings.NewReader(`{"is_admin":true}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_LoginBadCredentials(t *testing.T) {
	t.Parallel()
	svc := &mockAuthService{
		loginFunc: func(context.Context, model.LoginRequest) (*model.TokenResponse, error) {
			return nil, service.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(svc)

	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(`{"email":"a@b.c","password":"x"}`)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSearchHandler_Groups(t *testing.T) {
	t.Parallel()
	var got service.SearchParams
	svc := &mockSearchService{
		groupsFunc: func(ctx context.Context, meID string, p service.SearchParams) ([]model.SearchedGroup, error) {
			assert.Equal(t, "u1", meID)
			got = p
			return []model.SearchedGroup{{Group: model.GroupView{ID: "g1"}, Distance: 1.5}}, nil
		},
	}
	h := NewSearchHandler(svc)

	req := authed(httptest.NewRequest(http.MethodGet, "/v1/search/groups?lat=40.7&lon=-74&radius=10&unit=km&limit=5&has_house=true", nil), "u1")
	rec := httptest.NewRecorder()
	h.Groups(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 40.7, got.Lat, 1e-9)
	assert.InDelta(t, -74.0, got.Lon, 1e-9)
	assert.InDelta(t, 10.0, got.Radius, 1e-9)
	assert.Equal(t, "km", got.Unit)
	require.NotNil(t, got.Limit)
	assert.Equal(t, 5, *got.Limit)
	require.NotNil(t, got.HasHouse)
	assert.True(t, *got.HasHouse)
	assert.Contains(t, rec.Body.String(), `"distance":1.5`)
}

func TestSearchHandler_BadParams(t *testing.T) {
	t.Parallel()
	svc := &mockSearchService{
		groupsFunc: func(context.Context, string, service.SearchParams) ([]model.SearchedGroup, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}
	h := NewSearchHandler(svc)

	for _, query := range []string{
		"lon=1&radius=1",
		"lat=abc&lon=1&radius=1",
		"lat=1&lon=1&radius=1&limit=0",
		"lat=1&lon=1&radius=1&limit=x",
		"lat=1&lon=1&radius=1&has_house=maybe",
	} {
		t.Run(query, func(t *testing.T) {
			req := authed(httptest.NewRequest(http.MethodGet, "/v1/search/groups?"+query, nil), "u1")
			rec := httptest.NewRecorder()
			h.Groups(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSearchHandler_ServiceRejectsUnit(t *testing.T) {
	t.Parallel()
	svc := &mockSearchService{
		housesFunc: func(context.Context, string, service.SearchParams) ([]model.SearchedHouse, error) {
			return nil, service.ErrInvalidUnit
		},
	}
	h := NewSearchHandler(svc)

	req := authed(httptest.NewRequest(http.MethodGet, "/v1/search/houses?lat=1&lon=1&radius=1&unit=furlong", nil), "u1")
	rec := httptest.NewRecorder()
	h.Houses(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchHandler_RequiresUser(t *testing.T) {
	t.Parallel()
	h := NewSearchHandler(&mockSearchService{})

	rec := httptest.NewRecorder()
	h.Houses(rec, httptest.NewRequest(http.MethodGet, "/v1/search/houses?lat=1&lon=1&radius=1", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAssetHandler_Upload(t *testing.T) {
	t.Parallel()
	svc := &mockAssetService{
		maxBytes: 16,
		uploadFunc: func(ctx context.Context, data []byte, contentType string) (*model.Asset, error) {
			assert.Equal(t, []byte("png-bytes"), data)
			assert.Equal(t, "image/png", contentType)
			return &model.Asset{Hash: "abc", ContentType: contentType, Size: len(data)}, nil
		},
	}
	h := NewAssetHandler(svc)

	req := authed(httptest.NewRequest(http.MethodPost, "/v1/assets", strings.NewReader("png-bytes")), "u1")
	req.Header.Set("Content-Type", "image/png")
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"self":"/v1/assets/abc"`)
}

func TestAssetHandler_UploadTooLarge(t *testing.T) {
	t.Parallel()
	svc := &mockAssetService{
		maxBytes: 4,
		uploadFunc: func(context.Context, []byte, string) (*model.Asset, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}
	h := NewAssetHandler(svc)

	req := authed(httptest.NewRequest(http.MethodPost, "/v1/assets", bytes.NewReader(make([]byte, 5))), "u1")
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestAssetHandler_Get(t *testing.T) {
	t.Parallel()
	svc := &mockAssetService{
		getFunc: func(ctx context.Context, hash string) (*model.Asset, error) {
			if hash != "abc" {
				return nil, service.ErrAssetNotFound
			}
			return &model.Asset{Hash: "abc", Data: []byte("GIF89a"), ContentType: "image/gif"}, nil
		},
	}
	h := NewAssetHandler(svc)

	rec := serve("GET /v1/assets/{hash}", h.Get, authed(httptest.NewRequest(http.MethodGet, "/v1/assets/abc", nil), "u1"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/gif", rec.Header().Get("Content-Type"))
	assert.Equal(t, "6", rec.Header().Get("Content-Length"))
	assert.Equal(t, `"abc"`, rec.Header().Get("ETag"))
	assert.Equal(t, "GIF89a", rec.Body.String())

	rec = serve("GET /v1/assets/{hash}", h.Get, authed(httptest.NewRequest(http.MethodGet, "/v1/assets/nope", nil), "u1"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatHandler_ListMessagesPagination(t *testing.T) {
	t.Parallel()
	var gotBefore string
	var gotLimit int
	svc := &mockChatService{
		listFunc: func(ctx context.Context, meID, groupID, before string, limit int) ([]*model.ChatMessage, error) {
			assert.Equal(t, "g1", groupID)
			gotBefore, gotLimit = before, limit
			return []*model.ChatMessage{{ID: "30"}, {ID: "20"}}, nil
		},
	}
	h := NewChatHandler(svc)

	rec := serve("GET /v1/chat/groups/{groupId}/messages", h.ListMessages,
		authed(httptest.NewRequest(http.MethodGet, "/v1/chat/groups/g1/messages?before=40&limit=2", nil), "u1"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "40", gotBefore)
	assert.Equal(t, 2, gotLimit)

	var resp CollectionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Pagination)
	assert.True(t, resp.Pagination.HasMore)
	assert.Equal(t, "20", resp.Pagination.Cursor)
}

func TestChatHandler_ListMessagesLastPage(t *testing.T) {
	t.Parallel()
	svc := &mockChatService{
		listFunc: func(ctx context.Context, meID, groupID, before string, limit int) ([]*model.ChatMessage, error) {
			assert.Equal(t, model.DefaultChatPageSize, limit)
			return []*model.ChatMessage{{ID: "1"}}, nil
		},
	}
	h := NewChatHandler(svc)

	rec := serve("GET /v1/chat/groups/{groupId}/messages", h.ListMessages,
		authed(httptest.NewRequest(http.MethodGet, "/v1/chat/groups/g1/messages", nil), "u1"))

	var resp CollectionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Pagination)
	assert.False(t, resp.Pagination.HasMore)
	assert.Empty(t, resp.Pagination.Cursor)
}

func TestChatHandler_SendForbidden(t *testing.T) {
	t.Parallel()
	svc := &mockChatService{
		sendFunc: func(context.Context, string, string, model.SendChatMessageRequest) (*model.ChatMessage, error) {
			return nil, service.ErrPermissionDenied
		},
	}
	h := NewChatHandler(svc)

	body := `{"content":{"type":"text","markdown":"hi"}}`
	rec := serve("POST /v1/chat/groups/{groupId}/messages", h.Send,
		authed(httptest.NewRequest(http.MethodPost, "/v1/chat/groups/g1/messages", strings.NewReader(body)), "u1"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestChatHandler_Stream(t *testing.T) {
	t.Parallel()
	hub := service.NewEventHub(time.Hour)
	defer hub.Close()

	var unsubscribed atomic.Bool
	svc := &mockChatService{
		subscribeFunc: func(ctx context.Context, meID, groupID, subscriberID string) (*service.Subscriber, error) {
			return hub.Subscribe(groupID, subscriberID), nil
		},
		unsubscribeFunc: func(groupID, subscriberID string) {
			hub.Unsubscribe(groupID, subscriberID)
			unsubscribed.Store(true)
		},
	}
	h := NewChatHandler(svc)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/chat/groups/{groupId}/stream", func(w http.ResponseWriter, r *http.Request) {
		h.Stream(w, authed(r, "u1"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/chat/groups/g1/stream", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewReader(resp.Body)
	readEvent := func() string {
		line, err := lines.ReadString('\n')
		require.NoError(t, err)
		return strings.TrimSpace(line)
	}

	assert.Equal(t, "event: connected", readEvent())
	for readEvent() != "" {
	}

	hub.Publish(&service.Event{
		Type:    service.EventChatMessage,
		GroupID: "g1",
		Data:    model.ChatMessage{ID: "42", GroupID: "g1"},
	})
	assert.Equal(t, "event: chat.message", readEvent())
	assert.Contains(t, readEvent(), `"id":"42"`)

	cancel()
	assert.Eventually(t, unsubscribed.Load, time.Second, 5*time.Millisecond)
	assert.Zero(t, hub.SubscriberCount("g1"))
}

func TestChatHandler_StreamDenied(t *testing.T) {
	t.Parallel()
	svc := &mockChatService{
		subscribeFunc: func(context.Context, string, string, string) (*service.Subscriber, error) {
			return nil, service.ErrPermissionDenied
		},
	}
	h := NewChatHandler(svc)

	rec := serve("GET /v1/chat/groups/{groupId}/stream", h.Stream,
		authed(httptest.NewRequest(http.MethodGet, "/v1/chat/groups/g1/stream", nil), "u1"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUserHandler_Stream(t *testing.T) {
	t.Parallel()
	hub := service.NewEventHub(time.Hour)
	defer hub.Close()

	var unsubscribed atomic.Bool
	svc := &mockUserService{
		subscribeFunc: func(ctx context.Context, meID, subscriberID string) (*service.Subscriber, error) {
			return hub.SubscribeUser(meID, subscriberID), nil
		},
		unsubscribeFunc: func(meID, subscriberID string) {
			hub.UnsubscribeUser(meID, subscriberID)
			unsubscribed.Store(true)
		},
	}
	h := NewUserHandler(svc)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/users/me/stream", func(w http.ResponseWriter, r *http.Request) {
		h.Stream(w, authed(r, "u1"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/users/me/stream", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	lines := bufio.NewReader(resp.Body)
	readLine := func() string {
		line, err := lines.ReadString('\n')
		require.NoError(t, err)
		return strings.TrimSpace(line)
	}
	assert.Equal(t, "event: connected", readLine())
	for readLine() != "" {
	}

	hub.SendToUser("u1", &service.Event{Type: service.EventInterestAccepted, Data: map[string]string{"group_id": "g1"}})
	assert.Equal(t, "event: user.interest_accepted", readLine())
	assert.Contains(t, readLine(), `"group_id":"g1"`)

	cancel()
	assert.Eventually(t, unsubscribed.Load, time.Second, 5*time.Millisecond)
}

func TestUserHandler_StreamUnknownUser(t *testing.T) {
	t.Parallel()
	svc := &mockUserService{
		subscribeFunc: func(context.Context, string, string) (*service.Subscriber, error) {
			return nil, service.ErrUserNotFound
		},
	}

	rec := serve("GET /v1/users/me/stream", NewUserHandler(svc).Stream,
		authed(httptest.NewRequest(http.MethodGet, "/v1/users/me/stream", nil), "u1"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	NewHealthHandler(mockPinger{}).Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	NewHealthHandler(mockPinger{err: errors.New("down")}).Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "degraded")
}

func TestRegisterRoutes(t *testing.T) {
	t.Parallel()
	h := &Handlers{
		Health:       NewHealthHandler(mockPinger{}),
		Auth:         NewAuthHandler(&mockAuthService{}),
		User:         NewUserHandler(nil),
		Group:        NewGroupHandler(nil),
		Relationship: NewRelationshipHandler(nil),
		House:        NewHouseHandler(nil),
		Search:       NewSearchHandler(&mockSearchService{}),
		Chat:         NewChatHandler(&mockChatService{}),
		Asset:        NewAssetHandler(&mockAssetService{}),
	}
	// rejects every request, so no service is reached behind it
	denyAll := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			WriteError(w, model.NewUnauthorizedError("authentication required"))
		})
	}
	mux := http.NewServeMux()
	h.RegisterRoutes(mux, denyAll)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodPost, "/v1/auth/login", http.StatusBadRequest},
		{http.MethodGet, "/v1/users/me", http.StatusUnauthorized},
		{http.MethodGet, "/v1/users/me/stream", http.StatusUnauthorized},
		{http.MethodGet, "/v1/users/u2", http.StatusUnauthorized},
		{http.MethodPost, "/v1/groups", http.StatusUnauthorized},
		{http.MethodPut, "/v1/groups/g1/relationships/u2", http.StatusUnauthorized},
		{http.MethodDelete, "/v1/houses/h1", http.StatusUnauthorized},
		{http.MethodGet, "/v1/search/groups", http.StatusUnauthorized},
		{http.MethodGet, "/v1/chat/groups/g1/stream", http.StatusUnauthorized},
		{http.MethodGet, "/v1/assets/abc", http.StatusUnauthorized},
		{http.MethodPost, "/v1/users/me", http.StatusMethodNotAllowed},
		{http.MethodGet, "/v1/nothing", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRegisterRoutes_AuthenticatedUser(t *testing.T) {
	t.Parallel()
	h := &Handlers{
		Health: NewHealthHandler(mockPinger{}),
		Auth:   NewAuthHandler(&mockAuthService{}),
		Chat: NewChatHandler(&mockChatService{
			listGroupsFunc: func(ctx context.Context, meID string) ([]model.GroupView, error) {
				return []model.GroupView{{ID: "g-" + meID}}, nil
			},
		}),
	}
	asUser := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithUserID(r.Context(), "u7")))
		})
	}
	mux := http.NewServeMux()
	h.RegisterRoutes(mux, asUser)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/chat/groups", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"g-u7"`)
}
