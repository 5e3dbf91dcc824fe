package handler

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/forgo/hearth/api/internal/middleware"
	"github.com/forgo/hearth/api/internal/model"
	"github.com/forgo/hearth/api/internal/service"
)

type mockAuthService struct {
	registerFunc func(ctx context.Context, req model.RegisterRequest) (*model.TokenResponse, error)
	loginFunc    func(ctx context.Context, req model.LoginRequest) (*model.TokenResponse, error)
}

func (m *mockAuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.TokenResponse, error) {
	return m.registerFunc(ctx, req)
}

func (m *mockAuthService) Login(ctx context.Context, req model.LoginRequest) (*model.TokenResponse, error) {
	return m.loginFunc(ctx, req)
}

type mockSearchService struct {
	groupsFunc func(ctx context.Context, meID string, p service.SearchParams) ([]model.SearchedGroup, error)
	housesFunc func(ctx context.Context, meID string, p service.SearchParams) ([]model.SearchedHouse, error)
}

func (m *mockSearchService) SearchGroups(ctx context.Context, meID string, p service.SearchParams) ([]model.SearchedGroup, error) {
	return m.groupsFunc(ctx, meID, p)
}

func (m *mockSearchService) SearchHouses(ctx context.Context, meID string, p service.SearchParams) ([]model.SearchedHouse, error) {
	return m.housesFunc(ctx, meID, p)
}

type mockAssetService struct {
	uploadFunc func(ctx context.Context, data []byte, contentType string) (*model.Asset, error)
	getFunc    func(ctx context.Context, hash string) (*model.Asset, error)
	maxBytes   int
}

func (m *mockAssetService) Upload(ctx context.Context, data []byte, contentType string) (*model.Asset, error) {
	return m.uploadFunc(ctx, data, contentType)
}

func (m *mockAssetService) Get(ctx context.Context, hash string) (*model.Asset, error) {
	return m.getFunc(ctx, hash)
}

func (m *mockAssetService) MaxBytes() int {
	return m.maxBytes
}

type mockChatService struct {
	listGroupsFunc  func(ctx context.Context, meID string) ([]model.GroupView, error)
	sendFunc        func(ctx context.Context, meID, groupID string, req model.SendChatMessageRequest) (*model.ChatMessage, error)
	listFunc        func(ctx context.Context, meID, groupID, before string, limit int) ([]*model.ChatMessage, error)
	subscribeFunc   func(ctx context.Context, meID, groupID, subscriberID string) (*service.Subscriber, error)
	unsubscribeFunc func(groupID, subscriberID string)
}

func (m *mockChatService) ListGroups(ctx context.Context, meID string) ([]model.GroupView, error) {
	return m.listGroupsFunc(ctx, meID)
}

func (m *mockChatService) Send(ctx context.Context, meID, groupID string, req model.SendChatMessageRequest) (*model.ChatMessage, error) {
	return m.sendFunc(ctx, meID, groupID, req)
}

func (m *mockChatService) List(ctx context.Context, meID, groupID, before string, limit int) ([]*model.ChatMessage, error) {
	return m.listFunc(ctx, meID, groupID, before, limit)
}

func (m *mockChatService) Subscribe(ctx context.Context, meID, groupID, subscriberID string) (*service.Subscriber, error) {
	return m.subscribeFunc(ctx, meID, groupID, subscriberID)
}

func (m *mockChatService) Unsubscribe(groupID, subscriberID string) {
	m.unsubscribeFunc(groupID, subscriberID)
}

type mockUserService struct {
	getMeFunc       func(ctx context.Context, meID string) (model.UserView, error)
	updateMeFunc    func(ctx context.Context, meID string, req model.UpdateMeRequest) (model.UserView, error)
	getUserFunc     func(ctx context.Context, meID, userID string) (model.UserView, error)
	subscribeFunc   func(ctx context.Context, meID, subscriberID string) (*service.Subscriber, error)
	unsubscribeFunc func(meID, subscriberID string)
}

func (m *mockUserService) GetMe(ctx context.Context, meID string) (model.UserView, error) {
	return m.getMeFunc(ctx, meID)
}

func (m *mockUserService) UpdateMe(ctx context.Context, meID string, req model.UpdateMeRequest) (model.UserView, error) {
	return m.updateMeFunc(ctx, meID, req)
}

func (m *mockUserService) GetUser(ctx context.Context, meID, userID string) (model.UserView, error) {
	return m.getUserFunc(ctx, meID, userID)
}

func (m *mockUserService) Subscribe(ctx context.Context, meID, subscriberID string) (*service.Subscriber, error) {
	return m.subscribeFunc(ctx, meID, subscriberID)
}

func (m *mockUserService) Unsubscribe(meID, subscriberID string) {
	m.unsubscribeFunc(meID, subscriberID)
}

type mockPinger struct {
	err error
}

func (m mockPinger) Ping(context.Context) error {
	return m.err
}

// authed returns r as seen by a handler behind the auth middleware
func authed(r *http.Request, userID string) *http.Request {
	return r.WithContext(middleware.WithUserID(r.Context(), userID))
}

// serve routes a single request through a mux so path values are set
func serve(pattern string, h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, r)
	return rec
}
