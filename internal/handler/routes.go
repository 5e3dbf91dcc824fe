package handler

import "net/http"

// Handlers groups every HTTP handler of the API for route registration
type Handlers struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	User         *UserHandler
	Group        *GroupHandler
	Relationship *RelationshipHandler
	House        *HouseHandler
	Search       *SearchHandler
	Chat         *ChatHandler
	Asset        *AssetHandler
}

// RegisterRoutes registers the public routes directly and every other route
// behind requireAuth
func (h *Handlers) RegisterRoutes(mux *http.ServeMux, requireAuth func(http.Handler) http.Handler) {
	protected := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, requireAuth(fn))
	}

	// Public
	mux.HandleFunc("GET /health", h.Health.Health)
	mux.HandleFunc("POST /v1/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /v1/auth/login", h.Auth.Login)

	// Users
	protected("GET /v1/users/me", h.User.GetMe)
	protected("PATCH /v1/users/me", h.User.UpdateMe)
	protected("GET /v1/users/me/stream", h.User.Stream)
	protected("GET /v1/users/{userId}", h.User.Get)
	protected("POST /v1/users/{userId}/accept", h.Relationship.Accept)

	// Groups
	protected("POST /v1/groups", h.Group.Create)
	protected("GET /v1/groups/{groupId}", h.Group.Get)
	protected("PATCH /v1/groups/{groupId}", h.Group.Update)
	protected("DELETE /v1/groups/{groupId}", h.Group.Delete)
	protected("POST /v1/groups/{groupId}/leave", h.Group.Leave)
	protected("POST /v1/groups/{groupId}/members/{userId}", h.Group.AddMember)
	protected("POST /v1/groups/{groupId}/interest", h.Relationship.ExpressInterest)
	protected("GET /v1/groups/{groupId}/relationships", h.Relationship.List)
	protected("PUT /v1/groups/{groupId}/relationships/{userId}", h.Relationship.SetLevel)

	// Houses
	protected("POST /v1/houses", h.House.Create)
	protected("GET /v1/houses/{houseId}", h.House.Get)
	protected("PATCH /v1/houses/{houseId}", h.House.Update)
	protected("DELETE /v1/houses/{houseId}", h.House.Delete)

	// Search
	protected("GET /v1/search/groups", h.Search.Groups)
	protected("GET /v1/search/houses", h.Search.Houses)

	// Chat
	protected("GET /v1/chat/groups", h.Chat.ListGroups)
	protected("GET /v1/chat/groups/{groupId}/messages", h.Chat.ListMessages)
	protected("POST /v1/chat/groups/{groupId}/messages", h.Chat.Send)
	protected("GET /v1/chat/groups/{groupId}/stream", h.Chat.Stream)

	// Assets
	protected("POST /v1/assets", h.Asset.Upload)
	protected("GET /v1/assets/{hash}", h.Asset.Get)
}
