package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/forgo/hearth/api/internal/model"
	"github.com/forgo/hearth/api/internal/service"
)

// SearchService ranks groups and houses by distance
type SearchService interface {
	SearchGroups(ctx context.Context, meID string, p service.SearchParams) ([]model.SearchedGroup, error)
	SearchHouses(ctx context.Context, meID string, p service.SearchParams) ([]model.SearchedHouse, error)
}

// SearchHandler handles proximity search requests
type SearchHandler struct {
	svc SearchService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(svc SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

// Groups handles GET /v1/search/groups?lat&lon&radius&unit&limit&has_house
func (h *SearchHandler) Groups(w http.ResponseWriter, r *http.Request) {
	meID, ok := requireUser(w, r)
	if !ok {
		return
	}
	params, ok := searchParams(w, r)
	if !ok {
		return
	}
	if raw := r.URL.Query().Get("has_house"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			WriteError(w, model.NewBadRequestError("has_house must be true or false"))
			return
		}
		params.HasHouse = &v
	}

	results, err := h.svc.SearchGroups(r.Context(), meID, params)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteCollection(w, http.StatusOK, results, nil, nil)
}

// Houses handles GET /v1/search/houses?lat&lon&radius&unit&limit
func (h *SearchHandler) Houses(w http.ResponseWriter, r *http.Request) {
	meID, ok := requireUser(w, r)
	if !ok {
		return
	}
	params, ok := searchParams(w, r)
	if !ok {
		return
	}

	results, err := h.svc.SearchHouses(r.Context(), meID, params)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteCollection(w, http.StatusOK, results, nil, nil)
}

// searchParams reads the query parameters shared by both searches. Range
// checks are left to the service.
func searchParams(w http.ResponseWriter, r *http.Request) (service.SearchParams, bool) {
	q := r.URL.Query()
	var p service.SearchParams

	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"lat", &p.Lat},
		{"lon", &p.Lon},
		{"radius", &p.Radius},
	} {
		raw := q.Get(f.name)
		if raw == "" {
			WriteError(w, model.NewBadRequestError(f.name+" is required"))
			return p, false
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			WriteError(w, model.NewBadRequestError(f.name+" must be a number"))
			return p, false
		}
		*f.dst = v
	}

	limit, err := queryInt(r, "limit")
	if err != nil || (limit != nil && *limit < 1) {
		WriteError(w, model.NewBadRequestError("limit must be a positive integer"))
		return p, false
	}
	p.Limit = limit
	p.Unit = q.Get("unit")
	return p, true
}
