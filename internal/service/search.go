package service

import (
	"context"
	"iter"
	"math"
	"time"

	"github.com/forgo/hearth/api/internal/model"
)

// SearchParams are the inputs of a proximity search. A nil Limit uses the
// service default; an explicit zero returns nothing.
type SearchParams struct {
	Lat      float64
	Lon      float64
	Radius   float64
	Unit     string
	Limit    *int
	HasHouse *bool
}

// SearchObserver is notified after each search
type SearchObserver interface {
	ObserveSearch(kind string, results int, elapsed time.Duration)
}

// SearchService finds groups and houses near a point
type SearchService struct {
	groupRepo    GroupRepository
	houseRepo    HouseRepository
	userRepo     UserReader
	access       *AccessResolver
	observer     SearchObserver
	defaultLimit int
	maxLimit     int
	defaultUnit  DistanceUnit
}

// SearchServiceConfig holds configuration for the search service
type SearchServiceConfig struct {
	GroupRepo    GroupRepository
	HouseRepo    HouseRepository
	UserRepo     UserReader
	Access       *AccessResolver
	Observer     SearchObserver // optional
	DefaultLimit int            // Default: 100
	MaxLimit     int            // Default: 500
	DefaultUnit  DistanceUnit   // Default: miles
}

// NewSearchService creates a new search service
func NewSearchService(cfg SearchServiceConfig) *SearchService {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = DefaultSearchLimit
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 500
	}
	if cfg.DefaultUnit == "" {
		cfg.DefaultUnit = DefaultSearchUnit
	}
	return &SearchService{
		groupRepo:    cfg.GroupRepo,
		houseRepo:    cfg.HouseRepo,
		userRepo:     cfg.UserRepo,
		access:       cfg.Access,
		observer:     cfg.Observer,
		defaultLimit: cfg.DefaultLimit,
		maxLimit:     cfg.MaxLimit,
		defaultUnit:  cfg.DefaultUnit,
	}
}

// SearchGroups returns the nearest groups, each projected at the caller's tier
func (s *SearchService) SearchGroups(ctx context.Context, meID string, p SearchParams) ([]model.SearchedGroup, error) {
	start := time.Now()
	q, err := s.query(p)
	if err != nil {
		return nil, err
	}
	me, err := s.me(ctx, meID)
	if err != nil {
		return nil, err
	}

	filter := GroupFilter{HasHouse: p.HasHouse}
	if box, ok := BoundingBoxFor(q.Origin, q.Radius, q.Unit); ok {
		filter.Box = &box
	}
	ranked, err := Nearest(ctx, q, groupCandidates(s.groupRepo.Stream(ctx, filter)))
	if err != nil {
		return nil, err
	}

	out := make([]model.SearchedGroup, 0, len(ranked))
	for _, r := range ranked {
		level, err := s.access.ResolveFor(ctx, me, r.Item.ID, model.AccessPublic)
		if err != nil {
			return nil, err
		}
		view, err := ProjectGroup(level, r.Item)
		if err != nil {
			return nil, err
		}
		out = append(out, model.SearchedGroup{Group: view, Distance: r.Distance})
	}

	s.observe("groups", len(out), start)
	return out, nil
}

// SearchHouses returns the nearest houses, each projected at the caller's
// tier toward the owning group
func (s *SearchService) SearchHouses(ctx context.Context, meID string, p SearchParams) ([]model.SearchedHouse, error) {
	start := time.Now()
	q, err := s.query(p)
	if err != nil {
		return nil, err
	}
	me, err := s.me(ctx, meID)
	if err != nil {
		return nil, err
	}

	var box *BoundingBox
	if b, ok := BoundingBoxFor(q.Origin, q.Radius, q.Unit); ok {
		box = &b
	}
	ranked, err := Nearest(ctx, q, houseCandidates(s.houseRepo.Stream(ctx, box)))
	if err != nil {
		return nil, err
	}

	out := make([]model.SearchedHouse, 0, len(ranked))
	for _, r := range ranked {
		level := model.AccessPublic
		if r.Item.GroupID != nil {
			level, err = s.access.ResolveFor(ctx, me, *r.Item.GroupID, model.AccessPublic)
			if err != nil {
				return nil, err
			}
		}
		view, err := ProjectHouse(level, r.Item)
		if err != nil {
			return nil, err
		}
		out = append(out, model.SearchedHouse{House: view, Distance: r.Distance})
	}

	s.observe("houses", len(out), start)
	return out, nil
}

func (s *SearchService) query(p SearchParams) (NearestQuery, error) {
	origin := model.GeoPoint{Lat: p.Lat, Lon: p.Lon}
	if !origin.Valid() {
		return NearestQuery{}, ErrInvalidLocation
	}
	if p.Radius <= 0 || math.IsNaN(p.Radius) || math.IsInf(p.Radius, 0) {
		return NearestQuery{}, ErrInvalidRadius
	}

	unit := s.defaultUnit
	if p.Unit != "" {
		u, err := ParseDistanceUnit(p.Unit)
		if err != nil {
			return NearestQuery{}, err
		}
		unit = u
	}

	limit := s.defaultLimit
	if p.Limit != nil {
		limit = *p.Limit
	}
	limit = min(limit, s.maxLimit)

	return NearestQuery{Origin: origin, Radius: p.Radius, Unit: unit, Limit: limit}, nil
}

func (s *SearchService) me(ctx context.Context, id string) (*model.User, error) {
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *SearchService) observe(kind string, n int, start time.Time) {
	if s.observer != nil {
		s.observer.ObserveSearch(kind, n, time.Since(start))
	}
}

// groupCandidates adapts a group stream, skipping groups without a location
func groupCandidates(groups iter.Seq2[*model.Group, error]) iter.Seq2[Candidate[*model.Group], error] {
	return func(yield func(Candidate[*model.Group], error) bool) {
		for g, err := range groups {
			if err != nil {
				yield(Candidate[*model.Group]{}, err)
				return
			}
			if g.Location == nil {
				continue
			}
			if !yield(Candidate[*model.Group]{Key: g.ID, Item: g, Point: *g.Location}, nil) {
				return
			}
		}
	}
}

func houseCandidates(houses iter.Seq2[*model.House, error]) iter.Seq2[Candidate[*model.House], error] {
	return func(yield func(Candidate[*model.House], error) bool) {
		for h, err := range houses {
			if err != nil {
				yield(Candidate[*model.House]{}, err)
				return
			}
			if !yield(Candidate[*model.House]{Key: h.ID, Item: h, Point: h.Location}, nil) {
				return
			}
		}
	}
}
