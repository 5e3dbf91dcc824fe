package service

import (
	"context"
	"fmt"
	"iter"

	"github.com/forgo/hearth/api/internal/model"
)

// HouseRepository defines the interface for house storage. Create, Update
// and Delete keep the owning group's house_id, has_house and location in
// step with the house.
type HouseRepository interface {
	GetByID(ctx context.Context, id string) (*model.House, error)
	Create(ctx context.Context, house *model.House, groupID string) error
	Update(ctx context.Context, house *model.House) error
	Delete(ctx context.Context, id string) error
	Stream(ctx context.Context, box *BoundingBox) iter.Seq2[*model.House, error]
}

// HouseService handles houses owned by groups
type HouseService struct {
	houseRepo HouseRepository
	groupRepo GroupReader
	userRepo  UserReader
	access    *AccessResolver
}

// HouseServiceConfig holds configuration for the house service
type HouseServiceConfig struct {
	HouseRepo HouseRepository
	GroupRepo GroupReader
	UserRepo  UserReader
	Access    *AccessResolver
}

// NewHouseService creates a new house service
func NewHouseService(cfg HouseServiceConfig) *HouseService {
	return &HouseService{
		houseRepo: cfg.HouseRepo,
		groupRepo: cfg.GroupRepo,
		userRepo:  cfg.UserRepo,
		access:    cfg.Access,
	}
}

// Create adds the house for the caller's group
func (s *HouseService) Create(ctx context.Context, meID string, req model.HouseRequest) (model.HouseView, error) {
	loc := model.GeoPoint{Lat: req.Lat, Lon: req.Lon}
	if !loc.Valid() {
		return model.HouseView{}, fmt.Errorf("%w: %+v", ErrInvalidLocation, loc)
	}

	me, err := s.userRepo.GetByID(ctx, meID)
	if err != nil {
		return model.HouseView{}, err
	}
	if me == nil {
		return model.HouseView{}, ErrUserNotFound
	}
	if me.GroupID == nil {
		return model.HouseView{}, ErrNotInGroup
	}
	group, err := s.groupRepo.GetByID(ctx, *me.GroupID)
	if err != nil {
		return model.HouseView{}, err
	}
	if group == nil {
		return model.HouseView{}, ErrGroupNotFound
	}
	if group.HouseID != nil {
		return model.HouseView{}, ErrGroupHasHouse
	}

	groupID := group.ID
	house := &model.House{Location: loc, GroupID: &groupID}
	if err := s.houseRepo.Create(ctx, house, group.ID); err != nil {
		return model.HouseView{}, err
	}
	return ProjectHouse(model.AccessHighest, house)
}

// Get returns the house at the caller's tier toward its group
func (s *HouseService) Get(ctx context.Context, meID, houseID string) (model.HouseView, error) {
	house, err := s.house(ctx, houseID)
	if err != nil {
		return model.HouseView{}, err
	}

	level := model.AccessPublic
	if house.GroupID != nil {
		level, err = s.access.Resolve(ctx, meID, *house.GroupID)
		if err != nil {
			return model.HouseView{}, err
		}
	}
	return ProjectHouse(level, house)
}

// Update moves the caller's house
func (s *HouseService) Update(ctx context.Context, meID, houseID string, req model.HouseRequest) (model.HouseView, error) {
	loc := model.GeoPoint{Lat: req.Lat, Lon: req.Lon}
	if !loc.Valid() {
		return model.HouseView{}, fmt.Errorf("%w: %+v", ErrInvalidLocation, loc)
	}
	if err := s.access.AssertOwnsHouse(ctx, meID, houseID); err != nil {
		return model.HouseView{}, err
	}
	house, err := s.house(ctx, houseID)
	if err != nil {
		return model.HouseView{}, err
	}

	house.Location = loc
	if err := s.houseRepo.Update(ctx, house); err != nil {
		return model.HouseView{}, err
	}
	return ProjectHouse(model.AccessHighest, house)
}

// Delete unlinks and removes the caller's house
func (s *HouseService) Delete(ctx context.Context, meID, houseID string) error {
	if err := s.access.AssertOwnsHouse(ctx, meID, houseID); err != nil {
		return err
	}
	return s.houseRepo.Delete(ctx, houseID)
}

func (s *HouseService) house(ctx context.Context, id string) (*model.House, error) {
	h, err := s.houseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, ErrHouseNotFound
	}
	return h, nil
}
