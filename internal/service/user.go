package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/forgo/hearth/api/internal/model"
)

// UserService serves user profiles through the access tiers
type UserService struct {
	userRepo  UserRepository
	groupRepo GroupReader
	assets    AssetChecker
	access    *AccessResolver
	events    *EventHub
}

// UserServiceConfig holds configuration for the user service
type UserServiceConfig struct {
	UserRepo  UserRepository
	GroupRepo GroupReader
	AssetRepo AssetChecker
	Access    *AccessResolver
	Events    *EventHub // optional
}

// NewUserService creates a new user service
func NewUserService(cfg UserServiceConfig) *UserService {
	return &UserService{
		userRepo:  cfg.UserRepo,
		groupRepo: cfg.GroupRepo,
		assets:    cfg.AssetRepo,
		access:    cfg.Access,
		events:    cfg.Events,
	}
}

// GetMe returns the caller's own record at the highest tier
func (s *UserService) GetMe(ctx context.Context, meID string) (model.UserView, error) {
	me, err := s.load(ctx, meID)
	if err != nil {
		return model.UserView{}, err
	}
	return s.project(ctx, model.AccessHighest, me)
}

// UpdateMe applies a partial update to the caller's profile
func (s *UserService) UpdateMe(ctx context.Context, meID string, req model.UpdateMeRequest) (model.UserView, error) {
	me, err := s.load(ctx, meID)
	if err != nil {
		return model.UserView{}, err
	}

	if req.Color != nil {
		me.Color = strings.ToLower(*req.Color)
	}
	if req.AvatarHash != nil {
		if *req.AvatarHash == "" {
			me.AvatarHash = nil
		} else {
			me.AvatarHash = req.AvatarHash
		}
	}
	if req.Nickname != nil {
		me.Nickname = strings.TrimSpace(*req.Nickname)
	}
	if req.PreferredName != nil {
		me.PreferredName = strings.TrimSpace(*req.PreferredName)
	}
	if req.Bio != nil {
		me.Bio = strings.TrimSpace(*req.Bio)
	}
	if req.Pronouns != nil {
		me.Pronouns = normalizeList(*req.Pronouns)
	}
	if req.Genders != nil {
		me.Genders = normalizeList(*req.Genders)
	}
	if req.SexualOrientations != nil {
		me.SexualOrientations = normalizeList(*req.SexualOrientations)
	}
	if req.EmergencyContacts != nil {
		me.EmergencyContacts = append([]model.EmergencyContact{}, (*req.EmergencyContacts)...)
	}
	if req.PhotoHashes != nil {
		me.PhotoHashes = append([]string{}, (*req.PhotoHashes)...)
	}
	if me.Nickname == "" {
		me.Nickname = me.PreferredName
	}

	if err := validateProfile(ctx, s.assets, me); err != nil {
		return model.UserView{}, err
	}
	if err := s.userRepo.Update(ctx, me); err != nil {
		return model.UserView{}, err
	}
	return s.project(ctx, model.AccessHighest, me)
}

// GetUser returns another user's profile at the caller's tier.
//
// Outside your own record, a profile is only visible to members of a group
// the user has shown interest in (level 1 or better toward the caller's
// group). The tier is then the caller's standing toward the user's group.
// A user without a group is shown at the public tier: the level on their
// relationship row is granted by the caller's group, so it says nothing
// about what the user chose to reveal.
func (s *UserService) GetUser(ctx context.Context, meID, userID string) (model.UserView, error) {
	me, err := s.load(ctx, meID)
	if err != nil {
		return model.UserView{}, err
	}
	if me.ID == userID {
		return s.project(ctx, model.AccessHighest, me)
	}

	target, err := s.load(ctx, userID)
	if err != nil {
		return model.UserView{}, err
	}

	if me.GroupID == nil {
		return model.UserView{}, fmt.Errorf("%w: you do not have a group", ErrPermissionDenied)
	}
	towardMe, err := s.access.ResolveFor(ctx, target, *me.GroupID, model.AccessPublic)
	if err != nil {
		return model.UserView{}, err
	}
	if err := RequireLevel(towardMe, model.AccessLevel1); err != nil {
		return model.UserView{}, err
	}

	level := model.AccessPublic
	if target.GroupID != nil {
		level, err = s.access.ResolveFor(ctx, me, *target.GroupID, model.AccessPublic)
		if err != nil {
			return model.UserView{}, err
		}
	}
	return s.project(ctx, level, target)
}

// Subscribe opens the caller's personal event stream: membership news of
// their group and accepted interest.
func (s *UserService) Subscribe(ctx context.Context, meID, subscriberID string) (*Subscriber, error) {
	if s.events == nil {
		return nil, fmt.Errorf("event streaming is not configured")
	}
	if _, err := s.load(ctx, meID); err != nil {
		return nil, err
	}
	return s.events.SubscribeUser(meID, subscriberID), nil
}

// Unsubscribe closes a personal event stream
func (s *UserService) Unsubscribe(meID, subscriberID string) {
	if s.events != nil {
		s.events.UnsubscribeUser(meID, subscriberID)
	}
}

func (s *UserService) load(ctx context.Context, id string) (*model.User, error) {
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *UserService) project(ctx context.Context, level model.AccessLevel, u *model.User) (model.UserView, error) {
	var group *model.Group
	if u.GroupID != nil && level >= model.AccessLevel2 {
		g, err := s.groupRepo.GetByID(ctx, *u.GroupID)
		if err != nil {
			return model.UserView{}, err
		}
		group = g
	}
	return ProjectUser(level, u, group)
}
