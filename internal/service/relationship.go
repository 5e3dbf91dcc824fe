package service

import (
	"context"
	"errors"

	"github.com/forgo/hearth/api/internal/model"
)

// RelationshipRepository defines the interface for relationship storage
type RelationshipRepository interface {
	RelationshipReader
	Create(ctx context.Context, rel *model.Relationship) error
	Update(ctx context.Context, rel *model.Relationship) error
	ListByGroup(ctx context.Context, groupID string) ([]*model.Relationship, error)
	ListOpenByUser(ctx context.Context, userID string) ([]*model.Relationship, error)
}

// RelationshipService manages interest, acceptance and tier grants between
// users and groups they are not part of.
type RelationshipService struct {
	relRepo   RelationshipRepository
	userRepo  UserRepository
	groupRepo GroupReader
	access    *AccessResolver
	events    *EventHub
}

// RelationshipServiceConfig holds configuration for the relationship service
type RelationshipServiceConfig struct {
	RelationshipRepo RelationshipRepository
	UserRepo         UserRepository
	GroupRepo        GroupReader
	Access           *AccessResolver
	Events           *EventHub // optional
}

// NewRelationshipService creates a new relationship service
func NewRelationshipService(cfg RelationshipServiceConfig) *RelationshipService {
	return &RelationshipService{
		relRepo:   cfg.RelationshipRepo,
		userRepo:  cfg.UserRepo,
		groupRepo: cfg.GroupRepo,
		access:    cfg.Access,
		events:    cfg.Events,
	}
}

// ExpressInterest records the caller's interest in a group, opening level 1
// of the caller's profile to it. An existing relationship is returned as is
// and never downgraded.
func (s *RelationshipService) ExpressInterest(ctx context.Context, meID, groupID string) (*model.Relationship, error) {
	me, err := s.userRepo.GetByID(ctx, meID)
	if err != nil {
		return nil, err
	}
	if me == nil {
		return nil, ErrUserNotFound
	}
	if me.InGroup(groupID) {
		return nil, ErrOwnGroup
	}
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	existing, err := s.relRepo.Get(ctx, meID, groupID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	rel := &model.Relationship{UserID: meID, GroupID: groupID, Level: model.AccessLevel1}
	if err := s.relRepo.Create(ctx, rel); err != nil {
		if !errors.Is(err, ErrRelationshipExists) {
			return nil, err
		}
		// a concurrent request created the row first
		stored, getErr := s.relRepo.Get(ctx, meID, groupID)
		if getErr != nil {
			return nil, getErr
		}
		if stored == nil {
			return nil, err
		}
		return stored, nil
	}
	notifyMembers(ctx, s.events, s.userRepo, groupID, &Event{Type: EventInterest, GroupID: groupID, Data: map[string]string{"user_id": meID}})
	return rel, nil
}

// AcceptInterest opens the direct-message channel between the caller's
// group and a user who expressed interest in it.
func (s *RelationshipService) AcceptInterest(ctx context.Context, meID, userID string) (*model.Relationship, error) {
	me, err := s.userRepo.GetByID(ctx, meID)
	if err != nil {
		return nil, err
	}
	if me == nil {
		return nil, ErrUserNotFound
	}
	if me.GroupID == nil {
		return nil, ErrNotInGroup
	}

	rel, err := s.relRepo.Get(ctx, userID, *me.GroupID)
	if err != nil {
		return nil, err
	}
	if rel == nil {
		return nil, ErrRelationshipNotFound
	}
	if err := RequireLevel(rel.Level, model.AccessLevel1); err != nil {
		return nil, err
	}
	if rel.OpenDMs {
		return nil, ErrAlreadyAccepted
	}

	rel.OpenDMs = true
	if err := s.relRepo.Update(ctx, rel); err != nil {
		return nil, err
	}
	if s.events != nil {
		s.events.SendToUser(userID, &Event{Type: EventInterestAccepted, Data: map[string]string{"group_id": rel.GroupID}})
	}
	return rel, nil
}

// SetLevel changes the tier a group holds toward a user. Only the level is
// touched; open_dms is left as it is.
func (s *RelationshipService) SetLevel(ctx context.Context, meID, groupID, userID string, level model.AccessLevel) (*model.Relationship, error) {
	if !level.Valid() {
		return nil, ErrInvalidLevelRequest
	}
	if err := s.access.AssertOwnsGroup(ctx, meID, groupID); err != nil {
		return nil, err
	}

	rel, err := s.relRepo.Get(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}
	if rel == nil {
		return nil, ErrRelationshipNotFound
	}

	rel.Level = level
	if err := s.relRepo.Update(ctx, rel); err != nil {
		return nil, err
	}
	return rel, nil
}

// ListForGroup returns everyone who has a relationship with the caller's group
func (s *RelationshipService) ListForGroup(ctx context.Context, meID, groupID string) ([]*model.Relationship, error) {
	if err := s.access.AssertOwnsGroup(ctx, meID, groupID); err != nil {
		return nil, err
	}
	return s.relRepo.ListByGroup(ctx, groupID)
}
