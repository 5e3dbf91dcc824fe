package service

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"unicode/utf8"

	"github.com/forgo/hearth/api/internal/model"
)

// GroupFilter narrows a group stream
type GroupFilter struct {
	Box      *BoundingBox
	HasHouse *bool
}

// GroupRepository defines the interface for group storage.
// Membership is stored on the user record.
type GroupRepository interface {
	GroupReader
	Create(ctx context.Context, group *model.Group, founderID string) error
	Update(ctx context.Context, group *model.Group) error
	Delete(ctx context.Context, id string) error
	AddMember(ctx context.Context, groupID, userID string) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	Stream(ctx context.Context, filter GroupFilter) iter.Seq2[*model.Group, error]
}

// GroupService handles group lifecycle and membership
type GroupService struct {
	groupRepo GroupRepository
	userRepo  UserRepository
	access    *AccessResolver
	events    *EventHub
}

// GroupServiceConfig holds configuration for the group service
type GroupServiceConfig struct {
	GroupRepo GroupRepository
	UserRepo  UserRepository
	Access    *AccessResolver
	Events    *EventHub // optional
}

// NewGroupService creates a new group service
func NewGroupService(cfg GroupServiceConfig) *GroupService {
	return &GroupService{
		groupRepo: cfg.GroupRepo,
		userRepo:  cfg.UserRepo,
		access:    cfg.Access,
		events:    cfg.Events,
	}
}

// Create makes a group with the caller as its first member
func (s *GroupService) Create(ctx context.Context, meID string, req model.CreateGroupRequest) (model.GroupView, error) {
	me, err := s.user(ctx, meID)
	if err != nil {
		return model.GroupView{}, err
	}
	if me.GroupID != nil {
		return model.GroupView{}, ErrAlreadyInGroup
	}

	group := &model.Group{
		Name:      strings.TrimSpace(req.Name),
		Bio:       strings.TrimSpace(req.Bio),
		Location:  req.Location,
		MemberIDs: []string{me.ID},
	}
	if err := validateGroup(group); err != nil {
		return model.GroupView{}, err
	}
	if err := s.groupRepo.Create(ctx, group, me.ID); err != nil {
		return model.GroupView{}, err
	}
	return ProjectGroup(model.AccessHighest, group)
}

// Get returns the group at the caller's tier
func (s *GroupService) Get(ctx context.Context, meID, groupID string) (model.GroupView, error) {
	group, err := s.group(ctx, groupID)
	if err != nil {
		return model.GroupView{}, err
	}
	level, err := s.access.Resolve(ctx, meID, groupID)
	if err != nil {
		return model.GroupView{}, err
	}
	return ProjectGroup(level, group)
}

// Update edits a group the caller belongs to
func (s *GroupService) Update(ctx context.Context, meID, groupID string, req model.UpdateGroupRequest) (model.GroupView, error) {
	if err := s.access.AssertOwnsGroup(ctx, meID, groupID); err != nil {
		return model.GroupView{}, err
	}
	group, err := s.group(ctx, groupID)
	if err != nil {
		return model.GroupView{}, err
	}

	if req.Name != nil {
		group.Name = strings.TrimSpace(*req.Name)
	}
	if req.Bio != nil {
		group.Bio = strings.TrimSpace(*req.Bio)
	}
	// A group with a house is located where the house is.
	if req.Location != nil && !group.HasHouse {
		group.Location = req.Location
	}
	if err := validateGroup(group); err != nil {
		return model.GroupView{}, err
	}
	if err := s.groupRepo.Update(ctx, group); err != nil {
		return model.GroupView{}, err
	}
	return ProjectGroup(model.AccessHighest, group)
}

// Delete removes a group the caller belongs to. Members are released and
// the house, if any, is unlinked.
func (s *GroupService) Delete(ctx context.Context, meID, groupID string) error {
	if err := s.access.AssertOwnsGroup(ctx, meID, groupID); err != nil {
		return err
	}
	return s.groupRepo.Delete(ctx, groupID)
}

// Leave removes the caller from their group. The last member leaving
// deletes the group.
func (s *GroupService) Leave(ctx context.Context, meID, groupID string) error {
	if err := s.access.AssertOwnsGroup(ctx, meID, groupID); err != nil {
		return err
	}
	group, err := s.group(ctx, groupID)
	if err != nil {
		return err
	}

	if len(group.MemberIDs) <= 1 {
		return s.groupRepo.Delete(ctx, groupID)
	}
	if err := s.groupRepo.RemoveMember(ctx, groupID, meID); err != nil {
		return err
	}
	s.notify(ctx, EventMemberLeft, groupID, map[string]string{"user_id": meID})
	return nil
}

// AddMember brings a user with an open channel into the caller's group
func (s *GroupService) AddMember(ctx context.Context, meID, groupID, userID string) (model.GroupView, error) {
	if err := s.access.AssertOwnsGroup(ctx, meID, groupID); err != nil {
		return model.GroupView{}, err
	}
	group, err := s.group(ctx, groupID)
	if err != nil {
		return model.GroupView{}, err
	}
	target, err := s.user(ctx, userID)
	if err != nil {
		return model.GroupView{}, err
	}
	if target.GroupID != nil {
		return model.GroupView{}, ErrAlreadyInGroup
	}
	if err := s.access.AssertOpenChannel(ctx, userID, groupID); err != nil {
		return model.GroupView{}, err
	}
	if len(group.MemberIDs) >= model.MaxMembersPerGroup {
		return model.GroupView{}, ErrGroupFull
	}

	if err := s.groupRepo.AddMember(ctx, groupID, userID); err != nil {
		return model.GroupView{}, err
	}
	group.MemberIDs = append(group.MemberIDs, userID)
	s.notify(ctx, EventMemberJoined, groupID, map[string]string{"user_id": userID})
	return ProjectGroup(model.AccessHighest, group)
}

func (s *GroupService) user(ctx context.Context, id string) (*model.User, error) {
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *GroupService) group(ctx context.Context, id string) (*model.Group, error) {
	g, err := s.groupRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGroupNotFound
	}
	return g, nil
}

func (s *GroupService) notify(ctx context.Context, t EventType, groupID string, data any) {
	notifyMembers(ctx, s.events, s.userRepo, groupID, &Event{Type: t, GroupID: groupID, Data: data})
}

func validateGroup(g *model.Group) error {
	if g.Name == "" || utf8.RuneCountInString(g.Name) > model.MaxGroupNameLength {
		return ErrInvalidGroupName
	}
	if utf8.RuneCountInString(g.Bio) > model.MaxBioLength {
		return ErrBioTooLong
	}
	if g.Location != nil && !g.Location.Valid() {
		return fmt.Errorf("%w: %+v", ErrInvalidLocation, *g.Location)
	}
	return nil
}
