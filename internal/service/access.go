package service

import (
	"context"
	"fmt"

	"github.com/forgo/hearth/api/internal/model"
)

// UserReader fetches users by id. A missing user is (nil, nil).
type UserReader interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// GroupReader fetches groups by id. A missing group is (nil, nil).
type GroupReader interface {
	GetByID(ctx context.Context, id string) (*model.Group, error)
}

// RelationshipReader fetches the relationship for a (user, group) pair.
// A missing row is (nil, nil).
type RelationshipReader interface {
	Get(ctx context.Context, userID, groupID string) (*model.Relationship, error)
}

// AccessObserver is notified of assertion outcomes
type AccessObserver interface {
	ObserveAccessCheck(check string, granted bool)
}

// Assertion names reported to the AccessObserver
const (
	CheckLevel       = "level"
	CheckOpenChannel = "open_channel"
	CheckOwnsGroup   = "owns_group"
	CheckOwnsHouse   = "owns_house"
)

// AccessResolver derives a requester's tier toward a group and enforces
// minimum tiers and ownership.
type AccessResolver struct {
	users         UserReader
	groups        GroupReader
	relationships RelationshipReader
	observer      AccessObserver
}

// AccessResolverConfig holds dependencies for the access resolver
type AccessResolverConfig struct {
	UserRepo         UserReader
	GroupRepo        GroupReader
	RelationshipRepo RelationshipReader
	Observer         AccessObserver // optional
}

// NewAccessResolver creates a new access resolver
func NewAccessResolver(cfg AccessResolverConfig) *AccessResolver {
	return &AccessResolver{
		users:         cfg.UserRepo,
		groups:        cfg.GroupRepo,
		relationships: cfg.RelationshipRepo,
		observer:      cfg.Observer,
	}
}

// Resolve returns the requester's tier toward the group, PUBLIC when no
// relationship exists.
func (r *AccessResolver) Resolve(ctx context.Context, requesterID, groupID string) (model.AccessLevel, error) {
	return r.ResolveOr(ctx, requesterID, groupID, model.AccessPublic)
}

// ResolveOr is Resolve with a caller-supplied tier for the no-relationship case
func (r *AccessResolver) ResolveOr(ctx context.Context, requesterID, groupID string, def model.AccessLevel) (model.AccessLevel, error) {
	requester, err := r.requester(ctx, requesterID)
	if err != nil {
		return model.AccessPublic, err
	}
	return r.ResolveFor(ctx, requester, groupID, def)
}

// ResolveFor resolves for an already loaded requester.
//
// Membership is checked first and always wins: a member holds the highest
// tier even when a stale relationship row for the same pair says otherwise.
func (r *AccessResolver) ResolveFor(ctx context.Context, requester *model.User, groupID string, def model.AccessLevel) (model.AccessLevel, error) {
	if requester.InGroup(groupID) {
		return model.AccessHighest, nil
	}

	rel, err := r.relationships.Get(ctx, requester.ID, groupID)
	if err != nil {
		return model.AccessPublic, fmt.Errorf("get relationship: %w", err)
	}
	if rel == nil {
		return def, nil
	}
	return rel.Level, nil
}

// AssertLevel fails with ErrPermissionDenied when the requester's tier is
// below minimum. A non-nil known tier is used instead of resolving again.
func (r *AccessResolver) AssertLevel(ctx context.Context, requesterID, groupID string, minimum model.AccessLevel, known *model.AccessLevel) error {
	var level model.AccessLevel
	if known != nil {
		level = *known
	} else {
		resolved, err := r.Resolve(ctx, requesterID, groupID)
		if err != nil {
			return err
		}
		level = resolved
	}

	err := RequireLevel(level, minimum)
	r.observe(CheckLevel, err == nil)
	return err
}

// RequireLevel is the pure form of AssertLevel
func RequireLevel(actual, minimum model.AccessLevel) error {
	if actual < minimum {
		return fmt.Errorf("%w: requires %s, have %s", ErrPermissionDenied, minimum, actual)
	}
	return nil
}

// AssertOpenChannel fails with ErrPermissionDenied unless the stored
// relationship has open_dms set. A missing row counts as closed.
func (r *AccessResolver) AssertOpenChannel(ctx context.Context, requesterID, groupID string) error {
	rel, err := r.relationships.Get(ctx, requesterID, groupID)
	if err != nil {
		return fmt.Errorf("get relationship: %w", err)
	}

	open := rel != nil && rel.OpenDMs
	r.observe(CheckOpenChannel, open)
	if !open {
		return fmt.Errorf("%w: channel is not open", ErrPermissionDenied)
	}
	return nil
}

// AssertOwnsGroup fails with ErrForbidden unless the requester belongs to
// the group.
func (r *AccessResolver) AssertOwnsGroup(ctx context.Context, requesterID, groupID string) error {
	requester, err := r.requester(ctx, requesterID)
	if err != nil {
		return err
	}

	owns := requester.InGroup(groupID)
	r.observe(CheckOwnsGroup, owns)
	if !owns {
		return fmt.Errorf("%w: you do not own this group", ErrForbidden)
	}
	return nil
}

// AssertOwnsHouse fails with ErrForbidden unless the requester's group is
// linked to the house. There is no direct user to house link.
func (r *AccessResolver) AssertOwnsHouse(ctx context.Context, requesterID, houseID string) error {
	requester, err := r.requester(ctx, requesterID)
	if err != nil {
		return err
	}

	owns := false
	if requester.GroupID != nil {
		group, err := r.groups.GetByID(ctx, *requester.GroupID)
		if err != nil {
			return fmt.Errorf("get group: %w", err)
		}
		owns = group != nil && group.HouseID != nil && *group.HouseID == houseID
	}

	r.observe(CheckOwnsHouse, owns)
	if !owns {
		return fmt.Errorf("%w: you do not own this house", ErrForbidden)
	}
	return nil
}

func (r *AccessResolver) requester(ctx context.Context, id string) (*model.User, error) {
	u, err := r.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (r *AccessResolver) observe(check string, granted bool) {
	if r.observer != nil {
		r.observer.ObserveAccessCheck(check, granted)
	}
}
