package service

import (
	"fmt"
	"math"

	"github.com/forgo/hearth/api/internal/model"
)

// The projectors below build the level 3 view from the full record and
// then clear fields tier by tier, so a lower view can never hold a field
// the higher one lacks.

// ProjectUser returns the user as seen from the given tier. group is the
// user's group, if any.
func ProjectUser(level model.AccessLevel, u *model.User, group *model.Group) (model.UserView, error) {
	if !level.Valid() {
		return model.UserView{}, fmt.Errorf("%w: %d", ErrInvalidAccessLevel, int(level))
	}

	bio := u.Bio
	preferred := u.PreferredName
	v := model.UserView{
		AccessLevel:        model.AccessLevel3,
		ID:                 u.ID,
		Color:              u.Color,
		Pronouns:           cloneStrings(u.Pronouns),
		Nickname:           u.Nickname,
		AvatarHash:         cloneStringPtr(u.AvatarHash),
		Bio:                &bio,
		PreferredName:      &preferred,
		Genders:            cloneStrings(u.Genders),
		PhotoHashes:        cloneStrings(u.PhotoHashes),
		SexualOrientations: cloneStrings(u.SexualOrientations),
		EmergencyContacts:  append([]model.EmergencyContact{}, u.EmergencyContacts...),
	}
	if group != nil {
		v.Group = &model.GroupSummary{ID: group.ID, Name: group.Name, HasHouse: group.HasHouse}
	}

	if level <= model.AccessLevel2 {
		v.EmergencyContacts = nil
	}
	if level <= model.AccessLevel1 {
		v.SexualOrientations = nil
		v.Group = nil
	}
	if level <= model.AccessPublic {
		v.Bio = nil
		v.PreferredName = nil
		v.Genders = nil
		v.PhotoHashes = nil
	}

	v.AccessLevel = level
	return v, nil
}

// ProjectGroup returns the group as seen from the given tier
func ProjectGroup(level model.AccessLevel, g *model.Group) (model.GroupView, error) {
	if !level.Valid() {
		return model.GroupView{}, fmt.Errorf("%w: %d", ErrInvalidAccessLevel, int(level))
	}

	v := model.GroupView{
		AccessLevel: model.AccessLevel3,
		ID:          g.ID,
		Name:        g.Name,
		Bio:         g.Bio,
		HasHouse:    g.HasHouse,
		MemberIDs:   cloneStrings(g.MemberIDs),
		HouseID:     cloneStringPtr(g.HouseID),
	}
	if g.Location != nil {
		loc := *g.Location
		v.Location = &loc
	}

	if level <= model.AccessLevel2 {
		v.Location = nil
	}
	if level <= model.AccessLevel1 {
		v.HouseID = nil
	}
	if level <= model.AccessPublic {
		v.MemberIDs = nil
	}

	v.AccessLevel = level
	return v, nil
}

// ProjectHouse returns the house as seen from the given tier
func ProjectHouse(level model.AccessLevel, h *model.House) (model.HouseView, error) {
	if !level.Valid() {
		return model.HouseView{}, fmt.Errorf("%w: %d", ErrInvalidAccessLevel, int(level))
	}

	loc := h.Location
	v := model.HouseView{
		AccessLevel: model.AccessLevel3,
		ID:          h.ID,
		GroupID:     cloneStringPtr(h.GroupID),
		Location:    &loc,
	}

	if level <= model.AccessLevel2 {
		v.Location = &model.GeoPoint{Lat: round2(loc.Lat), Lon: round2(loc.Lon)}
	}
	if level <= model.AccessPublic {
		v.GroupID = nil
		v.Location = nil
	}

	v.AccessLevel = level
	return v, nil
}

func cloneStrings(s []string) []string {
	return append([]string{}, s...)
}

func cloneStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
