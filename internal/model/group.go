package model

import "time"

// Group is a household: people who live together or want to. It may own
// at most one house.
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio"`
	HouseID   *string   `json:"house_id,omitempty"`
	HasHouse  bool      `json:"has_house"`
	Location  *GeoPoint `json:"location,omitempty"`
	MemberIDs []string  `json:"member_ids"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// CreateGroupRequest creates a group with the caller as its first member
type CreateGroupRequest struct {
	Name     string    `json:"name"`
	Bio      string    `json:"bio"`
	Location *GeoPoint `json:"location,omitempty"`
}

// UpdateGroupRequest is a partial group update
type UpdateGroupRequest struct {
	Name     *string   `json:"name,omitempty"`
	Bio      *string   `json:"bio,omitempty"`
	Location *GeoPoint `json:"location,omitempty"`
}

// Business constraints
const (
	MaxGroupNameLength = 100
	MaxMembersPerGroup = 12
)
