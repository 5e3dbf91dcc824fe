package model

// Views are the tier-projected shapes returned to clients. Each view carries
// its tier in access_level; fields above that tier are encoded as null and
// fields within it are always present.

// UserView is a user as seen from a given tier
type UserView struct {
	AccessLevel AccessLevel `json:"access_level"`

	// Public
	ID         string   `json:"id"`
	Color      string   `json:"color"`
	Pronouns   []string `json:"pronouns"`
	Nickname   string   `json:"nickname"`
	AvatarHash *string  `json:"avatar_hash"`

	// Level 1
	Bio           *string  `json:"bio"`
	PreferredName *string  `json:"preferred_name"`
	Genders       []string `json:"genders"`
	PhotoHashes   []string `json:"photo_hashes"`

	// Level 2
	SexualOrientations []string      `json:"sexual_orientations"`
	Group              *GroupSummary `json:"group"`

	// Level 3
	EmergencyContacts []EmergencyContact `json:"emergency_contacts"`
}

// GroupSummary is the group embedded in a level 2 user view
type GroupSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	HasHouse bool   `json:"has_house"`
}

// GroupView is a group as seen from a given tier
type GroupView struct {
	AccessLevel AccessLevel `json:"access_level"`

	// Public
	ID       string `json:"id"`
	Name     string `json:"name"`
	Bio      string `json:"bio"`
	HasHouse bool   `json:"has_house"`

	// Level 1
	MemberIDs []string `json:"member_ids"`

	// Level 2
	HouseID *string `json:"house_id"`

	// Level 3
	Location *GeoPoint `json:"location"`
}

// HouseView is a house as seen from a given tier. Levels 1 and 2 see the
// location rounded to roughly a kilometre.
type HouseView struct {
	AccessLevel AccessLevel `json:"access_level"`

	ID       string    `json:"id"`
	GroupID  *string   `json:"group_id"`
	Location *GeoPoint `json:"location"`
}

// SearchedGroup is a ranked group search hit
type SearchedGroup struct {
	Group    GroupView `json:"group"`
	Distance float64   `json:"distance"`
}

// SearchedHouse is a ranked house search hit
type SearchedHouse struct {
	House    HouseView `json:"house"`
	Distance float64   `json:"distance"`
}
