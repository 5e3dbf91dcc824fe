package model

import "time"

// User is an account holder. A user belongs to at most one group.
type User struct {
	ID                 string             `json:"id"`
	Email              string             `json:"email"`
	Hash               string             `json:"-"` // Never expose password hash
	Color              string             `json:"color"`
	AvatarHash         *string            `json:"avatar_hash,omitempty"`
	Nickname           string             `json:"nickname"`
	PreferredName      string             `json:"preferred_name"`
	Bio                string             `json:"bio"`
	Pronouns           []string           `json:"pronouns"`
	Genders            []string           `json:"genders"`
	SexualOrientations []string           `json:"sexual_orientations"`
	EmergencyContacts  []EmergencyContact `json:"emergency_contacts"`
	PhotoHashes        []string           `json:"photo_hashes"`
	GroupID            *string            `json:"group_id,omitempty"`
	CreatedOn          time.Time          `json:"created_on"`
	UpdatedOn          time.Time          `json:"updated_on"`
}

// InGroup reports whether the user belongs to the given group
func (u *User) InGroup(groupID string) bool {
	return u.GroupID != nil && *u.GroupID == groupID
}

// EmergencyContact is someone to reach on the user's behalf
type EmergencyContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship,omitempty"`
}

// RegisterRequest creates an account
type RegisterRequest struct {
	Email              string             `json:"email"`
	Password           string             `json:"password"`
	Color              string             `json:"color"`
	AvatarHash         *string            `json:"avatar_hash,omitempty"`
	Nickname           string             `json:"nickname,omitempty"`
	PreferredName      string             `json:"preferred_name"`
	Bio                string             `json:"bio"`
	Pronouns           []string           `json:"pronouns,omitempty"`
	Genders            []string           `json:"genders,omitempty"`
	SexualOrientations []string           `json:"sexual_orientations,omitempty"`
	EmergencyContacts  []EmergencyContact `json:"emergency_contacts,omitempty"`
}

// LoginRequest authenticates with email and password
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateMeRequest is a partial update of the caller's own record.
// Nil fields are left unchanged.
type UpdateMeRequest struct {
	Color              *string             `json:"color,omitempty"`
	AvatarHash         *string             `json:"avatar_hash,omitempty"`
	Nickname           *string             `json:"nickname,omitempty"`
	PreferredName      *string             `json:"preferred_name,omitempty"`
	Bio                *string             `json:"bio,omitempty"`
	Pronouns           *[]string           `json:"pronouns,omitempty"`
	Genders            *[]string           `json:"genders,omitempty"`
	SexualOrientations *[]string           `json:"sexual_orientations,omitempty"`
	EmergencyContacts  *[]EmergencyContact `json:"emergency_contacts,omitempty"`
	PhotoHashes        *[]string           `json:"photo_hashes,omitempty"`
}

// TokenResponse is returned by register and login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	UserID      string `json:"user_id"`
}

// Field constraints
const (
	MaxEmailLength       = 254
	MinPasswordLength    = 8
	MaxPasswordLength    = 128
	MaxNameLength        = 64
	MaxBioLength         = 2000
	MaxListItems         = 16
	MaxEmergencyContacts = 5
	MaxPhotoHashes       = 12
)
