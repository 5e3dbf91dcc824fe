package model

import "time"

// Relationship is the tie between a user outside a group and that group.
// It is keyed by the (UserID, GroupID) pair. Members of a group never need
// one: they hold the highest tier implicitly.
type Relationship struct {
	UserID    string      `json:"user_id"`
	GroupID   string      `json:"group_id"`
	Level     AccessLevel `json:"level"`
	OpenDMs   bool        `json:"open_dms"`
	CreatedOn time.Time   `json:"created_on"`
	UpdatedOn time.Time   `json:"updated_on"`
}

// SetLevelRequest grants a tier to an interested user
type SetLevelRequest struct {
	Level AccessLevel `json:"level"`
}
