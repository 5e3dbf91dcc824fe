// Package model defines domain entities and data structures for the Hearth API.
//
// # Domain Entities
//
//   - User: account holder; belongs to at most one group
//   - Group: a household of users that may own one house
//   - House: a living space with an approximate location
//   - Relationship: an outside user's tie to a group, keyed by (user, group)
//   - ChatMessage: a message in a group's chat
//   - Asset: content-addressed binary data
//
// # Access Levels
//
// AccessLevel orders what a requester may see of a group and its members:
//
//	AccessPublic < AccessLevel1 < AccessLevel2 < AccessLevel3 (AccessHighest)
//
// Views (UserView, GroupView, HouseView) carry their tier in access_level
// and encode fields above it as null.
//
// # Error Types
//
// RFC 9457 Problem Details errors are defined in errors.go.
package model
