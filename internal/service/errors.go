package service

import "errors"

// Centralized service layer errors.
// All errors returned by service methods are defined here so handlers can
// map them with errors.Is.

// ===== Authentication Errors =====
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong    = errors.New("password must be at most 128 characters")
	ErrInvalidEmail       = errors.New("invalid email format")
)

// ===== Access Errors =====
var (
	// ErrPermissionDenied means the requester's tier toward the group is
	// too low, or the direct-message channel is not open.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrForbidden means the requester does not own the group or house.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidAccessLevel is an invariant violation: a tier outside the
	// defined range reached the projector.
	ErrInvalidAccessLevel = errors.New("invalid access level")
)

// ===== Not Found Errors =====
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrGroupNotFound        = errors.New("group not found")
	ErrHouseNotFound        = errors.New("house not found")
	ErrRelationshipNotFound = errors.New("relationship not found")
	ErrAssetNotFound        = errors.New("asset not found")
)

// ===== Group Errors =====
var (
	ErrAlreadyInGroup   = errors.New("user already belongs to a group")
	ErrNotInGroup       = errors.New("user does not belong to a group")
	ErrGroupFull        = errors.New("group has reached its member limit")
	ErrGroupHasHouse    = errors.New("group already has a house")
	ErrInvalidGroupName = errors.New("group name is required and must be at most 100 characters")
)

// ===== Relationship Errors =====
var (
	ErrOwnGroup            = errors.New("cannot express interest in your own group")
	ErrAlreadyAccepted     = errors.New("interest already accepted")
	ErrRelationshipExists  = errors.New("relationship already exists")
	ErrInvalidLevelRequest = errors.New("level must be between 0 and 3")
)

// ===== Validation Errors =====
var (
	ErrInvalidColor       = errors.New("color must be a hex color like #a1b2c3")
	ErrInvalidLocation    = errors.New("latitude must be within [-90, 90] and longitude within [-180, 180]")
	ErrInvalidAssetHash   = errors.New("asset hash does not exist")
	ErrInvalidNickname    = errors.New("nickname must be at most 64 characters")
	ErrInvalidName        = errors.New("preferred name is required and must be at most 64 characters")
	ErrBioTooLong         = errors.New("bio must be at most 2000 characters")
	ErrTooManyItems       = errors.New("too many list items")
	ErrInvalidChatContent = errors.New("invalid chat content")
	ErrMessageTooLong     = errors.New("message exceeds maximum length")
	ErrAssetTooLarge      = errors.New("asset exceeds maximum size")
	ErrEmptyAsset         = errors.New("asset is empty")
	ErrInvalidCursor      = errors.New("invalid pagination cursor")
)

// ===== Search Errors =====
var (
	ErrInvalidUnit   = errors.New("unit must be mi or km")
	ErrInvalidRadius = errors.New("radius must be a positive number")
)
