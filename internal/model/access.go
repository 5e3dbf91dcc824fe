package model

import "fmt"

// AccessLevel is the tier a requester holds toward a group. Tiers are
// ordered by their ordinal value only.
type AccessLevel int

const (
	AccessPublic AccessLevel = 0
	AccessLevel1 AccessLevel = 1
	AccessLevel2 AccessLevel = 2
	AccessLevel3 AccessLevel = 3

	// AccessHighest is implied for members of a group.
	AccessHighest = AccessLevel3
)

// Valid reports whether the level is one of the defined tiers
func (l AccessLevel) Valid() bool {
	return l >= AccessPublic && l <= AccessHighest
}

// AtLeast reports whether l satisfies the minimum tier
func (l AccessLevel) AtLeast(minimum AccessLevel) bool {
	return l >= minimum
}

func (l AccessLevel) String() string {
	switch l {
	case AccessPublic:
		return "public"
	case AccessLevel1:
		return "level1"
	case AccessLevel2:
		return "level2"
	case AccessLevel3:
		return "level3"
	default:
		return fmt.Sprintf("AccessLevel(%d)", int(l))
	}
}
