// Package service implements the business logic layer for the Hearth API.
//
// Services own validation, access control and orchestration of repository
// operations. Handlers call services; services call repositories through
// the interfaces they declare here.
//
// # Service Pattern
//
// All services follow a consistent pattern:
//
//   - Constructor function (NewXxxService) accepts a config struct with repository dependencies
//   - Methods take the caller's user id first and return sentinel or wrapped errors
//   - Context is passed through for cancellation and request-scoped values
//
// # Access Tiers
//
// Every read of a user, group or house goes through the AccessResolver and
// one of the Project functions. The resolver answers how much of a group a
// user may see (members always see everything); projection turns a record
// into its view with every field above the tier set to null.
//
//	level, err := access.Resolve(ctx, meID, groupID)
//	view, err := ProjectGroup(level, group)
//
// # Proximity Search
//
// Nearest ranks a stream of candidates by great-circle distance and keeps
// the closest k in a bounded heap, so the repository only needs to stream
// rows inside the query's bounding box.
package service
