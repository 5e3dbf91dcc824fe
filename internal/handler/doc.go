// Package handler provides the HTTP handlers of the Hearth API.
//
// Each handler wraps one service behind a small interface declared next to
// it, so tests can swap in a stub without a database. Handlers decode the
// request, call the service with the caller's user id, and write either a
// JSON envelope or an RFC 9457 problem.
//
// # Response Format
//
//   - WriteData: single resource under "data" with optional links
//   - WriteCollection: list under "data" with optional pagination
//   - WriteError: problem details
//
// Service errors go through MapServiceError; anything it does not recognise
// becomes a 500 and is logged.
//
// # Routes
//
// Handlers.RegisterRoutes wires every route on a ServeMux. /health,
// registration and login are public; everything else needs a bearer token.
// The two event streams, a group's chat and the caller's own
// /v1/users/me/stream, are server-sent events and also accept the token as
// an access_token query parameter, since EventSource cannot set headers.
package handler
