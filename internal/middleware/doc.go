// Package middleware provides HTTP middleware for the Hearth API.
//
// The server wraps its mux as
//
//	RequestID -> Logger -> Recovery -> metrics -> CORS -> RateLimit -> Compress
//
// and protects individual routes with Auth, which validates the RS256
// bearer token and stores the caller's user id in the request context:
//
//	userID := middleware.GetUserID(r.Context())
//
// RateLimit keeps one golang.org/x/time/rate bucket per client, keyed by
// user id when known and by remote IP otherwise.
package middleware
