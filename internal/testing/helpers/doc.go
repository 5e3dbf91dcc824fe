// Package helpers holds request builders and response assertions for tests
// that drive the full HTTP stack.
//
//	jwtSvc := helpers.NewJWTService(t)
//	rec := helpers.NewRequest(t, http.MethodGet, "/v1/users/me").
//		WithToken(helpers.Token(t, jwtSvc, user)).
//		Do(server)
//	me := helpers.Data[model.UserView](t, rec)
package helpers
