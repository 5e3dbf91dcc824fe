// Package testdb runs tests against a real SurrealDB server.
//
// Each TestDB gets its own namespace with every migration under
// migrations/ applied, and the namespace is removed when the test ends:
//
//	tdb := testdb.New(t)
//	users := repository.NewUserRepository(tdb.DB)
//
// The server is read from TEST_DB_HOST, TEST_DB_PORT, TEST_DB_USER and
// TEST_DB_PASSWORD. Tests using it carry the integration build tag:
//
//	go test -tags integration ./...
package testdb
