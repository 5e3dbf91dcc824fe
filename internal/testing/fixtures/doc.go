// Package fixtures creates users, groups, houses and relationships for
// integration tests. Records go through the repositories, so fixtures see
// the same schema and defaults as the API.
//
//	f := fixtures.New(tdb.DB)
//	alice := f.CreateUser(t)
//	group := f.CreateGroup(t, alice, fixtures.At(40.7, -74.0))
//	f.CreateHouse(t, group, 40.7, -74.0)
package fixtures
