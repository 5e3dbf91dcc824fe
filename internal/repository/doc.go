// Package repository implements the SurrealDB data access layer for the
// Hearth API.
//
// Each repository satisfies the storage interface its service declares
// (service.UserRepository, service.GroupRepository and so on) and takes a
// database.Database, so tests can substitute a fake.
//
// # Tables
//
//   - user: profile fields and an optional household link (membership)
//   - household: groups; "group" is a SurrealQL keyword
//   - house: location and an optional household back-link
//   - relationship: one row per (user, household) pair, unique
//   - chat_message: content plus the numeric snowflake seq
//   - asset: blobs keyed by their hash
//
// The schema lives in migrations/.
//
// # Query Patterns
//
//   - Parameterized queries with $variable syntax
//   - type::record() for ids passed in from callers
//   - time::now() for timestamps
//   - Writes that touch a household and its house or members run as one
//     transaction (LET/RETURN blocks, AtomicBatch or WithTransaction)
//   - Search candidates are streamed a page at a time as iter.Seq2
package repository
