// Package database provides SurrealDB connectivity for the Hearth API.
//
// The Database interface wraps the SurrealDB Go client with three query
// shapes:
//
//   - Query: every statement's {status, result} entry
//   - QueryOne: the first record of the first statement, or ErrNotFound
//   - Execute: no return value (for CREATE/UPDATE/DELETE mutations)
//
// Connect may be called again on a live SurrealDB to replace a dropped
// socket; queries in flight keep the connection they started on.
//
// # Transactions
//
// Transactions are batch based. Statements added to a Transaction or an
// AtomicBatch are held in memory and sent as a single
// BEGIN TRANSACTION / COMMIT TRANSACTION block on commit, so they succeed
// or fail together. Variables of each statement are namespaced by
// TxBuilder so two statements may both use $id.
//
//	batch := database.NewAtomicBatch()
//	batch.Add("UPDATE household SET house = NONE WHERE house = type::record($id)", vars)
//	batch.Add("DELETE type::record($id)", vars)
//	err := batch.Execute(ctx, db)
//
// # Error Types
//
//   - ErrNotFound: Record does not exist
//   - ErrDuplicate: Unique index violation
//   - ErrConnection: Database connection failed
//   - ErrQuery: Statement failed
package database
