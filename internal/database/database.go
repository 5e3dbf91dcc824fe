package database

import (
	"context"
	"errors"
	"fmt"
)

// Standard errors for database operations.
// Use errors.Is() to check these error types in calling code.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate indicates a unique index violation (e.g., duplicate email).
	ErrDuplicate = errors.New("duplicate record")

	// ErrConnection indicates a failure to connect to or communicate with the database.
	ErrConnection = errors.New("database connection error")

	// ErrQuery indicates a query execution failure.
	ErrQuery = errors.New("query error")
)

// Database defines the interface for database operations
type Database interface {
	Connect(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error

	// Query executes one or more statements and returns one
	// {"status", "result"} entry per statement
	Query(ctx context.Context, query string, vars map[string]any) ([]any, error)

	// QueryOne executes a query and returns the first record of the first statement
	QueryOne(ctx context.Context, query string, vars map[string]any) (any, error)

	// Execute runs a query without returning results (for mutations)
	Execute(ctx context.Context, query string, vars map[string]any) error

	BeginTx(ctx context.Context) (Transaction, error)
}

// Transaction accumulates statements and runs them atomically on Commit
type Transaction interface {
	Execute(ctx context.Context, query string, vars map[string]any) error
	Commit() error
	Rollback() error
}

// Config holds database configuration
type Config struct {
	Host      string
	Port      string
	User      string
	Password  string
	Namespace string
	Database  string
}

// Endpoint returns the websocket RPC endpoint
func (c Config) Endpoint() string {
	return fmt.Sprintf("ws://%s:%s", c.Host, c.Port)
}

// StatementResult returns the result of statement i of a Query response.
// A negative index counts from the end.
func StatementResult(results []any, i int) (any, bool) {
	if i < 0 {
		i += len(results)
	}
	if i < 0 || i >= len(results) {
		return nil, false
	}
	resp, ok := results[i].(map[string]any)
	if !ok {
		return nil, false
	}
	return resp["result"], true
}

// Records flattens the rows of statement i of a Query response
func Records(results []any, i int) []map[string]any {
	result, ok := StatementResult(results, i)
	if !ok {
		return nil
	}
	switch v := result.(type) {
	case map[string]any:
		return []map[string]any{v}
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}
