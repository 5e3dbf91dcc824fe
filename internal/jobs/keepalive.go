package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// Database is the connection the keepalive watches
type Database interface {
	Ping(ctx context.Context) error
	Connect(ctx context.Context) error
}

// Keepalive pings the database and reconnects after a failed ping. The
// SurrealDB client holds one websocket, which a proxy or a database
// restart can drop while the server is otherwise idle.
type Keepalive struct {
	db       Database
	failures atomic.Int64
}

// NewKeepalive creates a keepalive for db
func NewKeepalive(db Database) *Keepalive {
	return &Keepalive{db: db}
}

// Run pings once, reconnecting when the ping fails
func (k *Keepalive) Run(ctx context.Context) error {
	err := k.db.Ping(ctx)
	if err == nil {
		if n := k.failures.Swap(0); n > 0 {
			slog.Info("database reachable again", slog.Int64("failed_pings", n))
		}
		return nil
	}

	k.failures.Add(1)
	slog.Warn("database ping failed, reconnecting", slog.String("error", err.Error()))
	if err := k.db.Connect(ctx); err != nil {
		return fmt.Errorf("reconnect: %w", err)
	}
	return nil
}

// Failures returns the number of consecutive failed pings
func (k *Keepalive) Failures() int64 {
	return k.failures.Load()
}

// NewKeepaliveProcessor schedules a keepalive
func NewKeepaliveProcessor(db Database, interval time.Duration) *Processor {
	return NewProcessor(ProcessorConfig{
		Name:     "database_keepalive",
		Task:     NewKeepalive(db).Run,
		Interval: interval,
		Delay:    interval,
		Timeout:  10 * time.Second,
	})
}
