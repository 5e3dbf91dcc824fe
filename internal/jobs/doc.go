// Package jobs runs background work for the Hearth API outside of request
// handling.
//
// A Processor runs a Task on a fixed interval until stopped:
//
//	p := jobs.NewKeepaliveProcessor(db, 30*time.Second)
//	p.Start()
//	defer p.Stop()
//
// The only job today is the database keepalive, which pings SurrealDB and
// reconnects the client when the ping fails.
package jobs
