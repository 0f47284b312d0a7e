// Package resource throttles audit runs so they can share a host with a live
// store.
//
// A Controller holds two token buckets (golang.org/x/time/rate):
//
//   - statements per second, consumed once per scanned statement
//   - I/O bytes per second, consumed by snapshot export and restore streams
//
// A zero limit disables the corresponding bucket, and a nil *Controller is
// valid and never blocks:
//
//	rc := resource.NewController(resource.Config{StatementsPerSec: 50_000})
//	for st := range statements {
//	    if err := rc.AcquireStatement(ctx); err != nil { ... }
//	}
//
// Streams are wrapped with NewRateLimitedReader / NewRateLimitedWriter.
package resource
