// Package scheduler provides a minimal fixed-interval task runner.
//
// It is intended for in-process housekeeping jobs (expiry sweeps, cache
// refreshes) that should run for the lifetime of the application and stop
// cleanly on shutdown.
package scheduler
