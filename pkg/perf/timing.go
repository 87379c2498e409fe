// Package perf times hot paths and logs them through pslog.
package perf

import (
	"time"

	"pkt.systems/pslog"
)

// Timer tracks elapsed time for a named operation.
type Timer struct {
	log   pslog.Logger
	name  string
	slow  time.Duration
	start time.Time
}

// Start begins timing name. Stop logs at debug level, or warns once the
// operation took longer than slow. A zero slow never warns.
func Start(log pslog.Logger, name string, slow time.Duration) *Timer {
	return &Timer{log: log, name: name, slow: slow, start: time.Now()}
}

// Stop ends timing, logs the result and returns it.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	if t.slow > 0 && elapsed > t.slow {
		t.log.Warn("slow operation", "op", t.name, "elapsed", elapsed.String(), "budget", t.slow.String())
	} else {
		t.log.Debug("timing", "op", t.name, "elapsed", elapsed.String())
	}
	return elapsed
}

// Track times fn.
func Track(log pslog.Logger, name string, slow time.Duration, fn func()) time.Duration {
	t := Start(log, name, slow)
	fn()
	return t.Stop()
}
