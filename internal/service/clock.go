package service

import "sync/atomic"

// Clock issues the version numbers stamped on written records.
type Clock interface {
	Next() int64
}

// counterClock is a monotonic logical clock starting at 0; the first Next
// returns 1. Safe for concurrent use.
type counterClock struct {
	seq atomic.Int64
}

func (c *counterClock) Next() int64 {
	return c.seq.Add(1)
}
