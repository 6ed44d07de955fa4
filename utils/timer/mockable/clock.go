// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mockable

import (
	"sync"
	"time"
)

// Clock reports the time used for router deadlines and block timestamps.
// Tests freeze it at a fixed instant. It is safe for concurrent use.
type Clock struct {
	mu     sync.RWMutex
	frozen bool
	at     time.Time
}

// Freeze pins the clock to t.
func (c *Clock) Freeze(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frozen = true
	c.at = t
}

// Unfreeze resumes following wall time.
func (c *Clock) Unfreeze() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frozen = false
}

// Time returns the current time of the clock.
func (c *Clock) Time() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.frozen {
		return c.at
	}
	return time.Now()
}

// Deadline returns the instant window from now, truncated to seconds.
func (c *Clock) Deadline(window time.Duration) time.Time {
	return c.Time().Add(window).Truncate(time.Second)
}

// Unix returns the unix timestamp of the clock.
func (c *Clock) Unix() uint64 {
	return uint64(max(c.Time().Unix(), 0))
}
