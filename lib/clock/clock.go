// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts wall-clock reads for testability. Production
// code injects Real(); tests inject Fake() with deterministic time
// control.
package clock

import (
	"sync"
	"time"
)

// Clock supplies the current time. Every production function that
// would call time.Now should accept a Clock (or be a method on a
// struct with a Clock field) instead of calling the time package
// directly.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Fake returns a FakeClock initialized to the given time. Time stands
// still until Set or Advance is called.
//
// FakeClock is safe for concurrent use by multiple goroutines.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

// FakeClock is a deterministic Clock for testing.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Set moves the clock to an absolute time.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}
