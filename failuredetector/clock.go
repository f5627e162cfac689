// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package failuredetector

import (
	"time"

	"go.uber.org/atomic"
)

// Clock returns the current time in milliseconds.
//
// The absolute value carries no meaning. Only differences between two readings
// are used and they are computed with wrapping signed subtraction, so a clock
// is allowed to roll over the int64 boundary.
type Clock func() int64

// MonotonicClock returns a Clock backed by the Go monotonic clock and anchored
// at the time of the call.
func MonotonicClock() Clock {
	start := time.Now()
	return func() int64 {
		return time.Since(start).Milliseconds()
	}
}

// FakeClock is a manually driven Clock source for tests and simulations.
// It is safe for concurrent use.
type FakeClock struct {
	now *atomic.Int64
}

// NewFakeClock creates a FakeClock reading start
func NewFakeClock(start int64) *FakeClock {
	return &FakeClock{now: atomic.NewInt64(start)}
}

// Now returns the current reading
func (c *FakeClock) Now() int64 {
	return c.now.Load()
}

// Advance moves the clock forward by d and returns the new reading.
// The reading wraps around the int64 boundary.
func (c *FakeClock) Advance(d time.Duration) int64 {
	return c.now.Add(d.Milliseconds())
}

// Set sets the current reading
func (c *FakeClock) Set(now int64) {
	c.now.Store(now)
}

// Clock returns the FakeClock as a Clock
func (c *FakeClock) Clock() Clock {
	return c.Now
}
