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
	"go.uber.org/atomic"
)

// Deadline is a failure detector that considers a resource available until
// no heartbeat was received within the acceptable pause, plus the optional
// heartbeat interval slack of its configuration.
//
// It is meant for transport level supervision where heartbeats are frequent
// and the statistical model of PhiAccrual is not needed.
// Deadline is safe for concurrent use.
type Deadline struct {
	deadline      int64
	clock         Clock
	monitoring    *atomic.Bool
	lastHeartbeat *atomic.Int64
}

var _ Detector = (*Deadline)(nil)

// NewDeadline creates a Deadline detector reading time from clock
func NewDeadline(config *DeadlineConfig, clock Clock) (*Deadline, error) {
	if config == nil {
		config = DefaultDeadlineConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if clock == nil {
		clock = MonotonicClock()
	}

	return &Deadline{
		deadline:      config.acceptableHeartbeatPause.Milliseconds() + config.heartbeatInterval.Milliseconds(),
		clock:         clock,
		monitoring:    atomic.NewBool(false),
		lastHeartbeat: atomic.NewInt64(0),
	}, nil
}

// NewDeadlineFactory returns a Factory creating Deadline detectors
func NewDeadlineFactory(config *DeadlineConfig, clock Clock) (Factory, error) {
	if config == nil {
		config = DefaultDeadlineConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if clock == nil {
		clock = MonotonicClock()
	}

	return func() Detector {
		detector, _ := NewDeadline(config, clock)
		return detector
	}, nil
}

// HeartBeat records a heartbeat at the current clock reading
func (d *Deadline) HeartBeat() {
	d.lastHeartbeat.Store(d.clock())
	d.monitoring.Store(true)
}

// IsAvailable reports whether the deadline has not elapsed at the current clock reading
func (d *Deadline) IsAvailable() bool {
	return d.IsAvailableAt(d.clock())
}

// IsAvailableAt reports whether the deadline has not elapsed at timestamp
func (d *Deadline) IsAvailableAt(timestamp int64) bool {
	if !d.monitoring.Load() {
		return true
	}
	return elapsed(timestamp, d.lastHeartbeat.Load()) <= d.deadline
}

// IsMonitoring reports whether a heartbeat was received
func (d *Deadline) IsMonitoring() bool {
	return d.monitoring.Load()
}
