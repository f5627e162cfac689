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
	"math"

	"go.uber.org/atomic"

	"github.com/tochemey/remotewatch/log"
)

// phiState is the part of the detector swapped as a unit on every heartbeat
type phiState struct {
	history       HeartbeatHistory
	lastTimestamp *int64
}

// PhiAccrual implements the phi accrual failure detector of Hayashibara et al.
//
// Instead of a boolean verdict the detector computes phi, a suspicion level
// derived from the distribution of past heartbeat intervals. The resource is
// considered unavailable once phi reaches the configured threshold.
//
// The mean of the intervals is shifted by the acceptable heartbeat pause so that
// occasional missed heartbeats do not trip the detector, and the standard
// deviation is floored at the configured minimum.
//
// PhiAccrual is safe for concurrent use.
type PhiAccrual struct {
	threshold                float64
	minStdDeviation          float64
	acceptableHeartbeatPause float64
	clock                    Clock
	logger                   log.Logger
	state                    *atomic.Pointer[phiState]
}

var _ Detector = (*PhiAccrual)(nil)

// NewPhiAccrual creates a PhiAccrual detector reading time from clock.
func NewPhiAccrual(config *PhiAccrualConfig, clock Clock, opts ...DetectorOption) (*PhiAccrual, error) {
	if config == nil {
		config = DefaultPhiAccrualConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if clock == nil {
		clock = MonotonicClock()
	}

	options := newDetectorOptions(opts...)

	// the first heartbeat interval is unknown. Seed the history with an assumed
	// distribution centred on the estimate so the first real interval is judged
	// against something sensible.
	history, err := NewHeartbeatHistory(config.maxSampleSize)
	if err != nil {
		return nil, err
	}

	mean := config.firstHeartbeatEstimate.Milliseconds()
	stdDeviation := mean / 4
	history = history.Append(mean - stdDeviation).Append(mean + stdDeviation)

	return &PhiAccrual{
		threshold:                config.threshold,
		minStdDeviation:          millis(config.minStdDeviation),
		acceptableHeartbeatPause: millis(config.acceptableHeartbeatPause),
		clock:                    clock,
		logger:                   options.logger,
		state:                    atomic.NewPointer(&phiState{history: history}),
	}, nil
}

// NewPhiAccrualFactory returns a Factory creating PhiAccrual detectors.
// The configuration is validated once, when the factory is built.
func NewPhiAccrualFactory(config *PhiAccrualConfig, clock Clock, opts ...DetectorOption) (Factory, error) {
	if config == nil {
		config = DefaultPhiAccrualConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if clock == nil {
		clock = MonotonicClock()
	}

	return func() Detector {
		detector, _ := NewPhiAccrual(config, clock, opts...)
		return detector
	}, nil
}

// Threshold returns the phi threshold
func (d *PhiAccrual) Threshold() float64 {
	return d.threshold
}

// History returns the current heartbeat history
func (d *PhiAccrual) History() HeartbeatHistory {
	return d.state.Load().history
}

// HeartBeat records a heartbeat at the current clock reading.
func (d *PhiAccrual) HeartBeat() {
	timestamp := d.clock()
	for {
		current := d.state.Load()
		history := current.history

		if current.lastTimestamp != nil {
			interval := elapsed(timestamp, *current.lastTimestamp)
			// a heartbeat arriving after the resource was deemed unavailable,
			// or a clock going backwards, must not skew the statistics
			if interval >= 0 && d.isAvailableAt(current, timestamp) {
				if d.acceptableHeartbeatPause > 0 && float64(interval) >= d.acceptableHeartbeatPause/3*2 {
					d.logger.Warnf("heartbeat interval is growing too large: %d millis", interval)
				}
				history = history.Append(interval)
			}
		}

		next := &phiState{history: history, lastTimestamp: &timestamp}
		if d.state.CompareAndSwap(current, next) {
			return
		}
	}
}

// IsAvailable reports whether phi is below the threshold at the current clock reading
func (d *PhiAccrual) IsAvailable() bool {
	return d.IsAvailableAt(d.clock())
}

// IsAvailableAt reports whether phi is below the threshold at timestamp
func (d *PhiAccrual) IsAvailableAt(timestamp int64) bool {
	return d.isAvailableAt(d.state.Load(), timestamp)
}

// IsMonitoring reports whether a heartbeat was received
func (d *PhiAccrual) IsMonitoring() bool {
	return d.state.Load().lastTimestamp != nil
}

// CurrentPhi returns phi at the current clock reading
func (d *PhiAccrual) CurrentPhi() float64 {
	return d.PhiAt(d.clock())
}

// PhiAt returns phi at timestamp. It is zero until a heartbeat is received.
func (d *PhiAccrual) PhiAt(timestamp int64) float64 {
	return d.phi(d.state.Load(), timestamp)
}

func (d *PhiAccrual) isAvailableAt(state *phiState, timestamp int64) bool {
	return d.phi(state, timestamp) < d.threshold
}

func (d *PhiAccrual) phi(state *phiState, timestamp int64) float64 {
	if state.lastTimestamp == nil {
		return 0
	}

	timeDiff := elapsed(timestamp, *state.lastTimestamp)
	mean := state.history.Mean() + d.acceptableHeartbeatPause
	stdDeviation := math.Max(state.history.StdDeviation(), d.minStdDeviation)
	return Phi(float64(timeDiff), mean, stdDeviation)
}

// Phi returns the suspicion level for a heartbeat silence of timeDiff given the
// mean and standard deviation of past intervals.
//
// The normal cumulative distribution is approximated with a logistic function
// and evaluated in log space, so the result is finite and non-negative for any
// finite input, and strictly increasing in timeDiff.
func Phi(timeDiff, mean, stdDeviation float64) float64 {
	if stdDeviation <= 0 {
		if timeDiff > mean {
			return math.MaxFloat64
		}
		return 0
	}

	y := (timeDiff - mean) / stdDeviation
	a := y * (1.5976 + 0.070566*y*y)

	// -log10(1 - F(timeDiff)) where 1 - F = 1 / (1 + exp(a)); softplus(a) / ln(10)
	var softplus float64
	if a > 0 {
		softplus = a + math.Log1p(math.Exp(-a))
	} else {
		softplus = math.Log1p(math.Exp(a))
	}

	phi := softplus / math.Ln10
	switch {
	case math.IsNaN(phi):
		return 0
	case math.IsInf(phi, 1):
		return math.MaxFloat64
	default:
		return phi
	}
}
