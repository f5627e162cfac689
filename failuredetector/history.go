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

	"github.com/tochemey/remotewatch/errors"
)

// HeartbeatHistory is a bounded window of the most recent heartbeat
// inter-arrival intervals, in milliseconds.
//
// HeartbeatHistory is a persistent value: Append never modifies the receiver
// and returns a new history. Running sums are maintained incrementally.
type HeartbeatHistory struct {
	maxSampleSize      int
	intervals          []int64
	intervalSum        int64
	squaredIntervalSum float64
}

// NewHeartbeatHistory creates an empty history holding at most maxSampleSize intervals
func NewHeartbeatHistory(maxSampleSize int) (HeartbeatHistory, error) {
	if maxSampleSize <= 0 {
		return HeartbeatHistory{}, errors.ErrInvalidMaxSampleSize
	}
	return HeartbeatHistory{
		maxSampleSize: maxSampleSize,
		intervals:     make([]int64, 0),
	}, nil
}

// Append returns a new history with interval added.
// When the history is full the oldest interval is dropped.
func (h HeartbeatHistory) Append(interval int64) HeartbeatHistory {
	src := h.intervals
	var dropped int64
	if len(src) >= h.maxSampleSize {
		dropped = src[0]
		src = src[1:]
	}

	dst := make([]int64, len(src)+1, h.maxSampleSize)
	copy(dst, src)
	dst[len(src)] = interval

	return HeartbeatHistory{
		maxSampleSize:      h.maxSampleSize,
		intervals:          dst,
		intervalSum:        h.intervalSum - dropped + interval,
		squaredIntervalSum: h.squaredIntervalSum - square(dropped) + square(interval),
	}
}

// MaxSampleSize returns the capacity of the history
func (h HeartbeatHistory) MaxSampleSize() int {
	return h.maxSampleSize
}

// Len returns the number of intervals retained
func (h HeartbeatHistory) Len() int {
	return len(h.intervals)
}

// Intervals returns a copy of the retained intervals, oldest first
func (h HeartbeatHistory) Intervals() []int64 {
	out := make([]int64, len(h.intervals))
	copy(out, h.intervals)
	return out
}

// Mean returns the mean interval. It is zero for an empty history.
func (h HeartbeatHistory) Mean() float64 {
	if len(h.intervals) == 0 {
		return 0
	}
	return float64(h.intervalSum) / float64(len(h.intervals))
}

// Variance returns the variance of the intervals, never negative
func (h HeartbeatHistory) Variance() float64 {
	if len(h.intervals) == 0 {
		return 0
	}
	mean := h.Mean()
	variance := h.squaredIntervalSum/float64(len(h.intervals)) - mean*mean
	// floating point cancellation can push a tiny variance below zero
	return math.Max(variance, 0)
}

// StdDeviation returns the standard deviation of the intervals
func (h HeartbeatHistory) StdDeviation() float64 {
	return math.Sqrt(h.Variance())
}

// square is computed in float64 since intervals beyond ~3e9ms overflow int64 when squared
func square(interval int64) float64 {
	value := float64(interval)
	return value * value
}
