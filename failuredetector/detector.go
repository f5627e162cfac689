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

import "time"

// Detector reports whether a monitored resource is considered alive
// based on the heartbeats it received.
type Detector interface {
	// IsAvailable reports whether the resource is considered alive.
	// A detector that never received a heartbeat is available.
	IsAvailable() bool
	// IsMonitoring reports whether at least one heartbeat was received
	IsMonitoring() bool
	// HeartBeat records a heartbeat at the current clock reading
	HeartBeat()
}

// Factory creates a fresh Detector
type Factory func() Detector

// elapsed returns now-since with wrapping arithmetic
func elapsed(now, since int64) int64 {
	return now - since
}

// millis converts d to fractional milliseconds, the unit of the clock
func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
