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

// Package acked implements a selective repeat delivery protocol over
// sequenced messages: a SendBuffer keeps outgoing messages until the peer
// acknowledges them, and a ReceiveBuffer reorders arrivals and yields the
// contiguous prefix together with the Ack to send back.
//
// Both buffers are values: every operation returns a new buffer and leaves the
// receiver untouched. Callers serialize access to a logical buffer.
package acked

import (
	"math"
	"strconv"
)

// SeqNo is a sequence number ordered on a circle: b is after a when the
// wrapping difference b-a is positive, so ordering survives the roll over from
// math.MaxInt64 to math.MinInt64.
type SeqNo int64

// Compare returns -1, 0 or +1 depending on whether s is before, equal to or after other.
func (s SeqNo) Compare(other SeqNo) int {
	sgn := 0
	switch {
	case s < other:
		sgn = -1
	case s > other:
		sgn = 1
	}

	// the numeric order is flipped when the two values are more than half
	// the range apart. Both the subtraction and the product wrap.
	if (int64(s)-int64(other))*int64(sgn) < 0 {
		return -sgn
	}
	return sgn
}

// Less reports whether s comes before other
func (s SeqNo) Less(other SeqNo) bool {
	return s.Compare(other) < 0
}

// Greater reports whether s comes after other
func (s SeqNo) Greater(other SeqNo) bool {
	return s.Compare(other) > 0
}

// Inc returns the next sequence number, wrapping from math.MaxInt64 to math.MinInt64
func (s SeqNo) Inc() SeqNo {
	if s == math.MaxInt64 {
		return math.MinInt64
	}
	return s + 1
}

// IsSuccessor reports whether s directly follows other
func (s SeqNo) IsSuccessor(other SeqNo) bool {
	return other.Inc() == s
}

// String returns the decimal form of s
func (s SeqNo) String() string {
	return strconv.FormatInt(int64(s), 10)
}

// MaxSeqNo returns the latest of a and b
func MaxSeqNo(a, b SeqNo) SeqNo {
	if a.Less(b) {
		return b
	}
	return a
}

// Sequenced is implemented by messages carrying a sequence number
type Sequenced interface {
	Seq() SeqNo
}
