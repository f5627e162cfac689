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

package acked

import (
	"slices"
	"strings"
)

// Ack is the acknowledgment sent back by a receiver.
//
// CumulativeAck is the highest sequence number received so far and Nacks lists,
// in ascending order, the sequence numbers below it that are still missing.
// Everything else up to CumulativeAck has been received.
type Ack struct {
	CumulativeAck SeqNo
	Nacks         []SeqNo
}

// NewAck creates an Ack. Nacks are sorted and deduplicated.
func NewAck(cumulativeAck SeqNo, nacks ...SeqNo) Ack {
	sorted := slices.Clone(nacks)
	slices.SortFunc(sorted, func(a, b SeqNo) int { return a.Compare(b) })
	return Ack{
		CumulativeAck: cumulativeAck,
		Nacks:         slices.Compact(sorted),
	}
}

// IsNacked reports whether seq is listed as missing
func (a Ack) IsNacked(seq SeqNo) bool {
	_, found := slices.BinarySearchFunc(a.Nacks, seq, func(e, target SeqNo) int { return e.Compare(target) })
	return found
}

// String returns a compact representation of the ack
func (a Ack) String() string {
	var builder strings.Builder
	builder.WriteString("ACK[")
	builder.WriteString(a.CumulativeAck.String())
	builder.WriteString(", {")
	for i, nack := range a.Nacks {
		if i > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString(nack.String())
	}
	builder.WriteString("}]")
	return builder.String()
}
