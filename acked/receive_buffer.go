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
)

// MaxNacks bounds the number of missing sequence numbers reported by a single Ack.
// When more are missing the lowest ones are reported; the rest are reported
// by later acks once the first gaps are filled.
const MaxNacks = 1024

// ReceiveBuffer reorders the messages received from a peer.
//
// Messages arriving out of order are held until the gap before them is filled.
// ExtractDeliverable yields the contiguous run following the last delivered
// sequence number and the Ack to send back. A ReceiveBuffer is never modified
// in place.
type ReceiveBuffer[T Sequenced] struct {
	lastDelivered SeqNo
	cumulativeAck SeqNo
	buf           []T
}

// Deliverable is the result of ReceiveBuffer.ExtractDeliverable
type Deliverable[T Sequenced] struct {
	// Buffer is the receive buffer without the delivered messages
	Buffer *ReceiveBuffer[T]
	// Deliverables are the messages to hand over, in sequence order
	Deliverables []T
	// Ack is the acknowledgment to send to the peer
	Ack Ack
}

// NewReceiveBuffer creates an empty ReceiveBuffer expecting sequence number 0 first
func NewReceiveBuffer[T Sequenced]() *ReceiveBuffer[T] {
	return &ReceiveBuffer[T]{
		lastDelivered: -1,
		cumulativeAck: -1,
	}
}

// Receive returns a new buffer holding msg.
// Duplicates and messages already delivered only advance the cumulative ack.
func (b *ReceiveBuffer[T]) Receive(msg T) *ReceiveBuffer[T] {
	seq := msg.Seq()
	next := &ReceiveBuffer[T]{
		lastDelivered: b.lastDelivered,
		cumulativeAck: MaxSeqNo(seq, b.cumulativeAck),
		buf:           b.buf,
	}

	if !seq.Greater(b.lastDelivered) {
		return next
	}

	idx, found := slices.BinarySearchFunc(b.buf, seq, func(e T, target SeqNo) int { return e.Seq().Compare(target) })
	if found {
		return next
	}

	next.buf = slices.Insert(slices.Clone(b.buf), idx, msg)
	return next
}

// ExtractDeliverable returns the run of messages directly following the last
// delivered sequence number, the buffer without them and the Ack reporting
// the gaps still pending, at most MaxNacks of them.
func (b *ReceiveBuffer[T]) ExtractDeliverable() Deliverable[T] {
	var (
		deliver   []T
		nacks     []SeqNo
		delivered = b.lastDelivered
		prev      = b.lastDelivered
	)

	for _, msg := range b.buf {
		seq := msg.Seq()
		switch {
		case seq.IsSuccessor(delivered):
			deliver = append(deliver, msg)
			delivered = delivered.Inc()
		case !seq.IsSuccessor(prev):
			for missing := prev.Inc(); missing != seq && len(nacks) < MaxNacks; missing = missing.Inc() {
				nacks = append(nacks, missing)
			}
		}
		prev = seq
	}

	remaining := b.buf[len(deliver):]
	return Deliverable[T]{
		Buffer: &ReceiveBuffer[T]{
			lastDelivered: delivered,
			cumulativeAck: b.cumulativeAck,
			buf:           slices.Clone(remaining),
		},
		Deliverables: deliver,
		Ack:          Ack{CumulativeAck: b.cumulativeAck, Nacks: nacks},
	}
}

// MergeFrom returns a buffer combining the receiver and other, used when a
// connection fails over. On equal sequence numbers the receiver's message is kept.
func (b *ReceiveBuffer[T]) MergeFrom(other *ReceiveBuffer[T]) *ReceiveBuffer[T] {
	lastDelivered := MaxSeqNo(b.lastDelivered, other.lastDelivered)
	merged := &ReceiveBuffer[T]{
		lastDelivered: lastDelivered,
		cumulativeAck: MaxSeqNo(b.cumulativeAck, other.cumulativeAck),
		buf:           make([]T, 0, len(b.buf)+len(other.buf)),
	}

	i, j := 0, 0
	for i < len(b.buf) || j < len(other.buf) {
		var msg T
		switch {
		case j >= len(other.buf):
			msg = b.buf[i]
			i++
		case i >= len(b.buf):
			msg = other.buf[j]
			j++
		default:
			switch b.buf[i].Seq().Compare(other.buf[j].Seq()) {
			case -1:
				msg = b.buf[i]
				i++
			case 1:
				msg = other.buf[j]
				j++
			default:
				msg = b.buf[i]
				i++
				j++
			}
		}

		if msg.Seq().Greater(lastDelivered) {
			merged.buf = append(merged.buf, msg)
		}
	}
	return merged
}

// LastDelivered returns the sequence number of the last delivered message, -1 when none
func (b *ReceiveBuffer[T]) LastDelivered() SeqNo {
	return b.lastDelivered
}

// CumulativeAck returns the highest sequence number received, -1 when none
func (b *ReceiveBuffer[T]) CumulativeAck() SeqNo {
	return b.cumulativeAck
}

// Pending returns the messages held for later delivery, in sequence order
func (b *ReceiveBuffer[T]) Pending() []T {
	return slices.Clone(b.buf)
}
