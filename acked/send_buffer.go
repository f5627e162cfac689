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

	"github.com/tochemey/remotewatch/errors"
)

// SendBuffer holds the messages sent to a peer until the peer acknowledges them.
//
// Messages not yet acknowledged are kept in NonAcked. Messages the peer reported
// missing are moved to Nacked and must be resent. A SendBuffer is never
// modified in place: Buffer and Acknowledge return a new buffer, and on error
// the receiver is left as it was.
type SendBuffer[T Sequenced] struct {
	capacity int
	nonAcked []T
	nacked   []T
	maxSeq   SeqNo
}

// NewSendBuffer creates an empty SendBuffer holding at most capacity outstanding messages
func NewSendBuffer[T Sequenced](capacity int) (*SendBuffer[T], error) {
	if capacity <= 0 {
		return nil, errors.ErrInvalidCapacity
	}
	return &SendBuffer[T]{
		capacity: capacity,
		maxSeq:   -1,
	}, nil
}

// Buffer returns a new buffer with msg appended to the non acknowledged messages.
//
// It fails with *errors.ResendBufferCapacityReachedError when the buffer is full
// and with errors.ErrNonMonotonicSequence when msg does not come after every
// message buffered so far.
func (b *SendBuffer[T]) Buffer(msg T) (*SendBuffer[T], error) {
	if !msg.Seq().Greater(b.maxSeq) {
		return nil, errors.NewErrNonMonotonicSequence(int64(msg.Seq()), int64(b.maxSeq))
	}

	if len(b.nonAcked)+len(b.nacked) >= b.capacity {
		return nil, errors.NewResendBufferCapacityReachedError(b.capacity)
	}

	nonAcked := make([]T, len(b.nonAcked), len(b.nonAcked)+1)
	copy(nonAcked, b.nonAcked)
	nonAcked = append(nonAcked, msg)

	return &SendBuffer[T]{
		capacity: b.capacity,
		nonAcked: nonAcked,
		nacked:   b.nacked,
		maxSeq:   msg.Seq(),
	}, nil
}

// Acknowledge returns a new buffer reflecting ack.
//
// Messages up to the cumulative ack are released unless they are nacked, in
// which case they move to Nacked. Messages after the cumulative ack stay
// non acknowledged.
//
// It fails with errors.ErrUnknownCumulativeAck when the ack covers sequence
// numbers never buffered and with *errors.ResendUnfulfillableError when a
// nacked message is no longer held and cannot be resent.
func (b *SendBuffer[T]) Acknowledge(ack Ack) (*SendBuffer[T], error) {
	if ack.CumulativeAck.Greater(b.maxSeq) {
		return nil, errors.NewErrUnknownCumulativeAck(int64(ack.CumulativeAck), int64(b.maxSeq))
	}

	var nacked []T
	if len(ack.Nacks) > 0 {
		nacked = make([]T, 0, len(ack.Nacks))
		for _, msg := range b.Outstanding() {
			if ack.IsNacked(msg.Seq()) {
				nacked = append(nacked, msg)
			}
		}
		slices.SortStableFunc(nacked, compareSeq[T])
		nacked = slices.CompactFunc(nacked, func(a, b T) bool { return a.Seq() == b.Seq() })

		if len(nacked) < len(ack.Nacks) {
			return nil, errors.NewResendUnfulfillableError(missingNacks(ack.Nacks, nacked))
		}
	}

	nonAcked := make([]T, 0, len(b.nonAcked))
	for _, msg := range b.nonAcked {
		if msg.Seq().Greater(ack.CumulativeAck) && !ack.IsNacked(msg.Seq()) {
			nonAcked = append(nonAcked, msg)
		}
	}

	return &SendBuffer[T]{
		capacity: b.capacity,
		nonAcked: nonAcked,
		nacked:   nacked,
		maxSeq:   MaxSeqNo(b.maxSeq, ack.CumulativeAck),
	}, nil
}

// NonAcked returns the messages sent and not yet acknowledged, in sequence order
func (b *SendBuffer[T]) NonAcked() []T {
	return slices.Clone(b.nonAcked)
}

// Nacked returns the messages the peer reported missing, in sequence order
func (b *SendBuffer[T]) Nacked() []T {
	return slices.Clone(b.nacked)
}

// Outstanding returns the messages to resend: nacked first, then non acknowledged
func (b *SendBuffer[T]) Outstanding() []T {
	out := make([]T, 0, len(b.nacked)+len(b.nonAcked))
	out = append(out, b.nacked...)
	return append(out, b.nonAcked...)
}

// MaxSeq returns the highest sequence number buffered so far, -1 when none
func (b *SendBuffer[T]) MaxSeq() SeqNo {
	return b.maxSeq
}

// Capacity returns the maximum number of outstanding messages
func (b *SendBuffer[T]) Capacity() int {
	return b.capacity
}

// Len returns the number of outstanding messages
func (b *SendBuffer[T]) Len() int {
	return len(b.nonAcked) + len(b.nacked)
}

func compareSeq[T Sequenced](a, b T) int {
	return a.Seq().Compare(b.Seq())
}

// missingNacks returns the nacked sequence numbers not found in held
func missingNacks[T Sequenced](nacks []SeqNo, held []T) []int64 {
	missing := make([]int64, 0)
	for _, nack := range nacks {
		if !slices.ContainsFunc(held, func(msg T) bool { return msg.Seq() == nack }) {
			missing = append(missing, int64(nack))
		}
	}
	return missing
}
