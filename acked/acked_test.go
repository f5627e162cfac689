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
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/remotewatch/errors"
)

type testMessage struct {
	seq  SeqNo
	body string
}

func (m testMessage) Seq() SeqNo {
	return m.seq
}

func msg(seq int64) testMessage {
	return testMessage{seq: SeqNo(seq), body: fmt.Sprintf("msg%d", seq)}
}

func seqs(messages []testMessage) []SeqNo {
	out := make([]SeqNo, len(messages))
	for i, m := range messages {
		out[i] = m.seq
	}
	return out
}

func TestSeqNo(t *testing.T) {
	t.Run("With plain ordering", func(t *testing.T) {
		assert.True(t, SeqNo(0).Less(SeqNo(1)))
		assert.True(t, SeqNo(1).Greater(SeqNo(0)))
		assert.Zero(t, SeqNo(42).Compare(SeqNo(42)))
		assert.False(t, SeqNo(42).Less(SeqNo(42)))
		assert.True(t, SeqNo(-1).Less(SeqNo(0)))
	})
	t.Run("With wraparound ordering", func(t *testing.T) {
		ordered := []SeqNo{math.MaxInt64 - 1, math.MaxInt64, math.MinInt64, math.MinInt64 + 1}
		for i := 0; i < len(ordered)-1; i++ {
			assert.True(t, ordered[i].Less(ordered[i+1]), "%s < %s", ordered[i], ordered[i+1])
			assert.True(t, ordered[i+1].Greater(ordered[i]), "%s > %s", ordered[i+1], ordered[i])
		}
	})
	t.Run("Is antisymmetric at half range", func(t *testing.T) {
		a, b := SeqNo(0), SeqNo(math.MinInt64)
		assert.Equal(t, -a.Compare(b), b.Compare(a))
		assert.NotZero(t, a.Compare(b))
	})
	t.Run("Inc wraps", func(t *testing.T) {
		assert.Equal(t, SeqNo(1), SeqNo(0).Inc())
		assert.Equal(t, SeqNo(math.MinInt64), SeqNo(math.MaxInt64).Inc())
		assert.True(t, SeqNo(math.MinInt64).IsSuccessor(math.MaxInt64))
		assert.True(t, SeqNo(0).IsSuccessor(-1))
		assert.False(t, SeqNo(2).IsSuccessor(0))
	})
	t.Run("Max", func(t *testing.T) {
		assert.Equal(t, SeqNo(3), MaxSeqNo(3, 2))
		assert.Equal(t, SeqNo(math.MinInt64), MaxSeqNo(math.MaxInt64, math.MinInt64))
		assert.Equal(t, "42", SeqNo(42).String())
	})
}

func TestAck(t *testing.T) {
	ack := NewAck(10, 7, 3, 7, 5)
	assert.Equal(t, SeqNo(10), ack.CumulativeAck)
	assert.Equal(t, []SeqNo{3, 5, 7}, ack.Nacks)
	assert.True(t, ack.IsNacked(5))
	assert.False(t, ack.IsNacked(4))
	assert.Equal(t, "ACK[10, {3, 5, 7}]", ack.String())
	assert.Equal(t, "ACK[1, {}]", NewAck(1).String())
}

func TestSendBuffer(t *testing.T) {
	t.Run("With invalid capacity", func(t *testing.T) {
		buffer, err := NewSendBuffer[testMessage](0)
		assert.ErrorIs(t, err, errors.ErrInvalidCapacity)
		assert.Nil(t, buffer)
	})
	t.Run("Buffers up to capacity", func(t *testing.T) {
		buffer, err := NewSendBuffer[testMessage](4)
		require.NoError(t, err)
		assert.Equal(t, SeqNo(-1), buffer.MaxSeq())
		assert.Equal(t, 4, buffer.Capacity())

		for i := range int64(4) {
			buffer, err = buffer.Buffer(msg(i))
			require.NoError(t, err)
		}
		assert.Equal(t, []SeqNo{0, 1, 2, 3}, seqs(buffer.NonAcked()))
		assert.Empty(t, buffer.Nacked())
		assert.Equal(t, SeqNo(3), buffer.MaxSeq())
		assert.Equal(t, 4, buffer.Len())

		full, err := buffer.Buffer(msg(4))
		assert.Nil(t, full)
		var capacityErr *errors.ResendBufferCapacityReachedError
		require.ErrorAs(t, err, &capacityErr)
		assert.Equal(t, 4, capacityErr.Capacity)
		assert.ErrorIs(t, err, errors.ErrResendBufferCapacityReached)

		// the failed call left the buffer untouched
		assert.Equal(t, []SeqNo{0, 1, 2, 3}, seqs(buffer.NonAcked()))
	})
	t.Run("Does not modify the receiver", func(t *testing.T) {
		empty, err := NewSendBuffer[testMessage](4)
		require.NoError(t, err)
		one, err := empty.Buffer(msg(0))
		require.NoError(t, err)
		two, err := one.Buffer(msg(1))
		require.NoError(t, err)

		assert.Empty(t, empty.NonAcked())
		assert.Equal(t, []SeqNo{0}, seqs(one.NonAcked()))
		assert.Equal(t, []SeqNo{0, 1}, seqs(two.NonAcked()))
	})
	t.Run("Rejects non monotonic sequence numbers", func(t *testing.T) {
		buffer, err := NewSendBuffer[testMessage](4)
		require.NoError(t, err)
		buffer, err = buffer.Buffer(msg(1))
		require.NoError(t, err)

		_, err = buffer.Buffer(msg(1))
		assert.ErrorIs(t, err, errors.ErrNonMonotonicSequence)
		_, err = buffer.Buffer(msg(0))
		assert.ErrorIs(t, err, errors.ErrNonMonotonicSequence)
	})
	t.Run("Removes acknowledged messages", func(t *testing.T) {
		buffer := fillSendBuffer(t, 10, 5)

		acked, err := buffer.Acknowledge(NewAck(1))
		require.NoError(t, err)
		assert.Equal(t, []SeqNo{2, 3, 4}, seqs(acked.NonAcked()))
		assert.Empty(t, acked.Nacked())

		acked, err = acked.Acknowledge(NewAck(4))
		require.NoError(t, err)
		assert.Empty(t, acked.NonAcked())
		assert.Zero(t, acked.Len())
		assert.Equal(t, SeqNo(4), acked.MaxSeq())
	})
	t.Run("Keeps nacked messages for resend", func(t *testing.T) {
		buffer := fillSendBuffer(t, 10, 5)

		acked, err := buffer.Acknowledge(NewAck(1, 0))
		require.NoError(t, err)
		assert.Equal(t, []SeqNo{2, 3, 4}, seqs(acked.NonAcked()))
		assert.Equal(t, []SeqNo{0}, seqs(acked.Nacked()))
		assert.Equal(t, []SeqNo{0, 2, 3, 4}, seqs(acked.Outstanding()))

		acked, err = acked.Acknowledge(NewAck(3, 0, 2))
		require.NoError(t, err)
		assert.Equal(t, []SeqNo{4}, seqs(acked.NonAcked()))
		assert.Equal(t, []SeqNo{0, 2}, seqs(acked.Nacked()))

		acked, err = acked.Acknowledge(NewAck(4))
		require.NoError(t, err)
		assert.Empty(t, acked.NonAcked())
		assert.Empty(t, acked.Nacked())
	})
	t.Run("Nacked messages count against capacity", func(t *testing.T) {
		buffer := fillSendBuffer(t, 3, 3)
		acked, err := buffer.Acknowledge(NewAck(1, 0))
		require.NoError(t, err)
		assert.Equal(t, 2, acked.Len())

		acked, err = acked.Buffer(msg(3))
		require.NoError(t, err)
		_, err = acked.Buffer(msg(4))
		assert.ErrorIs(t, err, errors.ErrResendBufferCapacityReached)
	})
	t.Run("Rejects an unknown cumulative ack", func(t *testing.T) {
		buffer := fillSendBuffer(t, 10, 3)
		_, err := buffer.Acknowledge(NewAck(5))
		assert.ErrorIs(t, err, errors.ErrUnknownCumulativeAck)
		assert.Equal(t, []SeqNo{0, 1, 2}, seqs(buffer.NonAcked()))
	})
	t.Run("Rejects an unfulfillable resend", func(t *testing.T) {
		buffer := fillSendBuffer(t, 10, 5)
		acked, err := buffer.Acknowledge(NewAck(2))
		require.NoError(t, err)

		failed, err := acked.Acknowledge(NewAck(4, 1, 3))
		assert.Nil(t, failed)
		var unfulfillable *errors.ResendUnfulfillableError
		require.ErrorAs(t, err, &unfulfillable)
		assert.Equal(t, []int64{1}, unfulfillable.Missing)
		assert.ErrorIs(t, err, errors.ErrResendUnfulfillable)

		assert.Equal(t, []SeqNo{3, 4}, seqs(acked.NonAcked()))
		assert.Empty(t, acked.Nacked())
	})
}

func TestReceiveBuffer(t *testing.T) {
	t.Run("Delivers in order", func(t *testing.T) {
		buffer := NewReceiveBuffer[testMessage]()
		assert.Equal(t, SeqNo(-1), buffer.LastDelivered())
		assert.Equal(t, SeqNo(-1), buffer.CumulativeAck())

		buffer = buffer.Receive(msg(0)).Receive(msg(1))
		deliverable := buffer.ExtractDeliverable()
		assert.Equal(t, []SeqNo{0, 1}, seqs(deliverable.Deliverables))
		assert.Equal(t, SeqNo(1), deliverable.Ack.CumulativeAck)
		assert.Empty(t, deliverable.Ack.Nacks)
		assert.Equal(t, SeqNo(1), deliverable.Buffer.LastDelivered())
		assert.Empty(t, deliverable.Buffer.Pending())
	})
	t.Run("Reorders arrivals", func(t *testing.T) {
		buffer := NewReceiveBuffer[testMessage]().Receive(msg(1))
		deliverable := buffer.ExtractDeliverable()
		assert.Empty(t, deliverable.Deliverables)
		assert.Equal(t, SeqNo(1), deliverable.Ack.CumulativeAck)
		assert.Equal(t, []SeqNo{0}, deliverable.Ack.Nacks)

		deliverable = deliverable.Buffer.Receive(msg(0)).ExtractDeliverable()
		assert.Equal(t, []SeqNo{0, 1}, seqs(deliverable.Deliverables))
		assert.Equal(t, SeqNo(1), deliverable.Ack.CumulativeAck)
		assert.Empty(t, deliverable.Ack.Nacks)
	})
	t.Run("Reports every gap", func(t *testing.T) {
		buffer := NewReceiveBuffer[testMessage]()
		for _, seq := range []int64{0, 2, 5, 6, 9} {
			buffer = buffer.Receive(msg(seq))
		}
		deliverable := buffer.ExtractDeliverable()
		assert.Equal(t, []SeqNo{0}, seqs(deliverable.Deliverables))
		assert.Equal(t, SeqNo(9), deliverable.Ack.CumulativeAck)
		assert.Equal(t, []SeqNo{1, 3, 4, 7, 8}, deliverable.Ack.Nacks)
		assert.Equal(t, []SeqNo{2, 5, 6, 9}, seqs(deliverable.Buffer.Pending()))
	})
	t.Run("Bounds the reported gaps", func(t *testing.T) {
		buffer := NewReceiveBuffer[testMessage]().Receive(msg(1 << 40))
		deliverable := buffer.ExtractDeliverable()
		assert.Empty(t, deliverable.Deliverables)
		assert.Equal(t, SeqNo(1<<40), deliverable.Ack.CumulativeAck)
		require.Len(t, deliverable.Ack.Nacks, MaxNacks)
		assert.Equal(t, SeqNo(0), deliverable.Ack.Nacks[0])
		assert.Equal(t, SeqNo(MaxNacks-1), deliverable.Ack.Nacks[MaxNacks-1])

		buffer = NewReceiveBuffer[testMessage]().Receive(msg(MaxNacks)).Receive(msg(2 * MaxNacks))
		deliverable = buffer.ExtractDeliverable()
		require.Len(t, deliverable.Ack.Nacks, MaxNacks)
		assert.Equal(t, SeqNo(MaxNacks-1), deliverable.Ack.Nacks[MaxNacks-1])
	})
	t.Run("Absorbs duplicates", func(t *testing.T) {
		buffer := NewReceiveBuffer[testMessage]().Receive(msg(0)).Receive(msg(1))
		deliverable := buffer.ExtractDeliverable()
		require.Equal(t, []SeqNo{0, 1}, seqs(deliverable.Deliverables))

		again := deliverable.Buffer.Receive(msg(1)).Receive(msg(0)).Receive(msg(1))
		assert.Empty(t, again.Pending())
		deliverable = again.ExtractDeliverable()
		assert.Empty(t, deliverable.Deliverables)
		assert.Equal(t, SeqNo(1), deliverable.Ack.CumulativeAck)

		pending := NewReceiveBuffer[testMessage]().Receive(msg(3)).Receive(msg(3))
		assert.Len(t, pending.Pending(), 1)
	})
	t.Run("Does not modify the receiver", func(t *testing.T) {
		empty := NewReceiveBuffer[testMessage]()
		one := empty.Receive(msg(1))
		two := one.Receive(msg(0))
		assert.Empty(t, empty.Pending())
		assert.Equal(t, []SeqNo{1}, seqs(one.Pending()))
		assert.Equal(t, []SeqNo{0, 1}, seqs(two.Pending()))

		_ = two.ExtractDeliverable()
		assert.Equal(t, []SeqNo{0, 1}, seqs(two.Pending()))
	})
	t.Run("MergeFrom", func(t *testing.T) {
		left := NewReceiveBuffer[testMessage]().Receive(msg(0)).ExtractDeliverable().Buffer
		left = left.Receive(msg(2)).Receive(msg(4))

		right := NewReceiveBuffer[testMessage]()
		for _, seq := range []int64{0, 1} {
			right = right.Receive(msg(seq))
		}
		right = right.ExtractDeliverable().Buffer
		right = right.Receive(testMessage{seq: 4, body: "other"}).Receive(msg(5))

		merged := left.MergeFrom(right)
		assert.Equal(t, SeqNo(1), merged.LastDelivered())
		assert.Equal(t, SeqNo(5), merged.CumulativeAck())
		assert.Equal(t, []SeqNo{2, 4, 5}, seqs(merged.Pending()))
		// the receiver's copy wins
		assert.Equal(t, "msg4", merged.Pending()[1].body)

		deliverable := merged.ExtractDeliverable()
		assert.Equal(t, []SeqNo{2}, seqs(deliverable.Deliverables))
		assert.Equal(t, []SeqNo{3}, deliverable.Ack.Nacks)
	})
}

func TestSendAndReceiveBuffers(t *testing.T) {
	const total = 1000

	random := rand.New(rand.NewSource(1234))
	happened := func(p float64) bool { return random.Float64() < p }

	sendBuffer, err := NewSendBuffer[testMessage](total)
	require.NoError(t, err)
	receiveBuffer := NewReceiveBuffer[testMessage]()
	lastAck := NewAck(-1)
	next := int64(0)
	var delivered []testMessage

	senderSteps := func(steps int, p float64) {
		outstanding := sendBuffer.Outstanding()
		resends := outstanding[:min(steps, len(outstanding))]
		var sends []testMessage
		for range steps - len(resends) {
			if next == total {
				break
			}
			message := msg(next)
			next++
			sendBuffer, err = sendBuffer.Buffer(message)
			require.NoError(t, err)
			sends = append(sends, message)
		}

		for _, message := range append(resends, sends...) {
			if happened(p) {
				receiveBuffer = receiveBuffer.Receive(message)
			}
		}
	}

	receiverStep := func(p float64) {
		if happened(p) {
			sendBuffer, err = sendBuffer.Acknowledge(lastAck)
			require.NoError(t, err)
		}
		deliverable := receiveBuffer.ExtractDeliverable()
		receiveBuffer = deliverable.Buffer
		delivered = append(delivered, deliverable.Deliverables...)
		lastAck = deliverable.Ack
	}

	// lossy phase
	for range total {
		senderSteps(random.Intn(3), 0.5)
		receiverStep(0.5)
	}

	// reliable phase
	for i := 0; i < 5*total && len(delivered) < total; i++ {
		senderSteps(1, 1.0)
		receiverStep(1.0)
	}

	require.Len(t, delivered, total)
	for i, message := range delivered {
		assert.Equal(t, msg(int64(i)), message)
	}
}

func fillSendBuffer(t *testing.T, capacity int, count int64) *SendBuffer[testMessage] {
	t.Helper()
	buffer, err := NewSendBuffer[testMessage](capacity)
	require.NoError(t, err)
	for i := range count {
		buffer, err = buffer.Buffer(msg(i))
		require.NoError(t, err)
	}
	return buffer
}
