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

package watcher

import (
	"errors"

	"github.com/Workiva/go-datastructures/queue"

	gerrors "github.com/tochemey/remotewatch/errors"
)

// mailbox is the bounded multi producer single consumer inbox of the watcher.
//
// Enqueue never blocks: when the mailbox is full the message is rejected,
// which is acceptable for ticks and heartbeats that are resent periodically.
// Dequeue blocks until a message arrives or the mailbox is disposed.
type mailbox struct {
	underlying *queue.RingBuffer
}

func newMailbox(capacity int) *mailbox {
	return &mailbox{
		underlying: queue.NewRingBuffer(uint64(capacity)),
	}
}

// Enqueue adds msg to the mailbox
func (m *mailbox) Enqueue(msg any) error {
	ok, err := m.underlying.Offer(msg)
	if err != nil {
		if errors.Is(err, queue.ErrDisposed) {
			return gerrors.ErrWatcherNotStarted
		}
		return err
	}

	if !ok {
		return gerrors.ErrMailboxFull
	}
	return nil
}

// Dequeue waits for the next message
func (m *mailbox) Dequeue() (any, error) {
	return m.underlying.Get()
}

// Len returns the number of pending messages
func (m *mailbox) Len() int {
	return int(m.underlying.Len())
}

// Dispose releases the consumer and rejects further messages
func (m *mailbox) Dispose() {
	m.underlying.Dispose()
}
