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

package eventstream

import (
	"errors"
	"time"

	"github.com/Workiva/go-datastructures/queue"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// ErrSubscriberClosed is returned when reading from a subscriber that was shut down
var ErrSubscriberClosed = errors.New("subscriber is closed")

// ErrNoMessage is returned by Next when no message arrived within the timeout
var ErrNoMessage = errors.New("no message received")

// Subscriber defines the subscriber interface.
//
// Subscribers are created by a Stream via AddSubscriber().
type Subscriber interface {
	// ID returns the subscriber unique identifier
	ID() string
	// Active reports whether the subscriber still receives messages
	Active() bool
	// Topics returns the topics the subscriber is subscribed to
	Topics() []string
	// Iterator drains the buffered messages through a closed channel
	Iterator() chan *Message
	// Next waits up to timeout for the next message
	Next(timeout time.Duration) (*Message, error)
	// Shutdown stops the subscriber and discards its pending messages
	Shutdown()

	signal(message *Message)
	subscribe(topic string)
	unsubscribe(topic string)
}

type subscriber struct {
	id       string
	topics   mapset.Set[string]
	messages *queue.Queue
	active   *atomic.Bool
}

var _ Subscriber = (*subscriber)(nil)

func newSubscriber() *subscriber {
	return &subscriber{
		id:       uuid.NewString(),
		topics:   mapset.NewSet[string](),
		messages: queue.New(16),
		active:   atomic.NewBool(true),
	}
}

func (s *subscriber) ID() string {
	return s.id
}

func (s *subscriber) Active() bool {
	return s.active.Load()
}

func (s *subscriber) Topics() []string {
	return s.topics.ToSlice()
}

func (s *subscriber) Shutdown() {
	if s.active.CompareAndSwap(true, false) {
		s.messages.Dispose()
	}
}

// Iterator drains the messages that are buffered at the time of invocation and
// returns them through a closed channel.
func (s *subscriber) Iterator() chan *Message {
	n := s.messages.Len()
	out := make(chan *Message, n)
	defer close(out)

	if n == 0 {
		return out
	}

	items, err := s.messages.Get(n)
	if err != nil {
		return out
	}

	for _, item := range items {
		out <- item.(*Message)
	}
	return out
}

func (s *subscriber) Next(timeout time.Duration) (*Message, error) {
	items, err := s.messages.Poll(1, timeout)
	switch {
	case errors.Is(err, queue.ErrTimeout):
		return nil, ErrNoMessage
	case errors.Is(err, queue.ErrDisposed):
		return nil, ErrSubscriberClosed
	case err != nil:
		return nil, err
	case len(items) == 0:
		return nil, ErrNoMessage
	}
	return items[0].(*Message), nil
}

func (s *subscriber) signal(message *Message) {
	if s.active.Load() {
		_ = s.messages.Put(message)
	}
}

func (s *subscriber) subscribe(topic string) {
	s.topics.Add(topic)
}

func (s *subscriber) unsubscribe(topic string) {
	s.topics.Remove(topic)
}
