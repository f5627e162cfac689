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

// Package eventstream provides a small topic based broker used to publish
// watcher events, such as peers deemed terminated, to interested parties.
//
// Publishing never blocks: every subscriber buffers its messages in an
// unbounded queue until it reads them or is shut down.
package eventstream

import (
	"sort"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
)

// Stream defines the event stream broker.
type Stream interface {
	// AddSubscriber creates an active subscriber without any topic.
	AddSubscriber() Subscriber
	// RemoveSubscriber unsubscribes sub from every topic and shuts it down.
	RemoveSubscriber(sub Subscriber)
	// SubscribersCount returns the number of subscribers of topic.
	SubscribersCount(topic string) int
	// Topics returns the topics having at least one subscriber, sorted.
	Topics() []string
	// Subscribe subscribes sub to topic. Inactive subscribers are ignored.
	Subscribe(sub Subscriber, topic string)
	// Unsubscribe removes sub from topic.
	Unsubscribe(sub Subscriber, topic string)
	// Publish hands msg to the subscribers of topic and returns how many were notified.
	Publish(topic string, msg any) int
	// Broadcast publishes msg to each of topics and returns how many notifications were made.
	Broadcast(msg any, topics []string) int
	// Close shuts down every subscriber and forgets the topics.
	Close()
}

// EventsStream is the default Stream implementation.
type EventsStream struct {
	// mu guards topics. The per topic sets are only touched under mu.
	mu          sync.RWMutex
	topics      map[string]mapset.Set[Subscriber]
	subscribers mapset.Set[Subscriber]
}

var _ Stream = (*EventsStream)(nil)

// New creates an instance of EventsStream.
func New() Stream {
	return &EventsStream{
		topics:      make(map[string]mapset.Set[Subscriber]),
		subscribers: mapset.NewSet[Subscriber](),
	}
}

func (x *EventsStream) AddSubscriber() Subscriber {
	sub := newSubscriber()
	x.subscribers.Add(sub)
	return sub
}

func (x *EventsStream) RemoveSubscriber(sub Subscriber) {
	x.mu.Lock()
	for _, topic := range sub.Topics() {
		x.unsubscribe(sub, topic)
	}
	x.mu.Unlock()

	x.subscribers.Remove(sub)
	sub.Shutdown()
}

func (x *EventsStream) SubscribersCount(topic string) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if subs, ok := x.topics[topic]; ok {
		return subs.Cardinality()
	}
	return 0
}

func (x *EventsStream) Topics() []string {
	x.mu.RLock()
	topics := make([]string, 0, len(x.topics))
	for topic := range x.topics {
		topics = append(topics, topic)
	}
	x.mu.RUnlock()

	sort.Strings(topics)
	return topics
}

func (x *EventsStream) Subscribe(sub Subscriber, topic string) {
	if !sub.Active() {
		return
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	subs, ok := x.topics[topic]
	if !ok {
		subs = mapset.NewThreadUnsafeSet[Subscriber]()
		x.topics[topic] = subs
	}
	subs.Add(sub)
	sub.subscribe(topic)
}

func (x *EventsStream) Unsubscribe(sub Subscriber, topic string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.unsubscribe(sub, topic)
}

func (x *EventsStream) Publish(topic string, msg any) int {
	x.mu.RLock()
	subs, ok := x.topics[topic]
	var targets []Subscriber
	if ok {
		targets = subs.ToSlice()
	}
	x.mu.RUnlock()

	if len(targets) == 0 {
		return 0
	}

	message := NewMessage(topic, msg)
	for _, sub := range targets {
		sub.signal(message)
	}
	return len(targets)
}

func (x *EventsStream) Broadcast(msg any, topics []string) int {
	notified := 0
	for _, topic := range topics {
		notified += x.Publish(topic, msg)
	}
	return notified
}

func (x *EventsStream) Close() {
	x.mu.Lock()
	x.topics = make(map[string]mapset.Set[Subscriber])
	x.mu.Unlock()

	for _, sub := range x.subscribers.ToSlice() {
		sub.Shutdown()
	}
	x.subscribers.Clear()
}

// unsubscribe must be called with mu held
func (x *EventsStream) unsubscribe(sub Subscriber, topic string) {
	sub.unsubscribe(topic)
	subs, ok := x.topics[topic]
	if !ok {
		return
	}

	subs.Remove(sub)
	if subs.Cardinality() == 0 {
		delete(x.topics, topic)
	}
}
