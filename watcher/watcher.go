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

// Package watcher implements the remote watcher: it heartbeats the nodes
// hosting watched remote actors, feeds the responses to a failure detector
// registry and, once a node is deemed unreachable, quarantines it and
// publishes an AddressTerminated event.
//
// All the watcher state is owned by a single goroutine consuming a bounded
// mailbox. Application requests, inbound transport messages and scheduled
// ticks are all serialized through that mailbox.
package watcher

import (
	"context"
	"encoding/binary"
	"fmt"
	"slices"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/tochemey/remotewatch/address"
	"github.com/tochemey/remotewatch/errors"
	"github.com/tochemey/remotewatch/eventstream"
	"github.com/tochemey/remotewatch/failuredetector"
	imetric "github.com/tochemey/remotewatch/internal/metric"
	"github.com/tochemey/remotewatch/log"
)

const quarantineReason = "Deemed unreachable by remote failure detector"

// Watcher monitors the nodes hosting watched remote actors
type Watcher struct {
	self      address.Node
	uid       int64
	transport Transport
	config    *Config
	logger    log.Logger
	clock     failuredetector.Clock
	factory   failuredetector.Factory
	registry  *failuredetector.Registry[address.Node]
	events    eventstream.Stream

	meterProvider metric.MeterProvider
	meter         metric.Meter
	metric        *imetric.WatcherMetric
	watchedNodes  *atomic.Int64

	// lifecycle
	mu        sync.Mutex
	started   *atomic.Bool
	ctx       context.Context
	cancel    context.CancelFunc
	mailbox   *atomic.Pointer[mailbox]
	scheduler *scheduler
	done      chan struct{}

	// consumer owned state
	watching       map[string]mapset.Set[string]
	watchees       map[string]*address.Address
	watcheeByNodes map[address.Node]mapset.Set[string]
	addressUIDs    map[address.Node]int64
	unreachable    mapset.Set[address.Node]
}

// New creates a Watcher for the local node self sending its messages through transport
func New(self address.Node, transport Transport, opts ...Option) (*Watcher, error) {
	if transport == nil {
		return nil, errors.ErrTransportRequired
	}

	if err := self.Validate(); err != nil {
		return nil, err
	}

	w := &Watcher{
		self:         self,
		uid:          newUID(),
		transport:    transport,
		config:       DefaultConfig(),
		logger:       log.DefaultLogger,
		clock:        failuredetector.MonotonicClock(),
		events:       eventstream.New(),
		watchedNodes: atomic.NewInt64(0),
		started:      atomic.NewBool(false),
		mailbox:      atomic.NewPointer[mailbox](nil),
	}

	for _, opt := range opts {
		opt.Apply(w)
	}

	if err := w.config.Validate(); err != nil {
		return nil, err
	}

	if w.factory == nil {
		factory, err := failuredetector.NewPhiAccrualFactory(w.config.failureDetector, w.clock, failuredetector.WithDetectorLogger(w.logger))
		if err != nil {
			return nil, err
		}
		w.factory = factory
	}

	w.registry = failuredetector.NewRegistry[address.Node](w.factory, failuredetector.WithRegistryLogger[address.Node](w.logger))

	w.meter = imetric.New(imetric.WithMeterProvider(w.meterProvider)).Meter()
	w.resetState()
	return w, nil
}

// Start starts the watcher
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started.Load() {
		return errors.ErrWatcherAlreadyStarted
	}

	scheduler, err := newScheduler(w.logger, w.config.heartbeatInterval+w.config.unreachableReaperInterval)
	if err != nil {
		return err
	}

	watcherMetric, err := imetric.NewWatcherMetric(w.meter, w.watchedNodes.Load)
	if err != nil {
		return err
	}

	box := newMailbox(w.config.mailboxSize)
	w.ctx, w.cancel = context.WithCancel(context.WithoutCancel(ctx))
	w.scheduler = scheduler
	w.metric = watcherMetric
	w.done = make(chan struct{})
	w.resetState()

	w.scheduler.Start(w.ctx)
	w.mailbox.Store(box)
	go w.run(box, w.done)

	w.started.Store(true)
	w.logger.Infof("remote watcher of %s started (uid=%d)", w.self, w.uid)
	return nil
}

// Stop stops the watcher. Pending messages are discarded and the ticks cancelled.
// When ctx expires first the message being handled is cancelled and Stop
// returns once it completes, with the ctx error.
func (w *Watcher) Stop(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started.Load() {
		return errors.ErrWatcherNotStarted
	}

	w.started.Store(false)
	if box := w.mailbox.Swap(nil); box != nil {
		box.Dispose()
	}

	var err error
	select {
	case <-w.done:
	case <-ctx.Done():
		err = multierr.Append(err, fmt.Errorf("remote watcher did not stop in time: %w", ctx.Err()))
		// abort the in-flight transport call, the state below is owned by run until done
		w.cancel()
		<-w.done
	}

	// bounded by the scheduler stop timeout
	w.scheduler.Stop(context.WithoutCancel(ctx))
	w.cancel()
	w.registry.Reset()
	w.watchedNodes.Store(0)
	err = multierr.Append(err, w.metric.Close())

	w.logger.Infof("remote watcher of %s stopped", w.self)
	return err
}

// Watch registers watcher's interest in the remote actor watchee
func (w *Watcher) Watch(watchee, watcher *address.Address) error {
	return w.Tell(&WatchRemote{Watchee: watchee, Watcher: watcher})
}

// Unwatch withdraws watcher's interest in the remote actor watchee
func (w *Watcher) Unwatch(watchee, watcher *address.Address) error {
	return w.Tell(&UnwatchRemote{Watchee: watchee, Watcher: watcher})
}

// Receive hands an inbound *Heartbeat or *HeartbeatResponse to the watcher
func (w *Watcher) Receive(message any) error {
	switch message.(type) {
	case *Heartbeat, *HeartbeatResponse:
		return w.Tell(message)
	default:
		return fmt.Errorf("unhandled inbound message %T", message)
	}
}

// Tell enqueues message in the watcher mailbox
func (w *Watcher) Tell(message any) error {
	box := w.mailbox.Load()
	if box == nil || !w.started.Load() {
		return errors.ErrWatcherNotStarted
	}
	return box.Enqueue(message)
}

// Stats returns a snapshot of the watcher state
func (w *Watcher) Stats(ctx context.Context) (*Stats, error) {
	request := &statsRequest{reply: make(chan *Stats, 1)}
	if err := w.Tell(request); err != nil {
		return nil, err
	}

	select {
	case stats := <-request.reply:
		return stats, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// UID returns the incarnation identifier of the local node
func (w *Watcher) UID() int64 {
	return w.uid
}

// Self returns the local node
func (w *Watcher) Self() address.Node {
	return w.self
}

// Events returns the stream on which AddressTerminated events are published
func (w *Watcher) Events() eventstream.Stream {
	return w.events
}

// Registry returns the failure detector registry keyed by node
func (w *Watcher) Registry() *failuredetector.Registry[address.Node] {
	return w.registry
}

func (w *Watcher) run(box *mailbox, done chan struct{}) {
	defer close(done)
	for {
		message, err := box.Dequeue()
		if err != nil {
			return
		}
		w.handle(message)
	}
}

func (w *Watcher) handle(message any) {
	switch msg := message.(type) {
	case *WatchRemote:
		w.addWatch(msg.Watchee, msg.Watcher)
	case *UnwatchRemote:
		w.removeWatch(msg.Watchee, msg.Watcher)
	case *HeartbeatTick:
		w.sendHeartbeat()
	case *ReapUnreachableTick:
		w.reapUnreachable()
	case *Heartbeat:
		w.receiveHeartbeat(msg)
	case *HeartbeatResponse:
		w.receiveHeartbeatResponse(msg)
	case *ExpectedFirstHeartbeat:
		w.triggerFirstHeartbeat(msg.From)
	case *statsRequest:
		msg.reply <- w.stats()
	default:
		w.logger.Warnf("remote watcher received unhandled message %T", message)
	}
}

func (w *Watcher) addWatch(watchee, watcher *address.Address) {
	if watchee == nil || watcher == nil {
		return
	}

	node := watchee.Node()
	if node == w.self {
		w.logger.Debugf("ignoring watch of local actor %s", watchee)
		return
	}

	key := watchee.String()
	watchers, ok := w.watching[key]
	if !ok {
		watchers = mapset.NewThreadUnsafeSet[string]()
		w.watching[key] = watchers
		w.watchees[key] = watchee
	}
	watchers.Add(watcher.String())

	w.watchNode(node, key)
}

func (w *Watcher) watchNode(node address.Node, watchee string) {
	watchees, ok := w.watcheeByNodes[node]
	if !ok {
		if w.unreachable.Contains(node) {
			// first watch of that node since it was deemed unreachable
			w.unreachable.Remove(node)
			w.registry.Remove(node)
		}
		watchees = mapset.NewThreadUnsafeSet[string]()
		w.watcheeByNodes[node] = watchees
		w.watchedNodes.Store(int64(len(w.watcheeByNodes)))
		w.logger.Debugf("watching node %s", node)
	}
	watchees.Add(watchee)

	if err := w.scheduler.StartTicks(w.config.heartbeatInterval, w.config.unreachableReaperInterval, w.Tell); err != nil {
		w.logger.Error(fmt.Errorf("failed to schedule the watcher ticks: %w", err))
	}
}

func (w *Watcher) removeWatch(watchee, watcher *address.Address) {
	if watchee == nil || watcher == nil {
		return
	}

	key := watchee.String()
	watchers, ok := w.watching[key]
	if !ok {
		return
	}

	watchers.Remove(watcher.String())
	if watchers.Cardinality() > 0 {
		return
	}

	delete(w.watching, key)
	delete(w.watchees, key)
	w.removeWatchee(watchee.Node(), key)
}

func (w *Watcher) removeWatchee(node address.Node, watchee string) {
	watchees, ok := w.watcheeByNodes[node]
	if !ok {
		return
	}

	watchees.Remove(watchee)
	if watchees.Cardinality() == 0 {
		w.unwatchNode(node)
	}
}

func (w *Watcher) unwatchNode(node address.Node) {
	delete(w.watcheeByNodes, node)
	delete(w.addressUIDs, node)
	w.registry.Remove(node)
	w.watchedNodes.Store(int64(len(w.watcheeByNodes)))
	w.logger.Debugf("unwatched node %s", node)

	if len(w.watcheeByNodes) == 0 {
		w.scheduler.StopTicks()
	}
}

func (w *Watcher) sendHeartbeat() {
	for node := range w.watcheeByNodes {
		if w.unreachable.Contains(node) {
			continue
		}

		if w.registry.IsMonitoring(node) {
			w.logger.Debugf("sending heartbeat to %s", node)
		} else {
			w.logger.Debugf("sending first heartbeat to %s", node)
			// give the node a chance to reply before assuming a first heartbeat
			if err := w.scheduler.ScheduleOnce(&ExpectedFirstHeartbeat{From: node}, w.config.heartbeatExpectedResponseAfter, w.Tell); err != nil {
				w.logger.Warnf("failed to schedule the expected first heartbeat of %s: %v", node, err)
			}
		}

		if err := w.transport.Send(w.ctx, node, &Heartbeat{From: w.self}); err != nil {
			w.logger.Debugf("failed to send heartbeat to %s: %v", node, err)
			continue
		}
		w.metric.HeartbeatSent(w.ctx, node.String())
	}
}

func (w *Watcher) receiveHeartbeat(heartbeat *Heartbeat) {
	response := &HeartbeatResponse{From: w.self, UID: w.uid}
	if err := w.transport.Send(w.ctx, heartbeat.From, response); err != nil {
		w.logger.Debugf("failed to answer heartbeat of %s: %v", heartbeat.From, err)
	}
}

func (w *Watcher) receiveHeartbeatResponse(response *HeartbeatResponse) {
	node := response.From
	if w.registry.IsMonitoring(node) {
		w.logger.Debugf("received heartbeat response from %s", node)
	} else {
		w.logger.Debugf("received first heartbeat response from %s", node)
	}

	if _, watched := w.watcheeByNodes[node]; !watched {
		return
	}

	if w.unreachable.Contains(node) {
		if uid, known := w.addressUIDs[node]; !known || uid == response.UID {
			// the quarantined incarnation stays unreachable
			return
		}
		w.logger.Infof("node %s restarted with uid=%d, watching it again", node, response.UID)
		w.unreachable.Remove(node)
		w.registry.Remove(node)
	}

	if uid, known := w.addressUIDs[node]; known && uid != response.UID {
		w.logger.Infof("node %s changed incarnation (uid %d -> %d)", node, uid, response.UID)
	}

	w.addressUIDs[node] = response.UID
	w.registry.Heartbeat(node)
	w.metric.HeartbeatReceived(w.ctx, node.String())
}

func (w *Watcher) triggerFirstHeartbeat(node address.Node) {
	if _, watched := w.watcheeByNodes[node]; watched && !w.registry.IsMonitoring(node) {
		w.logger.Debugf("trigger extra expected heartbeat from %s", node)
		w.registry.Heartbeat(node)
	}
}

func (w *Watcher) reapUnreachable() {
	for node := range w.watcheeByNodes {
		if w.unreachable.Contains(node) || w.registry.IsAvailable(node) {
			continue
		}

		w.logger.Warnf("detected unreachable node %s", node)

		var uid *int64
		if known, ok := w.addressUIDs[node]; ok {
			uid = &known
		}

		w.quarantine(node, uid)
		if w.events.Publish(AddressTerminatedTopic, &AddressTerminated{Node: node, UID: uid}) == 0 {
			w.logger.Debugf("no subscriber notified of the termination of %s", node)
		}
		w.metric.NodeTerminated(w.ctx, node.String())
		w.unreachable.Add(node)
	}
}

func (w *Watcher) quarantine(node address.Node, uid *int64) {
	w.metric.Quarantined(w.ctx, node.String())
	if err := w.transport.Quarantine(w.ctx, node, uid, quarantineReason); err != nil {
		w.logger.Error(fmt.Errorf("failed to quarantine %s: %w", node, err))
	}
}

func (w *Watcher) stats() *Stats {
	stats := &Stats{
		WatchingNodes: make([]address.Node, 0, len(w.watcheeByNodes)),
		Unreachable:   w.unreachable.ToSlice(),
		Watchees:      make([]string, 0, len(w.watching)),
	}

	for watchee, watchers := range w.watching {
		stats.Watching += watchers.Cardinality()
		stats.Watchees = append(stats.Watchees, watchee)
	}

	for node := range w.watcheeByNodes {
		stats.WatchingNodes = append(stats.WatchingNodes, node)
	}

	slices.Sort(stats.Watchees)
	sortNodes(stats.WatchingNodes)
	sortNodes(stats.Unreachable)
	return stats
}

func (w *Watcher) resetState() {
	w.watching = make(map[string]mapset.Set[string])
	w.watchees = make(map[string]*address.Address)
	w.watcheeByNodes = make(map[address.Node]mapset.Set[string])
	w.addressUIDs = make(map[address.Node]int64)
	w.unreachable = mapset.NewThreadUnsafeSet[address.Node]()
}

func sortNodes(nodes []address.Node) {
	slices.SortFunc(nodes, func(a, b address.Node) int {
		switch {
		case a.String() < b.String():
			return -1
		case a.String() > b.String():
			return 1
		default:
			return 0
		}
	})
}

// newUID derives a random incarnation identifier
func newUID() int64 {
	id := uuid.New()
	return int64(binary.BigEndian.Uint64(id[:8]))
}
