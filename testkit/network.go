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

// Package testkit provides an in-memory network to exercise remote watchers
// without sockets, together with interceptors injecting delays and losses.
package testkit

import (
	"context"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/tochemey/remotewatch/address"
	"github.com/tochemey/remotewatch/errors"
	"github.com/tochemey/remotewatch/log"
	"github.com/tochemey/remotewatch/watcher"
)

// Handler receives the messages delivered to a node, typically Watcher.Receive
type Handler func(message any) error

// Quarantine records a quarantine request issued on the network
type Quarantine struct {
	// By is the node that issued the request
	By address.Node
	// Node is the quarantined node
	Node address.Node
	// UID is the quarantined incarnation, nil when unknown
	UID *int64
	// Reason is the reason given by the watcher
	Reason string
}

type quarantineKey struct {
	by   address.Node
	node address.Node
	uid  int64
}

// Network is an in-memory, fire and forget network.
// Every message is delivered asynchronously after going through the
// interceptor registered for its destination.
type Network struct {
	mu           sync.RWMutex
	handlers     map[address.Node]Handler
	interceptors map[address.Node]*Interceptor
	isolated     mapset.Set[address.Node]
	quarantined  mapset.Set[quarantineKey]
	quarantines  []Quarantine

	delivered *atomic.Int64
	dropped   *atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
	closed bool
	logger log.Logger
}

// NewNetwork creates a Network
func NewNetwork(opts ...Option) *Network {
	ctx, cancel := context.WithCancel(context.Background())
	network := &Network{
		handlers:     make(map[address.Node]Handler),
		interceptors: make(map[address.Node]*Interceptor),
		isolated:     mapset.NewSet[address.Node](),
		quarantined:  mapset.NewSet[quarantineKey](),
		delivered:    atomic.NewInt64(0),
		dropped:      atomic.NewInt64(0),
		ctx:          ctx,
		cancel:       cancel,
		group:        new(errgroup.Group),
		logger:       log.DiscardLogger,
	}

	for _, opt := range opts {
		opt.Apply(network)
	}
	return network
}

// Register attaches handler to node. It replaces any previous handler.
func (n *Network) Register(node address.Node, handler Handler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers[node] = handler
}

// Unregister detaches node. Messages sent to it are dropped.
func (n *Network) Unregister(node address.Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.handlers, node)
}

// Intercept sets the interceptor applied to the messages sent to node.
// A nil interceptor delivers every message.
func (n *Network) Intercept(node address.Node, interceptor *Interceptor) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if interceptor == nil {
		delete(n.interceptors, node)
		return
	}
	n.interceptors[node] = interceptor
}

// Isolate drops every message sent to or from node
func (n *Network) Isolate(node address.Node) {
	n.isolated.Add(node)
}

// Heal reverts Isolate
func (n *Network) Heal(node address.Node) {
	n.isolated.Remove(node)
}

// Transport returns the watcher.Transport of node
func (n *Network) Transport(self address.Node) watcher.Transport {
	return &endpoint{network: n, self: self}
}

// Quarantines returns the quarantine requests issued so far
func (n *Network) Quarantines() []Quarantine {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]Quarantine(nil), n.quarantines...)
}

// Delivered returns the number of messages handed to a handler
func (n *Network) Delivered() int64 {
	return n.delivered.Load()
}

// Dropped returns the number of messages lost
func (n *Network) Dropped() int64 {
	return n.dropped.Load()
}

// Close stops the network and waits for the in-flight messages
func (n *Network) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	n.mu.Unlock()

	n.cancel()
	return n.group.Wait()
}

func (n *Network) send(from, to address.Node, message any) error {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		return errors.ErrTransportClosed
	}

	interceptor := n.interceptors[to]
	n.group.Go(func() error {
		n.deliver(interceptor, from, to, message)
		return nil
	})
	return nil
}

func (n *Network) deliver(interceptor *Interceptor, from, to address.Node, message any) {
	deliver, err := interceptor.Intercept(n.ctx, to, message)
	if err != nil || !deliver {
		n.drop(from, to, message, err)
		return
	}

	if n.isolated.Contains(from) || n.isolated.Contains(to) {
		n.drop(from, to, message, ErrDropped)
		return
	}

	if response, ok := message.(*watcher.HeartbeatResponse); ok &&
		n.quarantined.Contains(quarantineKey{by: to, node: response.From, uid: response.UID}) {
		n.drop(from, to, message, nil)
		return
	}

	n.mu.RLock()
	handler, ok := n.handlers[to]
	n.mu.RUnlock()
	if !ok {
		n.drop(from, to, message, nil)
		return
	}

	if err := handler(message); err != nil {
		n.drop(from, to, message, err)
		return
	}
	n.delivered.Inc()
}

func (n *Network) drop(from, to address.Node, message any, err error) {
	n.dropped.Inc()
	n.logger.Debugf("dropped %T from %s to %s: %v", message, from, to, err)
}

func (n *Network) quarantine(by, node address.Node, uid *int64, reason string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.quarantines = append(n.quarantines, Quarantine{By: by, Node: node, UID: uid, Reason: reason})
	if uid != nil {
		n.quarantined.Add(quarantineKey{by: by, node: node, uid: *uid})
	}
}

// endpoint is the watcher.Transport of a node attached to a Network
type endpoint struct {
	network *Network
	self    address.Node
}

var _ watcher.Transport = (*endpoint)(nil)

func (e *endpoint) Send(ctx context.Context, to address.Node, message any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.network.send(e.self, to, message)
}

func (e *endpoint) Quarantine(_ context.Context, node address.Node, uid *int64, reason string) error {
	e.network.quarantine(e.self, node, uid, reason)
	return nil
}
