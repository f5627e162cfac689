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

// Package nats provides a watcher Transport carrying heartbeats over NATS.
//
// Every node subscribes to its own subject, derived from the subject prefix
// and the node address, and publishes CBOR encoded frames to the subject of
// the node it talks to.
package nats

import (
	"context"
	"fmt"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/flowchartsman/retry"
	"github.com/nats-io/nats.go"
	"github.com/zeebo/xxh3"
	"go.uber.org/atomic"

	"github.com/tochemey/remotewatch/address"
	"github.com/tochemey/remotewatch/errors"
	"github.com/tochemey/remotewatch/log"
	"github.com/tochemey/remotewatch/watcher"
)

// Handler receives the decoded inbound messages, typically Watcher.Receive
type Handler func(message any) error

// incarnation identifies a given run of a node
type incarnation struct {
	node address.Node
	uid  int64
}

// Transport is a watcher.Transport backed by NATS core publish/subscribe
type Transport struct {
	mu     sync.Mutex
	config *Config
	self   address.Node
	logger log.Logger
	codec  *codec

	conn         *nats.Conn
	subscription *nats.Subscription
	connected    *atomic.Bool

	quarantined mapset.Set[incarnation]
}

// enforce compilation error
var _ watcher.Transport = (*Transport)(nil)

// NewTransport creates a Transport for the node self
func NewTransport(config *Config, self address.Node, opts ...Option) (*Transport, error) {
	if config == nil {
		return nil, fmt.Errorf("nats transport: config is nil")
	}

	config.Sanitize()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if err := self.Validate(); err != nil {
		return nil, err
	}

	transport := &Transport{
		config:      config,
		self:        self,
		logger:      log.DefaultLogger,
		codec:       newCodec(),
		connected:   atomic.NewBool(false),
		quarantined: mapset.NewSet[incarnation](),
	}

	for _, opt := range opts {
		opt.Apply(transport)
	}

	return transport, nil
}

// Connect connects to the NATS server and hands every inbound message to handler
func (t *Transport) Connect(ctx context.Context, handler Handler) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.connected.Load() {
		return nil
	}

	var conn *nats.Conn
	retrier := retry.NewRetrier(t.config.MaxRetries, 100*time.Millisecond, t.config.ConnectTimeout)
	err := retrier.RunContext(ctx, func(context.Context) error {
		var err error
		conn, err = nats.Connect(t.config.URL,
			nats.Name(t.self.String()),
			nats.Timeout(t.config.ConnectTimeout),
			nats.MaxReconnects(-1),
			nats.ReconnectWait(2*time.Second),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("nats transport: connect: %w", err)
	}

	subscription, err := conn.Subscribe(t.subject(t.self), func(msg *nats.Msg) {
		t.handle(msg, handler)
	})
	if err != nil {
		conn.Close()
		return fmt.Errorf("nats transport: subscribe: %w", err)
	}

	if err := conn.Flush(); err != nil {
		conn.Close()
		return fmt.Errorf("nats transport: flush: %w", err)
	}

	t.conn = conn
	t.subscription = subscription
	t.connected.Store(true)
	t.logger.Infof("nats transport of %s listening on %s", t.self, subscription.Subject)
	return nil
}

// Send publishes message to the watcher of node to
func (t *Transport) Send(ctx context.Context, to address.Node, message any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()

	if conn == nil {
		return errors.ErrTransportClosed
	}

	data, err := t.codec.Encode(message)
	if err != nil {
		return err
	}

	return conn.Publish(t.subject(to), data)
}

// Quarantine drops every further heartbeat response of the given incarnation of node.
// Quarantining an unknown incarnation is only logged.
func (t *Transport) Quarantine(_ context.Context, node address.Node, uid *int64, reason string) error {
	if uid == nil {
		t.logger.Warnf("cannot quarantine %s with unknown uid: %s", node, reason)
		return nil
	}

	if t.quarantined.Add(incarnation{node: node, uid: *uid}) {
		t.logger.Warnf("quarantined %s (uid=%d): %s", node, *uid, reason)
	}
	return nil
}

// IsQuarantined reports whether the given incarnation of node is quarantined
func (t *Transport) IsQuarantined(node address.Node, uid int64) bool {
	return t.quarantined.Contains(incarnation{node: node, uid: uid})
}

// Close unsubscribes and closes the connection. Close is idempotent.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.connected.Load() {
		return nil
	}

	t.connected.Store(false)
	var err error
	if t.subscription != nil && t.subscription.IsValid() {
		err = t.subscription.Unsubscribe()
	}

	t.conn.Close()
	t.conn = nil
	t.subscription = nil
	return err
}

func (t *Transport) handle(msg *nats.Msg, handler Handler) {
	message, err := t.codec.Decode(msg.Data)
	if err != nil {
		t.logger.Warnf("nats transport dropped a frame: %v", err)
		return
	}

	if response, ok := message.(*watcher.HeartbeatResponse); ok && t.IsQuarantined(response.From, response.UID) {
		t.logger.Debugf("dropped heartbeat response of quarantined %s (uid=%d)", response.From, response.UID)
		return
	}

	if err := handler(message); err != nil {
		t.logger.Debugf("nats transport failed to deliver %T: %v", message, err)
	}
}

func (t *Transport) subject(node address.Node) string {
	return fmt.Sprintf("%s.%016x", t.config.SubjectPrefix, xxh3.HashString(node.String()))
}
