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
	"context"

	"github.com/tochemey/remotewatch/address"
)

// Transport carries watcher messages between nodes.
//
// Send is fire and forget: the watcher tolerates lost messages. Inbound
// *Heartbeat and *HeartbeatResponse messages must be handed to Watcher.Receive.
type Transport interface {
	// Send sends message to the watcher of node to
	Send(ctx context.Context, to address.Node, message any) error
	// Quarantine refuses further communication with the given incarnation of node.
	// uid is nil when the incarnation is unknown. Calls are idempotent.
	Quarantine(ctx context.Context, node address.Node, uid *int64, reason string) error
}
