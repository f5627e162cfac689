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
	"github.com/tochemey/remotewatch/address"
)

// AddressTerminatedTopic is the event stream topic on which *AddressTerminated
// events are published
const AddressTerminatedTopic = "watcher.address-terminated"

// WatchRemote registers watcher's interest in the remote actor watchee
type WatchRemote struct {
	Watchee *address.Address
	Watcher *address.Address
}

// UnwatchRemote withdraws watcher's interest in the remote actor watchee
type UnwatchRemote struct {
	Watchee *address.Address
	Watcher *address.Address
}

// Heartbeat is sent periodically to every watched node
type Heartbeat struct {
	From address.Node
}

// HeartbeatResponse is the reply to a Heartbeat. UID identifies the
// incarnation of the replying node.
type HeartbeatResponse struct {
	From address.Node
	UID  int64
}

// HeartbeatTick triggers a round of heartbeats
type HeartbeatTick struct{}

// ReapUnreachableTick triggers the detection of unreachable nodes
type ReapUnreachableTick struct{}

// ExpectedFirstHeartbeat is scheduled after the first heartbeat sent to a node.
// When the node still did not answer, a heartbeat is recorded on its behalf so
// that a node that never answers is eventually detected.
type ExpectedFirstHeartbeat struct {
	From address.Node
}

// AddressTerminated is published once per unreachability episode of a node
type AddressTerminated struct {
	Node address.Node
	// UID is the incarnation quarantined, nil when it was never learnt
	UID *int64
}

// Stats describes what the watcher is currently doing
type Stats struct {
	// Watching is the number of (watchee, watcher) bindings
	Watching int
	// WatchingNodes are the nodes receiving heartbeats
	WatchingNodes []address.Node
	// Unreachable are the watched nodes deemed unreachable
	Unreachable []address.Node
	// Watchees are the canonical addresses of the watched actors
	Watchees []string
}

// statsRequest asks the consumer for a snapshot of its state
type statsRequest struct {
	reply chan *Stats
}
