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

package nats

import (
	"context"
	"fmt"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travisjeffery/go-dynaport"

	"github.com/tochemey/remotewatch/address"
	"github.com/tochemey/remotewatch/errors"
	"github.com/tochemey/remotewatch/eventstream"
	"github.com/tochemey/remotewatch/failuredetector"
	"github.com/tochemey/remotewatch/log"
	"github.com/tochemey/remotewatch/watcher"
)

func startNatsServer(t *testing.T) *natsserver.Server {
	t.Helper()
	serv, err := natsserver.NewServer(&natsserver.Options{
		Host: "127.0.0.1",
		Port: -1,
	})
	require.NoError(t, err)

	ready := make(chan bool)
	go func() {
		ready <- true
		serv.Start()
	}()
	<-ready

	if !serv.ReadyForConnections(2 * time.Second) {
		t.Fatalf("nats-io server failed to start")
	}

	t.Cleanup(serv.Shutdown)
	return serv
}

func newNode(t *testing.T) address.Node {
	t.Helper()
	ports := dynaport.Get(1)
	return address.NewNode("sys", "127.0.0.1", ports[0])
}

func newTransport(t *testing.T, serverAddr string, self address.Node) *Transport {
	t.Helper()
	transport, err := NewTransport(&Config{
		URL:           fmt.Sprintf("nats://%s", serverAddr),
		SubjectPrefix: "test.remotewatch",
	}, self, WithLogger(log.DiscardLogger))
	require.NoError(t, err)
	t.Cleanup(func() { _ = transport.Close() })
	return transport
}

func TestTransport(t *testing.T) {
	t.Run("With invalid config", func(t *testing.T) {
		_, err := NewTransport(&Config{}, address.NewNode("sys", "127.0.0.1", 1))
		assert.Error(t, err)

		_, err = NewTransport(nil, address.NewNode("sys", "127.0.0.1", 1))
		assert.Error(t, err)
	})
	t.Run("Send before Connect", func(t *testing.T) {
		srv := startNatsServer(t)
		transport := newTransport(t, srv.Addr().String(), newNode(t))
		err := transport.Send(context.Background(), newNode(t), &watcher.Heartbeat{})
		assert.ErrorIs(t, err, errors.ErrTransportClosed)
	})
	t.Run("Delivers frames between nodes", func(t *testing.T) {
		srv := startNatsServer(t)
		ctx := context.Background()

		nodeA, nodeB := newNode(t), newNode(t)
		transportA := newTransport(t, srv.Addr().String(), nodeA)
		transportB := newTransport(t, srv.Addr().String(), nodeB)

		received := make(chan any, 1)
		require.NoError(t, transportA.Connect(ctx, func(any) error { return nil }))
		require.NoError(t, transportB.Connect(ctx, func(message any) error {
			received <- message
			return nil
		}))

		require.NoError(t, transportA.Send(ctx, nodeB, &watcher.Heartbeat{From: nodeA}))
		select {
		case message := <-received:
			assert.Equal(t, &watcher.Heartbeat{From: nodeA}, message)
		case <-time.After(5 * time.Second):
			t.Fatal("heartbeat not delivered")
		}

		require.NoError(t, transportA.Close())
		require.NoError(t, transportA.Close())
		assert.ErrorIs(t, transportA.Send(ctx, nodeB, &watcher.Heartbeat{From: nodeA}), errors.ErrTransportClosed)
	})
	t.Run("Drops responses of quarantined incarnations", func(t *testing.T) {
		srv := startNatsServer(t)
		ctx := context.Background()

		nodeA, nodeB := newNode(t), newNode(t)
		transportA := newTransport(t, srv.Addr().String(), nodeA)
		transportB := newTransport(t, srv.Addr().String(), nodeB)

		received := make(chan any, 4)
		require.NoError(t, transportA.Connect(ctx, func(message any) error {
			received <- message
			return nil
		}))
		require.NoError(t, transportB.Connect(ctx, func(any) error { return nil }))

		uid := int64(7)
		require.NoError(t, transportA.Quarantine(ctx, nodeB, &uid, "test"))
		require.NoError(t, transportA.Quarantine(ctx, nodeB, nil, "test"))
		assert.True(t, transportA.IsQuarantined(nodeB, 7))
		assert.False(t, transportA.IsQuarantined(nodeB, 8))

		require.NoError(t, transportB.Send(ctx, nodeA, &watcher.HeartbeatResponse{From: nodeB, UID: 7}))
		require.NoError(t, transportB.Send(ctx, nodeA, &watcher.HeartbeatResponse{From: nodeB, UID: 8}))

		select {
		case message := <-received:
			assert.Equal(t, &watcher.HeartbeatResponse{From: nodeB, UID: 8}, message)
		case <-time.After(5 * time.Second):
			t.Fatal("heartbeat response not delivered")
		}
	})
}

func TestRemoteWatchOverNats(t *testing.T) {
	srv := startNatsServer(t)
	ctx := context.Background()

	detector := failuredetector.NewPhiAccrualConfig(
		failuredetector.WithThreshold(8),
		failuredetector.WithMinStdDeviation(10*time.Millisecond),
		failuredetector.WithAcceptableHeartbeatPause(200*time.Millisecond),
		failuredetector.WithFirstHeartbeatEstimate(50*time.Millisecond),
	)
	config := watcher.NewConfig(
		watcher.WithHeartbeatInterval(50*time.Millisecond),
		watcher.WithUnreachableReaperInterval(50*time.Millisecond),
		watcher.WithHeartbeatExpectedResponseAfter(100*time.Millisecond),
		watcher.WithFailureDetector(detector),
	)

	newWatcher := func(node address.Node, events eventstream.Stream) (*watcher.Watcher, *Transport) {
		transport := newTransport(t, srv.Addr().String(), node)
		w, err := watcher.New(node, transport,
			watcher.WithConfig(config),
			watcher.WithLogger(log.DiscardLogger),
			watcher.WithEventStream(events),
		)
		require.NoError(t, err)
		require.NoError(t, transport.Connect(ctx, w.Receive))
		require.NoError(t, w.Start(ctx))
		return w, transport
	}

	events := eventstream.New()
	subscriber := events.AddSubscriber()
	events.Subscribe(subscriber, watcher.AddressTerminatedTopic)

	nodeA, nodeB := newNode(t), newNode(t)
	watcherA, transportA := newWatcher(nodeA, events)
	watcherB, transportB := newWatcher(nodeB, eventstream.New())
	t.Cleanup(func() {
		_ = watcherA.Stop(ctx)
		_ = transportA.Close()
	})

	require.NoError(t, watcherA.Watch(address.NewOnNode("remote", nodeB), address.NewOnNode("local", nodeA)))

	require.Eventually(t, func() bool {
		return watcherA.Registry().IsMonitoring(nodeB)
	}, 5*time.Second, 20*time.Millisecond)

	_, err := subscriber.Next(300 * time.Millisecond)
	require.ErrorIs(t, err, eventstream.ErrNoMessage)

	// node B goes away
	require.NoError(t, watcherB.Stop(ctx))
	require.NoError(t, transportB.Close())

	message, err := subscriber.Next(10 * time.Second)
	require.NoError(t, err)
	terminated, ok := message.Payload().(*watcher.AddressTerminated)
	require.True(t, ok)
	assert.Equal(t, nodeB, terminated.Node)
	require.NotNil(t, terminated.UID)
	assert.Equal(t, watcherB.UID(), *terminated.UID)
	assert.True(t, transportA.IsQuarantined(nodeB, watcherB.UID()))
}
