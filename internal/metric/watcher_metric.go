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

package metric

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// nodeKey is the attribute carrying the remote node
const nodeKey = "watcher.node"

// WatcherMetric defines the watcher instrumentation
type WatcherMetric struct {
	heartbeatsSent     metric.Int64Counter
	heartbeatsReceived metric.Int64Counter
	nodesTerminated    metric.Int64Counter
	quarantines        metric.Int64Counter
	watchedNodes       metric.Int64ObservableGauge
	registration       metric.Registration
}

// NewWatcherMetric creates the watcher instruments.
// watchedNodes is observed on every collection to report the number of watched nodes.
func NewWatcherMetric(meter metric.Meter, watchedNodes func() int64) (*WatcherMetric, error) {
	watcherMetric := new(WatcherMetric)
	var err error

	if watcherMetric.heartbeatsSent, err = meter.Int64Counter(
		"watcher.heartbeats.sent",
		metric.WithDescription("Total number of heartbeats sent to watched nodes"),
	); err != nil {
		return nil, fmt.Errorf("failed to create heartbeatsSent instrument, %w", err)
	}

	if watcherMetric.heartbeatsReceived, err = meter.Int64Counter(
		"watcher.heartbeats.received",
		metric.WithDescription("Total number of heartbeat responses received from watched nodes"),
	); err != nil {
		return nil, fmt.Errorf("failed to create heartbeatsReceived instrument, %w", err)
	}

	if watcherMetric.nodesTerminated, err = meter.Int64Counter(
		"watcher.nodes.terminated",
		metric.WithDescription("Total number of watched nodes deemed unreachable"),
	); err != nil {
		return nil, fmt.Errorf("failed to create nodesTerminated instrument, %w", err)
	}

	if watcherMetric.quarantines, err = meter.Int64Counter(
		"watcher.quarantines",
		metric.WithDescription("Total number of quarantine requests issued"),
	); err != nil {
		return nil, fmt.Errorf("failed to create quarantines instrument, %w", err)
	}

	if watcherMetric.watchedNodes, err = meter.Int64ObservableGauge(
		"watcher.nodes.watched",
		metric.WithDescription("Number of nodes currently watched"),
	); err != nil {
		return nil, fmt.Errorf("failed to create watchedNodes instrument, %w", err)
	}

	if watchedNodes != nil {
		if watcherMetric.registration, err = meter.RegisterCallback(func(_ context.Context, observer metric.Observer) error {
			observer.ObserveInt64(watcherMetric.watchedNodes, watchedNodes())
			return nil
		}, watcherMetric.watchedNodes); err != nil {
			return nil, fmt.Errorf("failed to register watchedNodes callback, %w", err)
		}
	}

	return watcherMetric, nil
}

// HeartbeatSent records a heartbeat sent to node
func (x *WatcherMetric) HeartbeatSent(ctx context.Context, node string) {
	x.heartbeatsSent.Add(ctx, 1, metric.WithAttributes(attribute.String(nodeKey, node)))
}

// HeartbeatReceived records a heartbeat response received from node
func (x *WatcherMetric) HeartbeatReceived(ctx context.Context, node string) {
	x.heartbeatsReceived.Add(ctx, 1, metric.WithAttributes(attribute.String(nodeKey, node)))
}

// NodeTerminated records node deemed unreachable
func (x *WatcherMetric) NodeTerminated(ctx context.Context, node string) {
	x.nodesTerminated.Add(ctx, 1, metric.WithAttributes(attribute.String(nodeKey, node)))
}

// Quarantined records a quarantine request for node
func (x *WatcherMetric) Quarantined(ctx context.Context, node string) {
	x.quarantines.Add(ctx, 1, metric.WithAttributes(attribute.String(nodeKey, node)))
}

// WatchedNodes returns the watched nodes gauge
func (x *WatcherMetric) WatchedNodes() metric.Int64ObservableGauge {
	return x.watchedNodes
}

// Close unregisters the observable callback
func (x *WatcherMetric) Close() error {
	if x.registration == nil {
		return nil
	}
	return x.registration.Unregister()
}
