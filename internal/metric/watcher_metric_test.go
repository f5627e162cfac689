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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestNewWatcherMetric(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	watcherMetric, err := NewWatcherMetric(meter, func() int64 { return 3 })
	require.NoError(t, err)
	require.NotNil(t, watcherMetric)
	assert.NotNil(t, watcherMetric.WatchedNodes())

	ctx := context.Background()
	watcherMetric.HeartbeatSent(ctx, "sys@127.0.0.1:2552")
	watcherMetric.HeartbeatReceived(ctx, "sys@127.0.0.1:2552")
	watcherMetric.NodeTerminated(ctx, "sys@127.0.0.1:2552")
	watcherMetric.Quarantined(ctx, "sys@127.0.0.1:2552")

	assert.NoError(t, watcherMetric.Close())
}

func TestNewWatcherMetricWithoutGauge(t *testing.T) {
	watcherMetric, err := NewWatcherMetric(noop.NewMeterProvider().Meter("test"), nil)
	require.NoError(t, err)
	assert.NoError(t, watcherMetric.Close())
}
