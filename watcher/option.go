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
	"go.opentelemetry.io/otel/metric"

	"github.com/tochemey/remotewatch/eventstream"
	"github.com/tochemey/remotewatch/failuredetector"
	"github.com/tochemey/remotewatch/log"
)

// Option is the interface that applies a Watcher option.
type Option interface {
	// Apply sets the Option value of a Watcher.
	Apply(*Watcher)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Watcher)

func (f OptionFunc) Apply(w *Watcher) {
	f(w)
}

// WithConfig sets the watcher config
func WithConfig(config *Config) Option {
	return OptionFunc(func(w *Watcher) {
		if config != nil {
			w.config = config
		}
	})
}

// WithLogger sets the watcher logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	})
}

// WithClock sets the clock driving the failure detectors
func WithClock(clock failuredetector.Clock) Option {
	return OptionFunc(func(w *Watcher) {
		if clock != nil {
			w.clock = clock
		}
	})
}

// WithDetectorFactory replaces the phi accrual failure detector used for
// every watched node
func WithDetectorFactory(factory failuredetector.Factory) Option {
	return OptionFunc(func(w *Watcher) {
		w.factory = factory
	})
}

// WithEventStream sets the stream on which AddressTerminated events are published
func WithEventStream(stream eventstream.Stream) Option {
	return OptionFunc(func(w *Watcher) {
		if stream != nil {
			w.events = stream
		}
	})
}

// WithMeterProvider sets the meter provider used for the watcher instruments
func WithMeterProvider(provider metric.MeterProvider) Option {
	return OptionFunc(func(w *Watcher) {
		w.meterProvider = provider
	})
}

// WithUID sets the incarnation identifier reported in heartbeat responses.
// A random one is generated otherwise.
func WithUID(uid int64) Option {
	return OptionFunc(func(w *Watcher) {
		w.uid = uid
	})
}
