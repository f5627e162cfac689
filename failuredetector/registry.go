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

package failuredetector

import (
	"fmt"

	csmap "github.com/mhmtszr/concurrent-swiss-map"
	"github.com/zeebo/xxh3"

	"github.com/tochemey/remotewatch/log"
)

const defaultShardCount = 32

// Registry keeps one Detector per monitored resource key.
//
// Detectors are created lazily on the first heartbeat of a key. The registry is
// sharded by key hash so operations on different keys do not contend, and each
// detector serializes its own state. Registry is safe for concurrent use.
type Registry[K comparable] struct {
	factory   Factory
	detectors *csmap.CsMap[K, Detector]
	logger    log.Logger
}

type registryOptions[K comparable] struct {
	shardCount uint64
	size       uint64
	hasher     func(K) uint64
	logger     log.Logger
}

// RegistryOption configures a Registry
type RegistryOption[K comparable] func(*registryOptions[K])

// WithShardCount sets the number of shards of the registry
func WithShardCount[K comparable](count uint64) RegistryOption[K] {
	return func(o *registryOptions[K]) {
		if count > 0 {
			o.shardCount = count
		}
	}
}

// WithInitialSize sets the expected number of monitored resources
func WithInitialSize[K comparable](size uint64) RegistryOption[K] {
	return func(o *registryOptions[K]) {
		o.size = size
	}
}

// WithKeyHasher overrides the function used to pick the shard of a key
func WithKeyHasher[K comparable](hasher func(K) uint64) RegistryOption[K] {
	return func(o *registryOptions[K]) {
		if hasher != nil {
			o.hasher = hasher
		}
	}
}

// WithRegistryLogger sets the registry logger
func WithRegistryLogger[K comparable](logger log.Logger) RegistryOption[K] {
	return func(o *registryOptions[K]) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewRegistry creates a Registry building its detectors with factory
func NewRegistry[K comparable](factory Factory, opts ...RegistryOption[K]) *Registry[K] {
	options := &registryOptions[K]{
		shardCount: defaultShardCount,
		hasher:     hashKey[K],
		logger:     log.DefaultLogger,
	}

	for _, opt := range opts {
		opt(options)
	}

	mapOpts := []func(*csmap.CsMap[K, Detector]){
		csmap.WithShardCount[K, Detector](options.shardCount),
		csmap.WithCustomHasher[K, Detector](options.hasher),
	}

	if options.size > 0 {
		mapOpts = append(mapOpts, csmap.WithSize[K, Detector](options.size))
	}

	return &Registry[K]{
		factory:   factory,
		detectors: csmap.Create[K, Detector](mapOpts...),
		logger:    options.logger,
	}
}

// Heartbeat records a heartbeat for key, creating its detector when needed
func (r *Registry[K]) Heartbeat(key K) {
	r.getOrCreate(key).HeartBeat()
}

// IsAvailable reports whether the resource is considered alive.
// Unknown resources are available.
func (r *Registry[K]) IsAvailable(key K) bool {
	if detector, ok := r.detectors.Load(key); ok {
		return detector.IsAvailable()
	}
	return true
}

// IsMonitoring reports whether a heartbeat was recorded for key
func (r *Registry[K]) IsMonitoring(key K) bool {
	if detector, ok := r.detectors.Load(key); ok {
		return detector.IsMonitoring()
	}
	return false
}

// Remove discards the detector of key. The next heartbeat starts a fresh history.
func (r *Registry[K]) Remove(key K) {
	if r.detectors.Delete(key) {
		r.logger.Debugf("removed failure detector for %v", key)
	}
}

// Reset discards all detectors
func (r *Registry[K]) Reset() {
	r.detectors.Clear()
	r.logger.Debug("failure detector registry reset")
}

// Len returns the number of detectors held
func (r *Registry[K]) Len() int {
	return r.detectors.Count()
}

func (r *Registry[K]) getOrCreate(key K) Detector {
	for {
		if detector, ok := r.detectors.Load(key); ok {
			return detector
		}

		// SetIfAbsent keeps the first stored detector when callers race
		r.detectors.SetIfAbsent(key, r.factory())
		if detector, ok := r.detectors.Load(key); ok {
			return detector
		}
	}
}

func hashKey[K comparable](key K) uint64 {
	switch k := any(key).(type) {
	case string:
		return xxh3.HashString(k)
	case fmt.Stringer:
		return xxh3.HashString(k.String())
	default:
		return xxh3.HashString(fmt.Sprint(k))
	}
}
