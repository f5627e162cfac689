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
	"time"

	"github.com/tochemey/remotewatch/errors"
	"github.com/tochemey/remotewatch/failuredetector"
	"github.com/tochemey/remotewatch/internal/validation"
)

const (
	// DefaultHeartbeatInterval is the default interval between two heartbeat rounds
	DefaultHeartbeatInterval = time.Second
	// DefaultUnreachableReaperInterval is the default interval between two unreachability checks
	DefaultUnreachableReaperInterval = time.Second
	// DefaultHeartbeatExpectedResponseAfter is the default delay after which a first heartbeat is assumed
	DefaultHeartbeatExpectedResponseAfter = time.Second
	// DefaultMailboxSize is the default capacity of the watcher mailbox
	DefaultMailboxSize = 1024
)

// Config defines the watcher settings
type Config struct {
	heartbeatInterval              time.Duration
	unreachableReaperInterval      time.Duration
	heartbeatExpectedResponseAfter time.Duration
	mailboxSize                    int
	failureDetector                *failuredetector.PhiAccrualConfig
}

var _ validation.Validator = (*Config)(nil)

// ConfigOption is the interface that applies a configuration option.
type ConfigOption interface {
	// Apply sets the option value of a config.
	Apply(*Config)
}

// enforce compilation error
var _ ConfigOption = ConfigOptionFunc(nil)

// ConfigOptionFunc implements the ConfigOption interface.
type ConfigOptionFunc func(config *Config)

func (f ConfigOptionFunc) Apply(c *Config) {
	f(c)
}

// NewConfig returns a Config built from the defaults and the given options
func NewConfig(opts ...ConfigOption) *Config {
	config := DefaultConfig()
	for _, opt := range opts {
		opt.Apply(config)
	}
	return config
}

// DefaultConfig returns the default watcher config
func DefaultConfig() *Config {
	return &Config{
		heartbeatInterval:              DefaultHeartbeatInterval,
		unreachableReaperInterval:      DefaultUnreachableReaperInterval,
		heartbeatExpectedResponseAfter: DefaultHeartbeatExpectedResponseAfter,
		mailboxSize:                    DefaultMailboxSize,
		failureDetector:                failuredetector.DefaultPhiAccrualConfig(),
	}
}

// WithHeartbeatInterval sets the interval between two heartbeat rounds
func WithHeartbeatInterval(interval time.Duration) ConfigOption {
	return ConfigOptionFunc(func(config *Config) {
		config.heartbeatInterval = interval
	})
}

// WithUnreachableReaperInterval sets the interval between two unreachability checks
func WithUnreachableReaperInterval(interval time.Duration) ConfigOption {
	return ConfigOptionFunc(func(config *Config) {
		config.unreachableReaperInterval = interval
	})
}

// WithHeartbeatExpectedResponseAfter sets how long to wait for the first
// heartbeat response of a node before recording one on its behalf
func WithHeartbeatExpectedResponseAfter(after time.Duration) ConfigOption {
	return ConfigOptionFunc(func(config *Config) {
		config.heartbeatExpectedResponseAfter = after
	})
}

// WithMailboxSize sets the capacity of the watcher mailbox
func WithMailboxSize(size int) ConfigOption {
	return ConfigOptionFunc(func(config *Config) {
		config.mailboxSize = size
	})
}

// WithFailureDetector sets the phi accrual settings used for every watched node
func WithFailureDetector(detector *failuredetector.PhiAccrualConfig) ConfigOption {
	return ConfigOptionFunc(func(config *Config) {
		config.failureDetector = detector
	})
}

// HeartbeatInterval returns the interval between two heartbeat rounds
func (x *Config) HeartbeatInterval() time.Duration {
	return x.heartbeatInterval
}

// UnreachableReaperInterval returns the interval between two unreachability checks
func (x *Config) UnreachableReaperInterval() time.Duration {
	return x.unreachableReaperInterval
}

// HeartbeatExpectedResponseAfter returns the delay before a first heartbeat is assumed
func (x *Config) HeartbeatExpectedResponseAfter() time.Duration {
	return x.heartbeatExpectedResponseAfter
}

// MailboxSize returns the capacity of the watcher mailbox
func (x *Config) MailboxSize() int {
	return x.mailboxSize
}

// FailureDetector returns the phi accrual settings
func (x *Config) FailureDetector() *failuredetector.PhiAccrualConfig {
	return x.failureDetector
}

// Validate checks the config
func (x *Config) Validate() error {
	chain := validation.New(validation.FailFast()).
		AddValidator(validation.NewPositiveDurationValidator("heartbeatInterval", x.heartbeatInterval, errors.ErrInvalidHeartbeatInterval)).
		AddValidator(validation.NewPositiveDurationValidator("unreachableReaperInterval", x.unreachableReaperInterval, errors.ErrInvalidHeartbeatInterval)).
		AddValidator(validation.NewPositiveDurationValidator("heartbeatExpectedResponseAfter", x.heartbeatExpectedResponseAfter, errors.ErrInvalidHeartbeatInterval)).
		AddAssertion(x.mailboxSize > 0, "mailboxSize must be > 0")

	if x.failureDetector != nil {
		chain = chain.AddValidator(x.failureDetector)
	}
	return chain.Validate()
}
