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
	"time"

	"github.com/tochemey/remotewatch/errors"
	"github.com/tochemey/remotewatch/internal/validation"
)

const (
	// DefaultThreshold is the phi value above which a resource is considered unavailable
	DefaultThreshold = 10.0
	// DefaultMaxSampleSize is the default number of intervals kept in the heartbeat history
	DefaultMaxSampleSize = 200
	// DefaultMinStdDeviation is the default floor of the interval standard deviation
	DefaultMinStdDeviation = 100 * time.Millisecond
	// DefaultAcceptableHeartbeatPause is the default tolerated heartbeat pause
	DefaultAcceptableHeartbeatPause = 10 * time.Second
	// DefaultFirstHeartbeatEstimate is the default interval assumed before real samples exist
	DefaultFirstHeartbeatEstimate = time.Second
)

// PhiAccrualConfig holds the settings of a PhiAccrual detector
type PhiAccrualConfig struct {
	threshold                float64
	maxSampleSize            int
	minStdDeviation          time.Duration
	acceptableHeartbeatPause time.Duration
	firstHeartbeatEstimate   time.Duration
}

var _ validation.Validator = (*PhiAccrualConfig)(nil)

// PhiAccrualOption configures a PhiAccrualConfig
type PhiAccrualOption interface {
	Apply(config *PhiAccrualConfig)
}

// PhiAccrualOptionFunc implements PhiAccrualOption
type PhiAccrualOptionFunc func(config *PhiAccrualConfig)

// Apply applies the option
func (f PhiAccrualOptionFunc) Apply(config *PhiAccrualConfig) {
	f(config)
}

// DefaultPhiAccrualConfig returns the default phi accrual settings
func DefaultPhiAccrualConfig() *PhiAccrualConfig {
	return &PhiAccrualConfig{
		threshold:                DefaultThreshold,
		maxSampleSize:            DefaultMaxSampleSize,
		minStdDeviation:          DefaultMinStdDeviation,
		acceptableHeartbeatPause: DefaultAcceptableHeartbeatPause,
		firstHeartbeatEstimate:   DefaultFirstHeartbeatEstimate,
	}
}

// NewPhiAccrualConfig creates a PhiAccrualConfig from the defaults and the given options
func NewPhiAccrualConfig(opts ...PhiAccrualOption) *PhiAccrualConfig {
	config := DefaultPhiAccrualConfig()
	for _, opt := range opts {
		opt.Apply(config)
	}
	return config
}

// WithThreshold sets the phi threshold
func WithThreshold(threshold float64) PhiAccrualOption {
	return PhiAccrualOptionFunc(func(config *PhiAccrualConfig) {
		config.threshold = threshold
	})
}

// WithMaxSampleSize sets the number of intervals kept in the history
func WithMaxSampleSize(size int) PhiAccrualOption {
	return PhiAccrualOptionFunc(func(config *PhiAccrualConfig) {
		config.maxSampleSize = size
	})
}

// WithMinStdDeviation sets the floor of the standard deviation
func WithMinStdDeviation(d time.Duration) PhiAccrualOption {
	return PhiAccrualOptionFunc(func(config *PhiAccrualConfig) {
		config.minStdDeviation = d
	})
}

// WithAcceptableHeartbeatPause sets the pause tolerated on top of the mean interval
func WithAcceptableHeartbeatPause(d time.Duration) PhiAccrualOption {
	return PhiAccrualOptionFunc(func(config *PhiAccrualConfig) {
		config.acceptableHeartbeatPause = d
	})
}

// WithFirstHeartbeatEstimate sets the interval assumed before real samples exist
func WithFirstHeartbeatEstimate(d time.Duration) PhiAccrualOption {
	return PhiAccrualOptionFunc(func(config *PhiAccrualConfig) {
		config.firstHeartbeatEstimate = d
	})
}

// Threshold returns the phi threshold
func (c *PhiAccrualConfig) Threshold() float64 {
	return c.threshold
}

// MaxSampleSize returns the history capacity
func (c *PhiAccrualConfig) MaxSampleSize() int {
	return c.maxSampleSize
}

// MinStdDeviation returns the standard deviation floor
func (c *PhiAccrualConfig) MinStdDeviation() time.Duration {
	return c.minStdDeviation
}

// AcceptableHeartbeatPause returns the tolerated pause
func (c *PhiAccrualConfig) AcceptableHeartbeatPause() time.Duration {
	return c.acceptableHeartbeatPause
}

// FirstHeartbeatEstimate returns the bootstrap interval
func (c *PhiAccrualConfig) FirstHeartbeatEstimate() time.Duration {
	return c.firstHeartbeatEstimate
}

// Validate checks the settings
func (c *PhiAccrualConfig) Validate() error {
	return validation.New(validation.FailFast()).
		AddCheck(c.threshold > 0, errors.ErrInvalidThreshold).
		AddCheck(c.maxSampleSize > 0, errors.ErrInvalidMaxSampleSize).
		AddValidator(validation.NewPositiveDurationValidator("minStdDeviation", c.minStdDeviation, errors.ErrInvalidMinStdDeviation)).
		AddValidator(validation.NewNonNegativeDurationValidator("acceptableHeartbeatPause", c.acceptableHeartbeatPause, errors.ErrInvalidAcceptableHeartbeatPause)).
		AddValidator(validation.NewPositiveDurationValidator("firstHeartbeatEstimate", c.firstHeartbeatEstimate, errors.ErrInvalidFirstHeartbeatEstimate)).
		// the history samples whole milliseconds
		AddCheck(c.firstHeartbeatEstimate >= time.Millisecond, errors.ErrInvalidFirstHeartbeatEstimate).
		Validate()
}

// DeadlineConfig holds the settings of a Deadline detector
type DeadlineConfig struct {
	acceptableHeartbeatPause time.Duration
	heartbeatInterval        time.Duration
}

var _ validation.Validator = (*DeadlineConfig)(nil)

// NewDeadlineConfig creates a DeadlineConfig.
// A heartbeat keeps the resource available for acceptableHeartbeatPause.
// heartbeatInterval is optional slack added to that window; zero disables it.
func NewDeadlineConfig(acceptableHeartbeatPause, heartbeatInterval time.Duration) *DeadlineConfig {
	return &DeadlineConfig{
		acceptableHeartbeatPause: acceptableHeartbeatPause,
		heartbeatInterval:        heartbeatInterval,
	}
}

// DefaultDeadlineConfig returns the default deadline settings
func DefaultDeadlineConfig() *DeadlineConfig {
	return NewDeadlineConfig(DefaultAcceptableHeartbeatPause, 0)
}

// AcceptableHeartbeatPause returns the tolerated pause
func (c *DeadlineConfig) AcceptableHeartbeatPause() time.Duration {
	return c.acceptableHeartbeatPause
}

// HeartbeatInterval returns the slack added to the acceptable pause
func (c *DeadlineConfig) HeartbeatInterval() time.Duration {
	return c.heartbeatInterval
}

// Validate checks the settings
func (c *DeadlineConfig) Validate() error {
	return validation.New(validation.FailFast()).
		AddValidator(validation.NewNonNegativeDurationValidator("acceptableHeartbeatPause", c.acceptableHeartbeatPause, errors.ErrInvalidAcceptableHeartbeatPause)).
		AddValidator(validation.NewNonNegativeDurationValidator("heartbeatInterval", c.heartbeatInterval, errors.ErrInvalidHeartbeatInterval)).
		Validate()
}
