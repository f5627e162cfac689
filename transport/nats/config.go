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
	"regexp"
	"strings"
	"time"

	"github.com/tochemey/remotewatch/internal/validation"
)

const (
	// DefaultSubjectPrefix is the subject prefix used when none is set
	DefaultSubjectPrefix = "remotewatch"
	// DefaultConnectTimeout is the connection timeout used when none is set
	DefaultConnectTimeout = 5 * time.Second
	// DefaultMaxRetries is the number of connection attempts used when none is set
	DefaultMaxRetries = 5
)

var subjectPrefixPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+(\.[a-zA-Z0-9_-]+)*$`)

// Config holds the NATS transport settings
type Config struct {
	// URL is the NATS server URL (e.g. nats://127.0.0.1:4222)
	URL string
	// SubjectPrefix namespaces the watcher subjects. Every node sharing the
	// same prefix can heartbeat each other.
	SubjectPrefix string
	// ConnectTimeout bounds each connection attempt
	ConnectTimeout time.Duration
	// MaxRetries is the number of connection attempts before giving up
	MaxRetries int
}

var _ validation.Validator = (*Config)(nil)

// Sanitize sets defaults for empty fields
func (c *Config) Sanitize() {
	if strings.TrimSpace(c.SubjectPrefix) == "" {
		c.SubjectPrefix = DefaultSubjectPrefix
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
}

// Validate implements validation.Validator
func (c *Config) Validate() error {
	return validation.New(validation.FailFast()).
		AddValidator(validation.NewEmptyStringValidator("URL", c.URL)).
		AddValidator(validation.NewPatternValidator(subjectPrefixPattern, c.SubjectPrefix, nil)).
		AddValidator(validation.NewPositiveDurationValidator("ConnectTimeout", c.ConnectTimeout, nil)).
		AddAssertion(c.MaxRetries > 0, "MaxRetries must be greater than 0").
		Validate()
}
