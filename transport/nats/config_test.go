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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig(t *testing.T) {
	t.Run("Sanitize sets the defaults", func(t *testing.T) {
		config := &Config{URL: "nats://127.0.0.1:4222"}
		config.Sanitize()
		assert.Equal(t, DefaultSubjectPrefix, config.SubjectPrefix)
		assert.Equal(t, DefaultConnectTimeout, config.ConnectTimeout)
		assert.Equal(t, DefaultMaxRetries, config.MaxRetries)
		assert.NoError(t, config.Validate())
	})
	t.Run("With missing URL", func(t *testing.T) {
		config := &Config{}
		config.Sanitize()
		assert.EqualError(t, config.Validate(), "the [URL] is required")
	})
	t.Run("With invalid subject prefix", func(t *testing.T) {
		config := &Config{URL: "nats://127.0.0.1:4222", SubjectPrefix: "watch.*"}
		config.Sanitize()
		assert.Error(t, config.Validate())
	})
	t.Run("With negative timeout", func(t *testing.T) {
		config := &Config{URL: "nats://127.0.0.1:4222", ConnectTimeout: -time.Second}
		config.Sanitize()
		assert.Error(t, config.Validate())
	})
}
