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

package validation

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type validationTestSuite struct {
	suite.Suite
}

func TestValidation(t *testing.T) {
	suite.Run(t, new(validationTestSuite))
}

func (s *validationTestSuite) TestNewChain() {
	s.Run("new chain without option", func() {
		chain := New()
		s.Assert().NotNil(chain)
		s.Assert().False(chain.failFast)
	})
	s.Run("new chain with options", func() {
		s.Assert().True(New(FailFast()).failFast)
		s.Assert().False(New(AllErrors()).failFast)
	})
}

func (s *validationTestSuite) TestValidate() {
	errBoom := errors.New("boom")

	s.Run("with no violation", func() {
		err := New().
			AddAssertion(true, "never").
			AddCheck(true, errBoom).
			AddValidator(NewEmptyStringValidator("host", "127.0.0.1")).
			Validate()
		s.Assert().NoError(err)
	})
	s.Run("with FailFast returns the first violation", func() {
		err := New(FailFast()).
			AddValidator(NewEmptyStringValidator("host", "  ")).
			AddAssertion(false, "this is false").
			Validate()
		s.Assert().EqualError(err, "the [host] is required")
	})
	s.Run("with AllErrors combines violations", func() {
		err := New(AllErrors()).
			AddValidator(NewEmptyStringValidator("host", "")).
			AddAssertion(false, "this is false").
			Validate()
		s.Assert().EqualError(err, "the [host] is required; this is false")
	})
	s.Run("with sentinel check", func() {
		err := New(FailFast()).AddCheck(false, errBoom).Validate()
		s.Assert().ErrorIs(err, errBoom)
	})
	s.Run("validating twice does not accumulate", func() {
		chain := New().AddAssertion(false, "once")
		s.Assert().EqualError(chain.Validate(), "once")
		s.Assert().EqualError(chain.Validate(), "once")
	})
}

func (s *validationTestSuite) TestDurationValidators() {
	errInvalid := errors.New("invalid duration")

	s.Assert().NoError(NewPositiveDurationValidator("interval", time.Second, errInvalid).Validate())
	s.Assert().ErrorIs(NewPositiveDurationValidator("interval", 0, errInvalid).Validate(), errInvalid)
	s.Assert().EqualError(NewPositiveDurationValidator("interval", -time.Second, nil).Validate(), "interval=(-1s) must be > 0")

	s.Assert().NoError(NewNonNegativeDurationValidator("pause", 0, errInvalid).Validate())
	s.Assert().ErrorIs(NewNonNegativeDurationValidator("pause", -time.Millisecond, errInvalid).Validate(), errInvalid)
	s.Assert().EqualError(NewNonNegativeDurationValidator("pause", -time.Second, nil).Validate(), "pause=(-1s) must be >= 0")
}

func (s *validationTestSuite) TestPatternValidator() {
	pattern := regexp.MustCompile(`^[a-z]+$`)
	customErr := errors.New("lowercase only")
	s.Assert().NoError(NewPatternValidator(pattern, "abc", customErr).Validate())
	s.Assert().ErrorIs(NewPatternValidator(pattern, "ABC", customErr).Validate(), customErr)
	s.Assert().EqualError(NewPatternValidator(pattern, "1", nil).Validate(), "value=(1) does not match ^[a-z]+$")
}

func (s *validationTestSuite) TestEndpointValidator() {
	s.Assert().NoError(NewEndpointValidator("127.0.0.1", 2552).Validate())
	s.Assert().NoError(NewEndpointValidator("localhost", 0).Validate())
	s.Assert().EqualError(NewEndpointValidator("", 2552).Validate(), "invalid endpoint=(:2552): host is required")
	s.Assert().EqualError(NewEndpointValidator("127.0.0.1", 70000).Validate(), "invalid endpoint=(127.0.0.1:70000): port out of range")
}
