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
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type booleanValidator struct {
	boolCheck  bool
	errMessage string
}

// NewBooleanValidator creates a validator that returns an error message if condition is false
func NewBooleanValidator(boolCheck bool, errMessage string) Validator {
	return &booleanValidator{boolCheck: boolCheck, errMessage: errMessage}
}

func (v booleanValidator) Validate() error {
	if !v.boolCheck {
		return errors.New(v.errMessage)
	}
	return nil
}

type errorValidator struct {
	boolCheck bool
	err       error
}

// NewErrorValidator creates a validator that returns err when condition is false
func NewErrorValidator(boolCheck bool, err error) Validator {
	return &errorValidator{boolCheck: boolCheck, err: err}
}

func (v errorValidator) Validate() error {
	if !v.boolCheck {
		return v.err
	}
	return nil
}

type emptyStringValidator struct {
	field string
	value string
}

// NewEmptyStringValidator creates a validator that fails when value is blank
func NewEmptyStringValidator(field, value string) Validator {
	return &emptyStringValidator{field: field, value: value}
}

func (v emptyStringValidator) Validate() error {
	if strings.TrimSpace(v.value) == "" {
		return fmt.Errorf("the [%s] is required", v.field)
	}
	return nil
}

type durationValidator struct {
	field      string
	value      time.Duration
	allowZero  bool
	sentinel   error
	comparison string
}

// NewPositiveDurationValidator fails with sentinel when value <= 0
func NewPositiveDurationValidator(field string, value time.Duration, sentinel error) Validator {
	return &durationValidator{field: field, value: value, sentinel: sentinel, comparison: "> 0"}
}

// NewNonNegativeDurationValidator fails with sentinel when value < 0
func NewNonNegativeDurationValidator(field string, value time.Duration, sentinel error) Validator {
	return &durationValidator{field: field, value: value, allowZero: true, sentinel: sentinel, comparison: ">= 0"}
}

func (v durationValidator) Validate() error {
	if v.value > 0 || (v.allowZero && v.value == 0) {
		return nil
	}
	if v.sentinel != nil {
		return fmt.Errorf("%s=(%s): %w", v.field, v.value, v.sentinel)
	}
	return fmt.Errorf("%s=(%s) must be %s", v.field, v.value, v.comparison)
}

type patternValidator struct {
	pattern   *regexp.Regexp
	value     string
	customErr error
}

// NewPatternValidator creates a validator that fails when value does not match pattern.
// The pattern must be a valid regular expression.
func NewPatternValidator(pattern *regexp.Regexp, value string, customErr error) Validator {
	return &patternValidator{pattern: pattern, value: value, customErr: customErr}
}

func (v patternValidator) Validate() error {
	if !v.pattern.MatchString(v.value) {
		if v.customErr != nil {
			return v.customErr
		}
		return fmt.Errorf("value=(%s) does not match %s", v.value, v.pattern.String())
	}
	return nil
}

type endpointValidator struct {
	host string
	port int
}

// NewEndpointValidator validates a host and a TCP port pair
func NewEndpointValidator(host string, port int) Validator {
	return &endpointValidator{host: host, port: port}
}

func (v endpointValidator) Validate() error {
	endpoint := net.JoinHostPort(v.host, strconv.Itoa(v.port))
	if strings.TrimSpace(v.host) == "" {
		return fmt.Errorf("invalid endpoint=(%s): host is required", endpoint)
	}
	if v.port < 0 || v.port > 65535 {
		return fmt.Errorf("invalid endpoint=(%s): port out of range", endpoint)
	}
	return nil
}
