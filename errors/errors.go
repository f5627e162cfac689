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

package errors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidThreshold is returned when the phi threshold is not strictly positive.
	ErrInvalidThreshold = errors.New("threshold must be > 0")

	// ErrInvalidMaxSampleSize is returned when the heartbeat history capacity is not strictly positive.
	ErrInvalidMaxSampleSize = errors.New("max sample size must be > 0")

	// ErrInvalidMinStdDeviation is returned when the minimum standard deviation is not strictly positive.
	ErrInvalidMinStdDeviation = errors.New("min std deviation must be > 0")

	// ErrInvalidAcceptableHeartbeatPause is returned when the acceptable heartbeat pause is negative.
	ErrInvalidAcceptableHeartbeatPause = errors.New("acceptable heartbeat pause must be >= 0")

	// ErrInvalidFirstHeartbeatEstimate is returned when the first heartbeat estimate is below one millisecond.
	ErrInvalidFirstHeartbeatEstimate = errors.New("first heartbeat estimate must be >= 1ms")

	// ErrInvalidHeartbeatInterval is returned when a heartbeat or reaper interval is not strictly positive.
	ErrInvalidHeartbeatInterval = errors.New("heartbeat interval must be > 0")

	// ErrInvalidCapacity is returned when a resend buffer is created with a non-positive capacity.
	ErrInvalidCapacity = errors.New("resend buffer capacity must be > 0")

	// ErrResendBufferCapacityReached is returned when buffering a message would exceed the resend buffer capacity.
	// The connection owning the buffer is expected to be reset.
	ErrResendBufferCapacityReached = errors.New("resend buffer capacity reached")

	// ErrResendUnfulfillable is returned when an acknowledgment nacks messages the send buffer no longer holds.
	// The connection owning the buffer is expected to be reset.
	ErrResendUnfulfillable = errors.New("unable to fulfill resend request")

	// ErrNonMonotonicSequence is returned when a message is buffered with a sequence number that does not
	// come after the highest sequence number already buffered.
	ErrNonMonotonicSequence = errors.New("sequence number must be monotonic")

	// ErrUnknownCumulativeAck is returned when an acknowledgment covers sequence numbers that were never buffered.
	ErrUnknownCumulativeAck = errors.New("cumulative ack is higher than any buffered sequence number")

	// ErrWatcherNotStarted is returned when the watcher is used before Start or after Stop.
	ErrWatcherNotStarted = errors.New("watcher is not started")

	// ErrWatcherAlreadyStarted is returned when Start is called twice.
	ErrWatcherAlreadyStarted = errors.New("watcher is already started")

	// ErrMailboxFull is returned when the watcher mailbox cannot accept more messages.
	ErrMailboxFull = errors.New("watcher mailbox is full")

	// ErrInvalidAddress is returned when a node or actor address is malformed.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrTransportClosed is returned when sending through a closed transport.
	ErrTransportClosed = errors.New("transport is closed")

	// ErrTransportRequired is returned when the watcher is created without a transport.
	ErrTransportRequired = errors.New("transport is required")

	// ErrInvalidFrame is returned when an inbound transport frame cannot be decoded.
	ErrInvalidFrame = errors.New("invalid heartbeat frame")
)

// ResendBufferCapacityReachedError is returned by the send buffer when
// the number of outstanding messages has reached its capacity.
type ResendBufferCapacityReachedError struct {
	Capacity int
}

// enforce compilation error
var _ error = (*ResendBufferCapacityReachedError)(nil)

// NewResendBufferCapacityReachedError creates an instance of ResendBufferCapacityReachedError
func NewResendBufferCapacityReachedError(capacity int) *ResendBufferCapacityReachedError {
	return &ResendBufferCapacityReachedError{Capacity: capacity}
}

// Error implements the standard error interface
func (e *ResendBufferCapacityReachedError) Error() string {
	return fmt.Sprintf("%s: capacity=%d", ErrResendBufferCapacityReached.Error(), e.Capacity)
}

func (e *ResendBufferCapacityReachedError) Unwrap() error {
	return ErrResendBufferCapacityReached
}

// ResendUnfulfillableError is returned by the send buffer when the peer
// nacks sequence numbers that can no longer be resent.
type ResendUnfulfillableError struct {
	Missing []int64
}

// enforce compilation error
var _ error = (*ResendUnfulfillableError)(nil)

// NewResendUnfulfillableError creates an instance of ResendUnfulfillableError
func NewResendUnfulfillableError(missing []int64) *ResendUnfulfillableError {
	return &ResendUnfulfillableError{Missing: missing}
}

// Error implements the standard error interface
func (e *ResendUnfulfillableError) Error() string {
	seqs := make([]string, len(e.Missing))
	for i, seq := range e.Missing {
		seqs[i] = strconv.FormatInt(seq, 10)
	}
	return fmt.Sprintf("%s: missing=[%s]", ErrResendUnfulfillable.Error(), strings.Join(seqs, ","))
}

func (e *ResendUnfulfillableError) Unwrap() error {
	return ErrResendUnfulfillable
}

// NewErrNonMonotonicSequence formats an ErrNonMonotonicSequence with the offending sequence numbers.
func NewErrNonMonotonicSequence(received, highest int64) error {
	return fmt.Errorf("(received=%d, highest=%d) %w", received, highest, ErrNonMonotonicSequence)
}

// NewErrUnknownCumulativeAck formats an ErrUnknownCumulativeAck with the offending sequence numbers.
func NewErrUnknownCumulativeAck(ack, highest int64) error {
	return fmt.Errorf("(ack=%d, highest=%d) %w", ack, highest, ErrUnknownCumulativeAck)
}

// NewErrInvalidAddress wraps a validation failure with ErrInvalidAddress.
func NewErrInvalidAddress(err error) error {
	return errors.Join(ErrInvalidAddress, err)
}

// NewErrInvalidFrame wraps a decoding failure with ErrInvalidFrame.
func NewErrInvalidFrame(err error) error {
	return errors.Join(ErrInvalidFrame, err)
}
