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

package testkit

import (
	"context"
	"errors"
	"time"

	"github.com/tochemey/remotewatch/address"
)

// ErrDropped is returned by the interceptors simulating a lost message
var ErrDropped = errors.New("message dropped")

// Kind is the variant of an Interceptor
type Kind int

const (
	// NoOpKind delivers every message
	NoOpKind Kind = iota
	// DelayKind delivers every message after a delay
	DelayKind
	// FailKind never delivers and returns an error
	FailKind
	// OnConditionKind applies the next interceptor to the messages matching a predicate
	OnConditionKind
	// OnTypeKind applies the next interceptor to the messages of a given type
	OnTypeKind
)

func (k Kind) String() string {
	switch k {
	case NoOpKind:
		return "NoOp"
	case DelayKind:
		return "Delay"
	case FailKind:
		return "Fail"
	case OnConditionKind:
		return "OnCondition"
	case OnTypeKind:
		return "OnType"
	default:
		return "Unknown"
	}
}

// Predicate selects the messages an interceptor applies to
type Predicate func(to address.Node, message any) bool

// Interceptor decides the fate of a message sent over a Network.
// Interceptors are composed by wrapping: OnType and OnCondition hand the
// matching messages to the next interceptor and deliver the others.
type Interceptor struct {
	kind      Kind
	delay     time.Duration
	err       error
	predicate Predicate
	next      *Interceptor
}

// NoOp returns an Interceptor that delivers every message
func NoOp() *Interceptor {
	return &Interceptor{kind: NoOpKind}
}

// Delay returns an Interceptor that delivers every message after delay
func Delay(delay time.Duration) *Interceptor {
	return &Interceptor{kind: DelayKind, delay: delay}
}

// Fail returns an Interceptor that drops every message with err.
// ErrDropped is used when err is nil.
func Fail(err error) *Interceptor {
	if err == nil {
		err = ErrDropped
	}
	return &Interceptor{kind: FailKind, err: err}
}

// OnCondition applies next to the messages matching predicate
func OnCondition(predicate Predicate, next *Interceptor) *Interceptor {
	return &Interceptor{kind: OnConditionKind, predicate: predicate, next: next}
}

// OnType applies next to the messages of type T
func OnType[T any](next *Interceptor) *Interceptor {
	return &Interceptor{
		kind: OnTypeKind,
		predicate: func(_ address.Node, message any) bool {
			_, ok := message.(T)
			return ok
		},
		next: next,
	}
}

// Kind returns the interceptor variant
func (i *Interceptor) Kind() Kind {
	return i.kind
}

// Intercept reports whether message sent to the node to must be delivered.
// A non-nil error means the message is lost.
func (i *Interceptor) Intercept(ctx context.Context, to address.Node, message any) (bool, error) {
	if i == nil {
		return true, nil
	}

	switch i.kind {
	case NoOpKind:
		return true, nil
	case DelayKind:
		timer := time.NewTimer(i.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
			return true, nil
		case <-ctx.Done():
			return false, ctx.Err()
		}
	case FailKind:
		return false, i.err
	case OnConditionKind, OnTypeKind:
		if i.predicate(to, message) {
			return i.next.Intercept(ctx, to, message)
		}
		return true, nil
	default:
		return true, nil
	}
}
