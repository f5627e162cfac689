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

package address

import (
	"errors"
	"strings"

	gerrors "github.com/tochemey/remotewatch/errors"
	"github.com/tochemey/remotewatch/internal/validation"
)

// Address represents the address of an actor hosted by a Node.
type Address struct {
	node Node
	name string
}

var _ validation.Validator = (*Address)(nil)

// New creates a new Address. New does not validate the inputs; call Validate.
//
// Example canonical form of the returned address:
//
//	goakt://system@127.0.0.1:9000/actorName
func New(name, system string, host string, port int) *Address {
	return &Address{
		node: NewNode(system, host, port),
		name: name,
	}
}

// NewOnNode creates an Address for the named actor hosted by node
func NewOnNode(name string, node Node) *Address {
	return &Address{node: node, name: name}
}

// Node returns the node hosting the actor
func (x *Address) Node() Node {
	if x == nil {
		return Node{}
	}
	return x.node
}

// Name returns the actor name component of the Address.
func (x *Address) Name() string {
	if x == nil {
		return ""
	}
	return x.name
}

// System returns the actor system name component of the Address.
func (x *Address) System() string {
	return x.Node().System()
}

// Host returns the host component of the Address.
func (x *Address) Host() string {
	return x.Node().Host()
}

// Port returns the port component of the Address.
func (x *Address) Port() int {
	return x.Node().Port()
}

// HostPort returns the "host:port" portion of the Address.
func (x *Address) HostPort() string {
	return x.Node().HostPort()
}

// String returns the canonical textual form of the Address.
//
//	addr := New("checkoutActor", "orders", "10.0.0.12", 9000)
//	addr.String() // "goakt://orders@10.0.0.12:9000/checkoutActor"
func (x *Address) String() string {
	if x == nil {
		return ""
	}

	node := x.node.String()
	var builder strings.Builder
	builder.Grow(len(scheme) + len("://") + len(node) + 1 + len(x.name))
	_, _ = builder.WriteString(scheme)
	_, _ = builder.WriteString("://")
	_, _ = builder.WriteString(node)
	_ = builder.WriteByte('/')
	_, _ = builder.WriteString(x.name)
	return builder.String()
}

// Equals reports whether x and y represent the same address.
// It returns false if either is nil.
func (x *Address) Equals(y *Address) bool {
	if x == nil || y == nil {
		return false
	}
	return x.node == y.node && x.name == y.name
}

// Validate checks whether the Address is well-formed.
func (x *Address) Validate() error {
	if x == nil {
		return gerrors.NewErrInvalidAddress(errors.New("address is nil"))
	}

	if err := x.node.Validate(); err != nil {
		return err
	}

	if err := validation.
		New(validation.FailFast()).
		AddValidator(validation.NewEmptyStringValidator("name", x.name)).
		AddAssertion(len(x.name) <= 255, "actor name is too long. Maximum length is 255").
		AddValidator(validation.NewPatternValidator(namePattern, x.name, errName)).
		Validate(); err != nil {
		return gerrors.NewErrInvalidAddress(err)
	}
	return nil
}

// Parse parses a canonical address string into an Address.
//
//	addr, _ := Parse("goakt://orders@127.0.0.1:9000/checkout")
func Parse(addr string) (*Address, error) {
	if addr == "" {
		return nil, gerrors.NewErrInvalidAddress(errors.New("address is required"))
	}

	schemePart, rest, ok := strings.Cut(addr, "://")
	if !ok || strings.Contains(rest, "://") {
		return nil, gerrors.NewErrInvalidAddress(errors.New("address format is invalid"))
	}

	if schemePart != scheme {
		return nil, gerrors.NewErrInvalidAddress(errors.New("address protocol is not supported"))
	}

	nodePart, name, ok := strings.Cut(rest, "/")
	if !ok || strings.Contains(name, "/") {
		return nil, gerrors.NewErrInvalidAddress(errors.New("address format is invalid"))
	}

	node, err := ParseNode(nodePart)
	if err != nil {
		return nil, err
	}

	address := NewOnNode(name, node)
	if err := address.Validate(); err != nil {
		return nil, err
	}
	return address, nil
}
