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

// Package address provides the identifiers of remote peers and of the actors
// they host.
//
// A Node identifies a single actor system instance reachable over the network
// and is the key under which peers are watched and monitored:
//
//	<system>@<host>:<port>
//
// An Address identifies an actor hosted by a Node:
//
//	goakt://<system>@<host>:<port>/<name>
package address

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	gerrors "github.com/tochemey/remotewatch/errors"
	"github.com/tochemey/remotewatch/internal/validation"
)

// scheme defines the addressing scheme
const scheme = "goakt"

var (
	namePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-_.]*$`)
	errName     = errors.New("must contain only word characters (i.e. [a-zA-Z0-9] plus non-leading '-', '_' or '.')")
)

// Node is the network identity of an actor system.
//
// Node is a comparable value and can be used as a map key.
type Node struct {
	system string
	host   string
	port   int
}

var _ validation.Validator = Node{}

// NewNode creates a Node. The inputs are not validated; call Validate.
func NewNode(system, host string, port int) Node {
	return Node{system: system, host: host, port: port}
}

// System returns the actor system name
func (n Node) System() string {
	return n.system
}

// Host returns the node host
func (n Node) Host() string {
	return n.host
}

// Port returns the node port
func (n Node) Port() int {
	return n.port
}

// IsZero reports whether n is the zero Node
func (n Node) IsZero() bool {
	return n == Node{}
}

// HostPort returns the "host:port" portion of the node
func (n Node) HostPort() string {
	var portBuf [6]byte
	portBytes := strconv.AppendInt(portBuf[:0], int64(n.port), 10)

	var builder strings.Builder
	builder.Grow(len(n.host) + 1 + len(portBytes))
	_, _ = builder.WriteString(n.host)
	_ = builder.WriteByte(':')
	_, _ = builder.Write(portBytes)
	return builder.String()
}

// String returns the textual form of the node: system@host:port
func (n Node) String() string {
	hostPort := n.HostPort()
	var builder strings.Builder
	builder.Grow(len(n.system) + 1 + len(hostPort))
	_, _ = builder.WriteString(n.system)
	_ = builder.WriteByte('@')
	_, _ = builder.WriteString(hostPort)
	return builder.String()
}

// Validate checks whether the node is well-formed.
func (n Node) Validate() error {
	if err := validation.
		New(validation.FailFast()).
		AddValidator(validation.NewEmptyStringValidator("system", n.system)).
		AddValidator(validation.NewPatternValidator(namePattern, n.system, errName)).
		AddValidator(validation.NewEndpointValidator(n.host, n.port)).
		Validate(); err != nil {
		return gerrors.NewErrInvalidAddress(err)
	}
	return nil
}

// ParseNode parses the system@host:port form produced by Node.String.
func ParseNode(s string) (Node, error) {
	system, hostPort, ok := strings.Cut(s, "@")
	if !ok || strings.Contains(hostPort, "@") {
		return Node{}, gerrors.NewErrInvalidAddress(errors.New("node format is invalid"))
	}

	idx := strings.LastIndexByte(hostPort, ':')
	if idx < 0 {
		return Node{}, gerrors.NewErrInvalidAddress(errors.New("node format is invalid"))
	}

	port, err := strconv.Atoi(hostPort[idx+1:])
	if err != nil {
		return Node{}, gerrors.NewErrInvalidAddress(err)
	}

	node := NewNode(system, hostPort[:idx], port)
	if err := node.Validate(); err != nil {
		return Node{}, err
	}
	return node, nil
}
