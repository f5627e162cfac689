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
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/tochemey/remotewatch/address"
	"github.com/tochemey/remotewatch/errors"
	"github.com/tochemey/remotewatch/watcher"
)

type frameKind uint8

const (
	heartbeatFrame frameKind = iota + 1
	heartbeatResponseFrame
)

// frame is the wire representation of the watcher messages
type frame struct {
	Kind frameKind `cbor:"1,keyasint"`
	From string    `cbor:"2,keyasint"`
	UID  int64     `cbor:"3,keyasint,omitempty"`
}

var (
	encOpts = cbor.EncOptions{
		Sort:        cbor.SortNone,
		IndefLength: cbor.IndefLengthForbidden,
	}
	decOpts = cbor.DecOptions{
		MaxNestedLevels: 4,
		IndefLength:     cbor.IndefLengthForbidden,
		UTF8:            cbor.UTF8DecodeInvalid,
	}
)

// codec turns the watcher messages into CBOR frames and back.
// It is stateless and safe for concurrent use.
type codec struct {
	encMode cbor.EncMode
	decMode cbor.DecMode
}

func newCodec() *codec {
	encMode, _ := encOpts.EncMode()
	decMode, _ := decOpts.DecMode()
	return &codec{encMode: encMode, decMode: decMode}
}

// Encode encodes a *watcher.Heartbeat or a *watcher.HeartbeatResponse
func (c *codec) Encode(message any) ([]byte, error) {
	var out frame
	switch msg := message.(type) {
	case *watcher.Heartbeat:
		out = frame{Kind: heartbeatFrame, From: msg.From.String()}
	case *watcher.HeartbeatResponse:
		out = frame{Kind: heartbeatResponseFrame, From: msg.From.String(), UID: msg.UID}
	default:
		return nil, fmt.Errorf("unsupported message %T", message)
	}
	return c.encMode.Marshal(out)
}

// Decode decodes a frame produced by Encode
func (c *codec) Decode(data []byte) (any, error) {
	var in frame
	if err := c.decMode.Unmarshal(data, &in); err != nil {
		return nil, errors.NewErrInvalidFrame(err)
	}

	from, err := address.ParseNode(in.From)
	if err != nil {
		return nil, errors.NewErrInvalidFrame(err)
	}

	switch in.Kind {
	case heartbeatFrame:
		return &watcher.Heartbeat{From: from}, nil
	case heartbeatResponseFrame:
		return &watcher.HeartbeatResponse{From: from, UID: in.UID}, nil
	default:
		return nil, errors.NewErrInvalidFrame(fmt.Errorf("unknown frame kind %d", in.Kind))
	}
}
