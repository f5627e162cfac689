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

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/remotewatch/address"
	"github.com/tochemey/remotewatch/errors"
	"github.com/tochemey/remotewatch/watcher"
)

func TestCodec(t *testing.T) {
	codec := newCodec()
	node := address.NewNode("sys", "127.0.0.1", 2552)

	t.Run("Heartbeat", func(t *testing.T) {
		data, err := codec.Encode(&watcher.Heartbeat{From: node})
		require.NoError(t, err)

		decoded, err := codec.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, &watcher.Heartbeat{From: node}, decoded)
	})
	t.Run("HeartbeatResponse", func(t *testing.T) {
		data, err := codec.Encode(&watcher.HeartbeatResponse{From: node, UID: -12})
		require.NoError(t, err)

		decoded, err := codec.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, &watcher.HeartbeatResponse{From: node, UID: -12}, decoded)
	})
	t.Run("Unsupported message", func(t *testing.T) {
		_, err := codec.Encode("hello")
		assert.Error(t, err)
	})
	t.Run("Garbage", func(t *testing.T) {
		_, err := codec.Decode([]byte{0xff, 0x00, 0x01})
		assert.ErrorIs(t, err, errors.ErrInvalidFrame)
	})
	t.Run("Unknown kind", func(t *testing.T) {
		data, err := cbor.Marshal(frame{Kind: 9, From: node.String()})
		require.NoError(t, err)
		_, err = codec.Decode(data)
		assert.ErrorIs(t, err, errors.ErrInvalidFrame)
	})
	t.Run("Invalid sender", func(t *testing.T) {
		data, err := cbor.Marshal(frame{Kind: heartbeatFrame, From: "not a node"})
		require.NoError(t, err)
		_, err = codec.Decode(data)
		assert.ErrorIs(t, err, errors.ErrInvalidFrame)
	})
}
