// Barrier/Synergy wire protocol support.
// https://github.com/hidbridge/barrierkvm
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package protocol

import "errors"

// Packet-level errors. A packet error aborts decoding of the packet in
// progress only; callers above the stream (session.Session) treat any of
// these as grounds to tear down the connection, since once framing is
// uncertain the only safe recovery is to reconnect.
var (
	// ErrIO wraps a fault on the underlying byte stream.
	ErrIO = errors.New("protocol: io error")

	// ErrFormat indicates a declared length or field value that does not
	// match what the decoder expected.
	ErrFormat = errors.New("protocol: format error")

	// ErrInsufficientData indicates the stream ended in the middle of a
	// field the decoder was still reading.
	ErrInsufficientData = errors.New("protocol: insufficient data")

	// ErrPacketTooSmall indicates a declared packet length below the
	// minimum 4 bytes needed to hold a command code.
	ErrPacketTooSmall = errors.New("protocol: packet too small")
)
