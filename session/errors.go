// Barrier client session engine.
// https://github.com/hidbridge/barrierkvm
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package session

import "errors"

// Session-level errors. Any of these ends the current TCP connection;
// the supervisor is responsible for reconnecting.
var (
	// ErrDisconnected covers transport closure, a read/write deadline
	// exceeded, or a fatal server variant (ServerBusy, GoodBye,
	// BadProtocol, UnknownDevice, IncompatibleVersion).
	ErrDisconnected = errors.New("session: disconnected")

	// ErrTCPConnect wraps a failure to establish the connection.
	ErrTCPConnect = errors.New("session: tcp connect failed")

	// ErrProtocol wraps a packet-level decoding error. Once framing is
	// uncertain, the session cannot recover in place and must
	// reconnect.
	ErrProtocol = errors.New("session: protocol error")
)
