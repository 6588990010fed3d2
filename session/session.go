// Barrier client session engine.
// https://github.com/hidbridge/barrierkvm
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package session

import (
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/hidbridge/barrierkvm/actuator"
	"github.com/hidbridge/barrierkvm/protocol"
)

// clientMajor, clientMinor are the Barrier protocol version this
// client announces in its handshake reply.
const (
	clientMajor = 1
	clientMinor = 6
)

const handshakeLiteral = "Barrier"

// clipboardCapacity bounds clipboard payload assembly, matching
// actuator.ClipboardCapacity.
const clipboardCapacity = actuator.ClipboardCapacity

// Session runs one Barrier TCP connection end to end: handshake,
// then a strictly sequential read-dispatch loop until the connection
// ends or a fatal server message arrives.
type Session struct {
	conn           net.Conn
	reader         *protocol.Reader
	writer         *protocol.Writer
	asm            *protocol.ClipboardAssembler
	act            actuator.Actuator
	screenName     string
	jiggleInterval time.Duration
}

// New wraps conn for a session driving act, advertising screenName to
// the server, and treating jiggleInterval as both the idle-jiggle
// period and the per-packet read deadline.
func New(conn net.Conn, act actuator.Actuator, screenName string, jiggleInterval time.Duration) *Session {
	return &Session{
		conn:           conn,
		reader:         protocol.NewReader(conn),
		writer:         protocol.NewWriter(conn),
		asm:            protocol.NewClipboardAssembler(clipboardCapacity),
		act:            act,
		screenName:     screenName,
		jiggleInterval: jiggleInterval,
	}
}

// Run performs the handshake and then drives the dispatch loop until
// it returns, which is always treated as a reconnect signal by the
// caller.
func (s *Session) Run() error {
	if err := s.conn.SetDeadline(time.Now().Add(10 * time.Second)); err != nil {
		return fmt.Errorf("%w: %v", ErrTCPConnect, err)
	}
	if err := s.handshake(); err != nil {
		return err
	}
	// The loop only ever refreshes the read deadline; clear the write
	// side of the handshake's combined deadline so a later CALV/DINF
	// reply doesn't inherit a stale write deadline from connect time.
	if err := s.conn.SetWriteDeadline(time.Time{}); err != nil {
		return fmt.Errorf("%w: %v", ErrTCPConnect, err)
	}
	if err := s.act.Connected(); err != nil {
		log.Printf("session: actuator.Connected: %v", err)
	}
	defer func() {
		if err := s.act.Disconnected(); err != nil {
			log.Printf("session: actuator.Disconnected: %v", err)
		}
	}()

	return s.loop()
}

func (s *Session) handshake() error {
	length, err := s.reader.ReadU32()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	if length != uint32(len(handshakeLiteral))+4 {
		return fmt.Errorf("%w: unexpected handshake length %d", ErrProtocol, length)
	}
	lit, err := s.reader.ReadBytesExact(len(handshakeLiteral))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	if string(lit) != handshakeLiteral {
		return fmt.Errorf("%w: bad handshake literal %q", ErrProtocol, lit)
	}
	major, err := s.reader.ReadU16()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	minor, err := s.reader.ReadU16()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	log.Printf("session: server protocol %d.%d", major, minor)

	if err := protocol.WriteHandshakeReply(s.writer, clientMajor, clientMinor, s.screenName); err != nil {
		return fmt.Errorf("%w: %v", ErrTCPConnect, err)
	}
	return nil
}

func (s *Session) loop() error {
	for {
		if err := s.conn.SetReadDeadline(time.Now().Add(s.jiggleInterval)); err != nil {
			return fmt.Errorf("%w: %v", ErrDisconnected, err)
		}

		p, err := protocol.ReadPacket(s.reader, s.asm)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				if actuator.Current().KeepAwake {
					if jerr := s.act.Jiggle(); jerr != nil {
						log.Printf("session: jiggle: %v", jerr)
					}
				}
				continue
			}
			return fmt.Errorf("%w: %v", ErrDisconnected, err)
		}

		if err := s.dispatch(p); err != nil {
			return err
		}
	}
}

func (s *Session) dispatch(p protocol.Packet) error {
	switch p.Kind {
	case protocol.KindQueryInfo:
		w, h := s.act.ScreenSize()
		return protocol.WritePacket(s.writer, protocol.DeviceInfo(0, 0, w, h, 0, 0))

	case protocol.KindKeepAlive:
		return protocol.WritePacket(s.writer, protocol.KeepAlive())

	case protocol.KindServerBusy, protocol.KindGoodBye, protocol.KindBadProtocol,
		protocol.KindUnknownDevice, protocol.KindIncompatibleVersion:
		log.Printf("session: server terminated connection (%v)", p.Kind)
		return ErrDisconnected

	case protocol.KindCursorEnter:
		return s.act.Enter(p.X, p.Y, p.Mask)
	case protocol.KindCursorLeave:
		return s.act.Leave()

	case protocol.KindMouseMoveAbs:
		return s.act.SetCursorPosition(p.X, p.Y)
	case protocol.KindMouseMove:
		return s.act.MoveCursor(p.DX, p.DY)
	case protocol.KindMouseDown:
		return s.act.MouseDown(p.Button)
	case protocol.KindMouseUp:
		return s.act.MouseUp(p.Button)
	case protocol.KindMouseWheel:
		return s.act.MouseWheel(p.WheelX, p.WheelY)

	case protocol.KindKeyDown:
		return s.act.KeyDown(p.Key, p.KeyMask, p.KeyButton)
	case protocol.KindKeyUp:
		return s.act.KeyUp(p.Key, p.KeyMask, p.KeyButton)
	case protocol.KindKeyRepeat:
		return s.act.KeyRepeat(p.Key, p.KeyMask, p.KeyButton, p.RepeatCount)

	case protocol.KindSetClipboard:
		if p.ClipboardData != nil {
			return s.act.SetClipboard(p.ClipboardData)
		}
		return nil

	case protocol.KindGrabClipboard:
		// Whether the client should claim ownership with its own CCLP
		// is unspecified; logging only matches observed server
		// behavior.
		log.Printf("session: server grabbed clipboard id=%d seq=%d", p.ClipboardID, p.SeqNum)
		return nil

	default:
		// CNOP, CROP, DSOP, InfoAck and anything unrecognized: silently
		// ignored, per the accept-superset-emit-subset contract.
		return nil
	}
}

// Dial opens a TCP connection to addr, which must be an IPv4
// "a.b.c.d:port" address (host names are rejected, no DNS lookup is
// made), with a bounded connect timeout and SO_KEEPALIVE enabled,
// matching the session's startup contract.
func Dial(addr string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTCPConnect, err)
	}
	if ip := net.ParseIP(host); ip == nil || ip.To4() == nil {
		return nil, fmt.Errorf("%w: %q is not an IPv4 a.b.c.d:port address", ErrTCPConnect, addr)
	}
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTCPConnect, err)
	}
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := tcpConn.SetKeepAlive(true); err != nil {
			log.Printf("session: SetKeepAlive: %v", err)
		}
		if err := tcpConn.SetKeepAlivePeriod(time.Second); err != nil {
			log.Printf("session: SetKeepAlivePeriod: %v", err)
		}
	}
	return conn, nil
}
