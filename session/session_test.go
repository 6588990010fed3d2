package session

import (
	"bytes"
	"encoding/binary"
	"net"
	"testing"
	"time"
)

type fakeActuator struct {
	connected    int
	disconnected int
	width, height uint16
	entered      []uint16 // masks passed to Enter
	cursorX, cursorY uint16
	clipboard    []byte
}

func (f *fakeActuator) Connected() error    { f.connected++; return nil }
func (f *fakeActuator) Disconnected() error { f.disconnected++; return nil }
func (f *fakeActuator) ScreenSize() (uint16, uint16) { return f.width, f.height }
func (f *fakeActuator) CursorPosition() (uint16, uint16) { return f.cursorX, f.cursorY }
func (f *fakeActuator) SetCursorPosition(x, y uint16) error {
	f.cursorX, f.cursorY = x, y
	return nil
}
func (f *fakeActuator) MoveCursor(dx, dy int16) error { return nil }
func (f *fakeActuator) MouseDown(button int8) error   { return nil }
func (f *fakeActuator) MouseUp(button int8) error     { return nil }
func (f *fakeActuator) MouseWheel(dx, dy int16) error { return nil }
func (f *fakeActuator) KeyDown(key, mask, button uint16) error { return nil }
func (f *fakeActuator) KeyUp(key, mask, button uint16) error   { return nil }
func (f *fakeActuator) KeyRepeat(key, mask, button, count uint16) error { return nil }
func (f *fakeActuator) Enter(x, y uint16, mask uint16) error {
	f.cursorX, f.cursorY = x, y
	f.entered = append(f.entered, mask)
	return nil
}
func (f *fakeActuator) Leave() error                   { return nil }
func (f *fakeActuator) SetClipboard(data []byte) error { f.clipboard = data; return nil }
func (f *fakeActuator) Jiggle() error                  { return nil }

func writeFrame(t *testing.T, conn net.Conn, payload []byte) {
	t.Helper()
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(payload)))
	if _, err := conn.Write(length[:]); err != nil {
		t.Fatalf("write length: %v", err)
	}
	if _, err := conn.Write(payload); err != nil {
		t.Fatalf("write payload: %v", err)
	}
}

func readExact(t *testing.T, conn net.Conn, n int) []byte {
	t.Helper()
	buf := make([]byte, n)
	total := 0
	for total < n {
		m, err := conn.Read(buf[total:])
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		total += m
	}
	return buf
}

func TestSessionHandshake(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	act := &fakeActuator{width: 1920, height: 1080}
	s := New(client, act, "scrn", time.Hour)

	done := make(chan error, 1)
	go func() { done <- s.Run() }()

	// server sends "Barrier" 1.6, client replies in kind.
	payload := append([]byte(handshakeLiteral), 0x00, 0x01, 0x00, 0x06)
	writeFrame(t, server, payload)

	reply := readExact(t, server, 4+7+2+2+4+4)
	want := []byte{
		0x00, 0x00, 0x00, 0x13, // length = 7 + 2 + 2 + 4 + len("scrn")
		'B', 'a', 'r', 'r', 'i', 'e', 'r',
		0x00, 0x01, 0x00, 0x06,
		0x00, 0x00, 0x00, 0x04,
		's', 'c', 'r', 'n',
	}
	if !bytes.Equal(reply, want) {
		t.Fatalf("handshake reply = % x, want % x", reply, want)
	}

	server.Close()
	client.Close()
	<-done
}

func TestSessionQueryInfo(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	act := &fakeActuator{width: 1920, height: 1080}
	s := New(client, act, "scrn", time.Hour)

	done := make(chan error, 1)
	go func() { done <- s.Run() }()

	writeFrame(t, server, append([]byte(handshakeLiteral), 0x00, 0x01, 0x00, 0x06))
	readExact(t, server, 4+7+2+2+4+4) // drain handshake reply

	writeFrame(t, server, []byte("QINF"))

	// DINF of length 0x12 with w=1920,h=1080.
	resp := readExact(t, server, 4+4+14)
	want := []byte{
		0x00, 0x00, 0x00, 0x12, 'D', 'I', 'N', 'F',
		0x00, 0x00, 0x00, 0x00,
		0x07, 0x80, 0x04, 0x38,
		0x00, 0x00,
		0x00, 0x00,
		0x00, 0x00,
	}
	if !bytes.Equal(resp, want) {
		t.Fatalf("DINF reply = % x, want % x", resp, want)
	}

	server.Close()
	client.Close()
	<-done
	if act.connected != 1 {
		t.Fatalf("connected = %d, want 1", act.connected)
	}
}

func TestSessionCursorEnterWithShift(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	act := &fakeActuator{width: 1920, height: 1080}
	s := New(client, act, "scrn", time.Hour)

	done := make(chan error, 1)
	go func() { done <- s.Run() }()

	writeFrame(t, server, append([]byte(handshakeLiteral), 0x00, 0x01, 0x00, 0x06))
	readExact(t, server, 4+7+2+2+4+4)

	// CINN x=100 y=200 seq=7 mask=0x0002 (left-shift held).
	cinn := make([]byte, 0, 14)
	cinn = append(cinn, []byte("CINN")...)
	cinn = appendU16Test(cinn, 100)
	cinn = appendU16Test(cinn, 200)
	cinn = appendU32Test(cinn, 7)
	cinn = appendU16Test(cinn, 0x0002)
	writeFrame(t, server, cinn)

	server.Close()
	client.Close()
	<-done

	if act.cursorX != 100 || act.cursorY != 200 {
		t.Fatalf("cursor = (%d,%d), want (100,200)", act.cursorX, act.cursorY)
	}
	if len(act.entered) != 1 || act.entered[0] != 0x0002 {
		t.Fatalf("entered = %v, want [0x0002]", act.entered)
	}
}

func appendU16Test(buf []byte, v uint16) []byte {
	return append(buf, byte(v>>8), byte(v))
}

func appendU32Test(buf []byte, v uint32) []byte {
	return append(buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}
