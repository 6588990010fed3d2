// Barrier/Synergy wire protocol support.
// https://github.com/hidbridge/barrierkvm
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package protocol

// Kind identifies a Packet variant by its four-byte wire code.
type Kind uint8

const (
	KindQueryInfo Kind = iota
	KindDeviceInfo
	KindInfoAck
	KindKeepAlive
	KindClientNoOp
	KindUnknownDevice
	KindServerBusy
	KindBadProtocol
	KindGoodBye
	KindResetOptions
	KindSetOptions
	KindIncompatibleVersion
	KindGrabClipboard
	KindSetClipboard
	KindCursorEnter
	KindCursorLeave
	KindMouseMoveAbs
	KindMouseMove
	KindMouseDown
	KindMouseUp
	KindMouseWheel
	KindKeyDown
	KindKeyUp
	KindKeyRepeat
	KindUnknown
)

// wire codes, the ASCII four-byte command identifiers on the wire.
const (
	codeQINF = "QINF"
	codeDINF = "DINF"
	codeCIAK = "CIAK"
	codeCALV = "CALV"
	codeCNOP = "CNOP"
	codeEUNK = "EUNK"
	codeEBSY = "EBSY"
	codeEBAD = "EBAD"
	codeCBYE = "CBYE"
	codeCROP = "CROP"
	codeDSOP = "DSOP"
	codeEICV = "EICV"
	codeCCLP = "CCLP"
	codeDCLP = "DCLP"
	codeCINN = "CINN"
	codeCOUT = "COUT"
	codeDMMV = "DMMV"
	codeDMRM = "DMRM"
	codeDMDN = "DMDN"
	codeDMUP = "DMUP"
	codeDMWM = "DMWM"
	codeDKDN = "DKDN"
	codeDKUP = "DKUP"
	codeDKRP = "DKRP"
)

// Packet is a tagged union of every Barrier message this client can send
// or receive. Only the fields relevant to Kind are populated; the rest
// are zero. Unknown codes are preserved in RawCode for diagnostics.
type Packet struct {
	Kind Kind

	// DeviceInfo
	X, Y, W, H, MX, MY uint16

	// InfoAck, KeepAlive, ClientNoOp, CursorLeave, GoodBye, etc. carry no
	// fields beyond Kind.

	// IncompatibleVersion
	Major, Minor uint16

	// GrabClipboard, SetClipboard
	ClipboardID  uint8
	SeqNum       uint32
	ClipboardData []byte // nil unless a payload was assembled (SetClipboard)

	// CursorEnter
	Mask uint16

	// MouseMove (relative, signed)
	DX, DY int16

	// MouseWheel (units of 120, signed)
	WheelX, WheelY int16

	// MouseDown/Up
	Button int8

	// KeyDown/Up/Repeat
	Key        uint16
	KeyMask    uint16
	KeyButton  uint16
	RepeatCount uint16

	// Unknown
	RawCode [4]byte
}

// QueryInfo builds a QINF packet.
func QueryInfo() Packet { return Packet{Kind: KindQueryInfo} }

// DeviceInfo builds a DINF packet describing the screen geometry (on
// the wire, a reserved u16 that is always 0 sits between h and mx).
func DeviceInfo(x, y, w, h, mx, my uint16) Packet {
	return Packet{Kind: KindDeviceInfo, X: x, Y: y, W: w, H: h, MX: mx, MY: my}
}

// InfoAck builds a CIAK packet.
func InfoAck() Packet { return Packet{Kind: KindInfoAck} }

// KeepAlive builds a CALV packet.
func KeepAlive() Packet { return Packet{Kind: KindKeepAlive} }

// WritePacket encodes p onto w, computing and emitting its length
// prefix. Only QINF, CIAK, CALV, CNOP and DINF are supported here; any
// other Kind returns ErrFormat. The handshake reply is not a Packet and
// is written by WriteHandshakeReply.
func WritePacket(w *Writer, p Packet) error {
	switch p.Kind {
	case KindQueryInfo:
		return writeFixed(w, codeQINF, nil)
	case KindInfoAck:
		return writeFixed(w, codeCIAK, nil)
	case KindKeepAlive:
		return writeFixed(w, codeCALV, nil)
	case KindClientNoOp:
		return writeFixed(w, codeCNOP, nil)
	case KindDeviceInfo:
		body := make([]byte, 0, 14)
		body = appendU16(body, p.X)
		body = appendU16(body, p.Y)
		body = appendU16(body, p.W)
		body = appendU16(body, p.H)
		body = appendU16(body, 0)
		body = appendU16(body, p.MX)
		body = appendU16(body, p.MY)
		return writeFixed(w, codeDINF, body)
	default:
		return ErrFormat
	}
}

func appendU16(buf []byte, v uint16) []byte {
	return append(buf, byte(v>>8), byte(v))
}

func writeFixed(w *Writer, code string, body []byte) error {
	if err := w.WriteU32(uint32(4 + len(body))); err != nil {
		return err
	}
	if err := w.WriteBytes([]byte(code)); err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return w.WriteBytes(body)
}

// WriteHandshakeReply emits the client's handshake reply: the literal
// "Barrier", protocol major.minor, and the length-prefixed screen name.
// Length is computed as 7 + 2 + 2 + 4 + len(name).
func WriteHandshakeReply(w *Writer, major, minor uint16, screenName string) error {
	length := uint32(7 + 2 + 2 + 4 + len(screenName))
	if err := w.WriteU32(length); err != nil {
		return err
	}
	if err := w.WriteBytes([]byte("Barrier")); err != nil {
		return err
	}
	if err := w.WriteU16(major); err != nil {
		return err
	}
	if err := w.WriteU16(minor); err != nil {
		return err
	}
	return w.WriteString(screenName)
}
