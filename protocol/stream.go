// Barrier/Synergy wire protocol support.
// https://github.com/hidbridge/barrierkvm
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package protocol

import "fmt"

// budget tracks how many of a packet's declared body bytes remain
// unconsumed, so ReadPacket can discard any trailing extension fields
// without losing frame alignment.
type budget struct {
	r         *Reader
	remaining int
}

func (b *budget) u8() (uint8, error) {
	if b.remaining < 1 {
		return 0, ErrInsufficientData
	}
	v, err := b.r.ReadU8()
	b.remaining--
	return v, err
}

func (b *budget) i8() (int8, error) {
	v, err := b.u8()
	return int8(v), err
}

func (b *budget) u16() (uint16, error) {
	if b.remaining < 2 {
		return 0, ErrInsufficientData
	}
	v, err := b.r.ReadU16()
	b.remaining -= 2
	return v, err
}

func (b *budget) i16() (int16, error) {
	v, err := b.u16()
	return int16(v), err
}

func (b *budget) u32() (uint32, error) {
	if b.remaining < 4 {
		return 0, ErrInsufficientData
	}
	v, err := b.r.ReadU32()
	b.remaining -= 4
	return v, err
}

func (b *budget) bytes(n int) ([]byte, error) {
	if n > b.remaining {
		return nil, ErrInsufficientData
	}
	v, err := b.r.ReadBytesExact(n)
	b.remaining -= n
	return v, err
}

func (b *budget) discard(n int) error {
	if n > b.remaining {
		return ErrInsufficientData
	}
	if err := b.r.DiscardExact(n); err != nil {
		return err
	}
	b.remaining -= n
	return nil
}

func (b *budget) discardRest() error {
	return b.discard(b.remaining)
}

// ReadPacket reads one length-prefixed Barrier message from r: the u32
// length, the four-byte command code, and a body dispatched by code.
// Any bytes the per-variant parser leaves unconsumed, up to the
// declared length, are discarded so unknown trailing fields never
// desynchronize the stream.
func ReadPacket(r *Reader, asm *ClipboardAssembler) (Packet, error) {
	length, err := r.ReadU32()
	if err != nil {
		return Packet{}, err
	}
	if length < 4 {
		// Still must consume the short payload to keep framing intact
		// before reporting the error.
		if length > 0 {
			if err := r.DiscardExact(int(length)); err != nil {
				return Packet{}, err
			}
		}
		return Packet{}, ErrPacketTooSmall
	}

	codeBytes, err := r.ReadBytesExact(4)
	if err != nil {
		return Packet{}, err
	}
	code := string(codeBytes)
	b := &budget{r: r, remaining: int(length) - 4}

	p, err := parseBody(b, code, asm)
	if derr := b.discardRest(); derr != nil && err == nil {
		err = derr
	}
	return p, err
}

func parseBody(b *budget, code string, asm *ClipboardAssembler) (Packet, error) {
	switch code {
	case codeQINF:
		return Packet{Kind: KindQueryInfo}, nil
	case codeCIAK:
		return Packet{Kind: KindInfoAck}, nil
	case codeCALV:
		return Packet{Kind: KindKeepAlive}, nil
	case codeCNOP:
		return Packet{Kind: KindClientNoOp}, nil
	case codeEUNK:
		return Packet{Kind: KindUnknownDevice}, nil
	case codeEBSY:
		return Packet{Kind: KindServerBusy}, nil
	case codeEBAD:
		return Packet{Kind: KindBadProtocol}, nil
	case codeCBYE:
		return Packet{Kind: KindGoodBye}, nil
	case codeCROP:
		return Packet{Kind: KindResetOptions}, nil
	case codeCOUT:
		return Packet{Kind: KindCursorLeave}, nil

	case codeDINF:
		x, err := b.u16()
		if err != nil {
			return Packet{}, err
		}
		y, err := b.u16()
		if err != nil {
			return Packet{}, err
		}
		w, err := b.u16()
		if err != nil {
			return Packet{}, err
		}
		h, err := b.u16()
		if err != nil {
			return Packet{}, err
		}
		if _, err := b.u16(); err != nil { // reserved
			return Packet{}, err
		}
		mx, err := b.u16()
		if err != nil {
			return Packet{}, err
		}
		my, err := b.u16()
		if err != nil {
			return Packet{}, err
		}
		return Packet{Kind: KindDeviceInfo, X: x, Y: y, W: w, H: h, MX: mx, MY: my}, nil

	case codeDSOP:
		for b.remaining >= 8 {
			if _, err := b.bytes(4); err != nil {
				return Packet{}, err
			}
			if _, err := b.u32(); err != nil {
				return Packet{}, err
			}
		}
		return Packet{Kind: KindSetOptions}, nil

	case codeEICV:
		major, err := b.u16()
		if err != nil {
			return Packet{}, err
		}
		minor, err := b.u16()
		if err != nil {
			return Packet{}, err
		}
		return Packet{Kind: KindIncompatibleVersion, Major: major, Minor: minor}, nil

	case codeCCLP:
		id, err := b.u8()
		if err != nil {
			return Packet{}, err
		}
		seq, err := b.u32()
		if err != nil {
			return Packet{}, err
		}
		return Packet{Kind: KindGrabClipboard, ClipboardID: id, SeqNum: seq}, nil

	case codeDCLP:
		id, err := b.u8()
		if err != nil {
			return Packet{}, err
		}
		seq, err := b.u32()
		if err != nil {
			return Packet{}, err
		}
		mark, err := b.u8()
		if err != nil {
			return Packet{}, err
		}
		chunk, err := b.bytes(b.remaining)
		if err != nil {
			return Packet{}, err
		}
		data, err := asm.Feed(mark, chunk)
		if err != nil {
			return Packet{}, err
		}
		p := Packet{Kind: KindSetClipboard, ClipboardID: id, SeqNum: seq}
		if data != nil {
			p.ClipboardData = data
		}
		return p, nil

	case codeCINN:
		x, err := b.u16()
		if err != nil {
			return Packet{}, err
		}
		y, err := b.u16()
		if err != nil {
			return Packet{}, err
		}
		if _, err := b.u32(); err != nil { // seq
			return Packet{}, err
		}
		mask, err := b.u16()
		if err != nil {
			return Packet{}, err
		}
		return Packet{Kind: KindCursorEnter, X: x, Y: y, Mask: mask}, nil

	case codeDMMV:
		x, err := b.u16()
		if err != nil {
			return Packet{}, err
		}
		y, err := b.u16()
		if err != nil {
			return Packet{}, err
		}
		return Packet{Kind: KindMouseMoveAbs, X: x, Y: y}, nil

	case codeDMRM:
		dx, err := b.i16()
		if err != nil {
			return Packet{}, err
		}
		dy, err := b.i16()
		if err != nil {
			return Packet{}, err
		}
		return Packet{Kind: KindMouseMove, DX: dx, DY: dy}, nil

	case codeDMDN:
		id, err := b.i8()
		if err != nil {
			return Packet{}, err
		}
		return Packet{Kind: KindMouseDown, Button: id}, nil

	case codeDMUP:
		id, err := b.i8()
		if err != nil {
			return Packet{}, err
		}
		return Packet{Kind: KindMouseUp, Button: id}, nil

	case codeDMWM:
		dx, err := b.i16()
		if err != nil {
			return Packet{}, err
		}
		dy, err := b.i16()
		if err != nil {
			return Packet{}, err
		}
		return Packet{Kind: KindMouseWheel, WheelX: dx, WheelY: dy}, nil

	case codeDKDN:
		key, err := b.u16()
		if err != nil {
			return Packet{}, err
		}
		mask, err := b.u16()
		if err != nil {
			return Packet{}, err
		}
		button, err := b.u16()
		if err != nil {
			return Packet{}, err
		}
		return Packet{Kind: KindKeyDown, Key: key, KeyMask: mask, KeyButton: button}, nil

	case codeDKUP:
		key, err := b.u16()
		if err != nil {
			return Packet{}, err
		}
		mask, err := b.u16()
		if err != nil {
			return Packet{}, err
		}
		button, err := b.u16()
		if err != nil {
			return Packet{}, err
		}
		return Packet{Kind: KindKeyUp, Key: key, KeyMask: mask, KeyButton: button}, nil

	case codeDKRP:
		// Wire order is key, mask, count, button — count comes before
		// button here, unlike DKDN/DKUP.
		key, err := b.u16()
		if err != nil {
			return Packet{}, err
		}
		mask, err := b.u16()
		if err != nil {
			return Packet{}, err
		}
		count, err := b.u16()
		if err != nil {
			return Packet{}, err
		}
		button, err := b.u16()
		if err != nil {
			return Packet{}, err
		}
		return Packet{Kind: KindKeyRepeat, Key: key, KeyMask: mask, RepeatCount: count, KeyButton: button}, nil

	default:
		var raw [4]byte
		copy(raw[:], code)
		return Packet{Kind: KindUnknown, RawCode: raw}, nil
	}
}

func (p Packet) String() string {
	return fmt.Sprintf("Packet{Kind:%d}", p.Kind)
}
