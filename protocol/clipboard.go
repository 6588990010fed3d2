// Barrier/Synergy wire protocol support.
// https://github.com/hidbridge/barrierkvm
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package protocol

import (
	"encoding/binary"
	"log"
)

// ClipboardStage is the state of the DCLP mark sequence:
//
//	None --m=1--> Mark1 --m=2--> Mark2(0) --m=2--> Mark2(i+1) --m=3--> Mark3 --m=1--> Mark1
//
// Only the chunk received while entering Mark2(0) is ever parsed;
// later Mark2 chunks (overflow) and the Mark3 terminator are read and
// discarded to preserve framing.
type ClipboardStage int

const (
	StageNone ClipboardStage = iota
	StageMark1
	StageMark2
	StageMark3
)

// Clipboard format ids carried in a Mark2(0) chunk. Text is the only
// one this client extracts; Html and Bitmap are recognized but
// skipped. Any other id is a format error.
const (
	formatText   = 0
	formatHTML   = 1
	formatBitmap = 2
)

// ClipboardAssembler tracks DCLP mark transitions across one TCP
// session and extracts the text payload carried in the Mark2(0) chunk.
type ClipboardAssembler struct {
	stage    ClipboardStage
	chunkIdx int
	capacity int
}

// NewClipboardAssembler returns an assembler that accumulates up to
// capacity bytes of clipboard text.
func NewClipboardAssembler(capacity int) *ClipboardAssembler {
	return &ClipboardAssembler{capacity: capacity}
}

// Feed processes one DCLP chunk. It returns non-nil data only when
// chunk completed the Mark2(0) payload and that payload contained a
// non-empty Text format; every other call returns (nil, nil) unless
// the chunk itself was malformed.
func (a *ClipboardAssembler) Feed(mark uint8, chunk []byte) ([]byte, error) {
	next, idx, ok := a.transition(mark)
	if !ok {
		log.Printf("clipboard: unexpected mark %d in stage %d, resetting", mark, a.stage)
		a.stage = StageNone
		a.chunkIdx = 0
		return nil, nil
	}
	a.stage = next
	a.chunkIdx = idx

	if next != StageMark2 || idx != 0 {
		return nil, nil
	}
	return parseClipboardPayload(chunk, a.capacity)
}

func (a *ClipboardAssembler) transition(mark uint8) (ClipboardStage, int, bool) {
	switch a.stage {
	case StageNone:
		if mark == 1 {
			return StageMark1, 0, true
		}
	case StageMark1:
		if mark == 2 {
			return StageMark2, 0, true
		}
	case StageMark2:
		switch mark {
		case 2:
			return StageMark2, a.chunkIdx + 1, true
		case 3:
			return StageMark3, 0, true
		}
	case StageMark3:
		if mark == 1 {
			return StageMark1, 0, true
		}
	}
	return StageNone, 0, false
}

// parseClipboardPayload decodes a Mark2(0) chunk: u32 total size
// (ignored), u32 format count, then per format a u32 id and u32
// length. Text (format 0) bytes are accumulated up to capacity; Html
// and Bitmap are recognized but skipped. Any other format id is
// ErrFormat.
func parseClipboardPayload(chunk []byte, capacity int) ([]byte, error) {
	if len(chunk) < 8 {
		return nil, ErrFormat
	}
	pos := 4 // skip total size
	numFormats := binary.BigEndian.Uint32(chunk[pos:])
	pos += 4

	var text []byte
	for i := uint32(0); i < numFormats; i++ {
		if pos+8 > len(chunk) {
			return nil, ErrFormat
		}
		formatID := binary.BigEndian.Uint32(chunk[pos:])
		pos += 4
		length := int(binary.BigEndian.Uint32(chunk[pos:]))
		pos += 4
		if pos+length > len(chunk) {
			return nil, ErrFormat
		}

		switch formatID {
		case formatText, formatHTML, formatBitmap:
		default:
			return nil, ErrFormat
		}

		if formatID == formatText {
			take := length
			if room := capacity - len(text); take > room {
				take = room
			}
			if take > 0 {
				text = append(text, chunk[pos:pos+take]...)
			}
		}
		pos += length
	}

	if len(text) == 0 {
		return nil, nil
	}
	return text, nil
}
