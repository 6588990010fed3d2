// USB-HID boot-compatible report translation.
// https://github.com/hidbridge/barrierkvm
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package hid

// AsciiEntry is one printable-ASCII character's HID usage and whether
// it requires the Shift modifier on a standard US QWERTY layout.
type AsciiEntry struct {
	Usage byte
	Shift bool
}

// asciiTable covers the printable ASCII range 0x20..0x7E. It backs
// both clipboard typing and translation of Synergy key codes, which
// reuse ASCII values directly for ordinary printable characters.
var asciiTable = map[byte]AsciiEntry{
	' ': {0x2C, false},

	'a': {0x04, false}, 'b': {0x05, false}, 'c': {0x06, false}, 'd': {0x07, false},
	'e': {0x08, false}, 'f': {0x09, false}, 'g': {0x0A, false}, 'h': {0x0B, false},
	'i': {0x0C, false}, 'j': {0x0D, false}, 'k': {0x0E, false}, 'l': {0x0F, false},
	'm': {0x10, false}, 'n': {0x11, false}, 'o': {0x12, false}, 'p': {0x13, false},
	'q': {0x14, false}, 'r': {0x15, false}, 's': {0x16, false}, 't': {0x17, false},
	'u': {0x18, false}, 'v': {0x19, false}, 'w': {0x1A, false}, 'x': {0x1B, false},
	'y': {0x1C, false}, 'z': {0x1D, false},

	'A': {0x04, true}, 'B': {0x05, true}, 'C': {0x06, true}, 'D': {0x07, true},
	'E': {0x08, true}, 'F': {0x09, true}, 'G': {0x0A, true}, 'H': {0x0B, true},
	'I': {0x0C, true}, 'J': {0x0D, true}, 'K': {0x0E, true}, 'L': {0x0F, true},
	'M': {0x10, true}, 'N': {0x11, true}, 'O': {0x12, true}, 'P': {0x13, true},
	'Q': {0x14, true}, 'R': {0x15, true}, 'S': {0x16, true}, 'T': {0x17, true},
	'U': {0x18, true}, 'V': {0x19, true}, 'W': {0x1A, true}, 'X': {0x1B, true},
	'Y': {0x1C, true}, 'Z': {0x1D, true},

	'1': {0x1E, false}, '2': {0x1F, false}, '3': {0x20, false}, '4': {0x21, false},
	'5': {0x22, false}, '6': {0x23, false}, '7': {0x24, false}, '8': {0x25, false},
	'9': {0x26, false}, '0': {0x27, false},

	'!': {0x1E, true}, '@': {0x1F, true}, '#': {0x20, true}, '$': {0x21, true},
	'%': {0x22, true}, '^': {0x23, true}, '&': {0x24, true}, '*': {0x25, true},
	'(': {0x26, true}, ')': {0x27, true},

	'-': {0x2D, false}, '_': {0x2D, true},
	'=': {0x2E, false}, '+': {0x2E, true},
	'[': {0x2F, false}, '{': {0x2F, true},
	']': {0x30, false}, '}': {0x30, true},
	'\\': {0x31, false}, '|': {0x31, true},
	';': {0x33, false}, ':': {0x33, true},
	'\'': {0x34, false}, '"': {0x34, true},
	'`': {0x35, false}, '~': {0x35, true},
	',': {0x36, false}, '<': {0x36, true},
	'.': {0x37, false}, '>': {0x37, true},
	'/': {0x38, false}, '?': {0x38, true},
}

// TypeSequence returns, for each byte of text, the (usage, shift)
// pair needed to type it. Bytes outside the printable ASCII table are
// skipped.
func TypeSequence(text []byte) []AsciiEntry {
	seq := make([]AsciiEntry, 0, len(text))
	for _, c := range text {
		if e, ok := asciiTable[c]; ok {
			seq = append(seq, e)
		}
	}
	return seq
}
