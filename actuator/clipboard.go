// Input-event adapter between a Barrier session and a HID endpoint.
// https://github.com/hidbridge/barrierkvm
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package actuator

import (
	"sync"
	"time"

	"github.com/hidbridge/barrierkvm/hid"
)

// ClipboardCapacity bounds how much of an incoming SetClipboard
// payload is retained; it matches the assembler capacity in the
// protocol package.
const ClipboardCapacity = 4096

// KeyPressInterval is the pacing between synthesized keystrokes when
// typing the clipboard into the host, long enough for a typical HID
// keyboard driver to register each transition.
const KeyPressInterval = 5 * time.Millisecond

// clipboardSlot is the global clipboard storage: a mutex-guarded
// byte slice swapped on SetClipboard and read by TypeClipboard. It is
// module-scoped rather than an ambient singleton constructed on first
// use, per the no-global-state-by-accident rule this package follows.
type clipboardSlot struct {
	mu   sync.Mutex
	data []byte
}

var clipboard clipboardSlot

// SetClipboard stores data (truncated to ClipboardCapacity) as the
// current clipboard contents.
func SetClipboard(data []byte) {
	if len(data) > ClipboardCapacity {
		data = data[:ClipboardCapacity]
	}
	cp := append([]byte(nil), data...)
	clipboard.mu.Lock()
	clipboard.data = cp
	clipboard.mu.Unlock()
}

// Clipboard returns a copy of the current clipboard contents.
func Clipboard() []byte {
	clipboard.mu.Lock()
	defer clipboard.mu.Unlock()
	return append([]byte(nil), clipboard.data...)
}

// KeystrokeSink receives each HID report produced while typing.
type KeystrokeSink func(data []byte)

// TypeClipboard renders the current clipboard contents as a sequence
// of key down/up reports through tr, pacing each keystroke by
// KeyPressInterval via sleep, and delivering every resulting report
// to sink.
func TypeClipboard(tr *hid.Translator, sink KeystrokeSink, sleep func(time.Duration)) {
	for _, e := range hid.TypeSequence(Clipboard()) {
		if e.Shift {
			sink(tr.PressRaw(uint16(hid.UsageLeftShift)))
			sleep(KeyPressInterval)
		}
		sink(tr.PressRaw(uint16(e.Usage)))
		sleep(KeyPressInterval)
		sink(tr.ReleaseRaw(uint16(e.Usage)))
		sleep(KeyPressInterval)
		if e.Shift {
			sink(tr.ReleaseRaw(uint16(hid.UsageLeftShift)))
			sleep(KeyPressInterval)
		}
	}
}
