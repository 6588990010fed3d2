// Input-event adapter between a Barrier session and a HID endpoint.
// https://github.com/hidbridge/barrierkvm
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package actuator

// Actuator is the capability interface the session engine drives.
// Every method other than the ScreenSize and CursorPosition getters is
// fallible, because it may have to enqueue a report onto a bounded
// channel or otherwise touch shared state; none of them block on the
// network.
type Actuator interface {
	Connected() error
	Disconnected() error

	ScreenSize() (width, height uint16)
	CursorPosition() (x, y uint16)
	SetCursorPosition(x, y uint16) error
	MoveCursor(dx, dy int16) error

	MouseDown(button int8) error
	MouseUp(button int8) error
	MouseWheel(dx, dy int16) error

	KeyDown(key, mask, button uint16) error
	KeyUp(key, mask, button uint16) error
	KeyRepeat(key, mask, button, count uint16) error

	Enter(x, y uint16, mask uint16) error
	Leave() error

	// SetClipboard is optional; implementations that don't support
	// typing the clipboard into the host may no-op.
	SetClipboard(data []byte) error

	// Jiggle is optional; it exists to keep the host from sleeping.
	Jiggle() error
}
