// Input-event adapter between a Barrier session and a HID endpoint.
// https://github.com/hidbridge/barrierkvm
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package actuator

import (
	"github.com/hidbridge/barrierkvm/hid"
	"github.com/hidbridge/barrierkvm/hidpump"
)

// USBActuator implements Actuator by translating every event through
// a hid.Translator and enqueueing the resulting reports onto a report
// channel, typically backed by a hidpump.Pump.
type USBActuator struct {
	tr      *hid.Translator
	reports chan<- hidpump.Report

	width, height uint16
	x, y          uint16 // cached server-space position; MoveCursor is relative to this
}

// NewUSBActuator returns a USBActuator for a screen of the given
// logical size, enqueueing reports onto reports.
func NewUSBActuator(width, height uint16, flipWheel bool, reports chan<- hidpump.Report) *USBActuator {
	return &USBActuator{
		tr:      hid.New(width, height, flipWheel),
		reports: reports,
		width:   width,
		height:  height,
	}
}

func (a *USBActuator) enqueue(kind hid.ReportKind, data []byte) {
	a.reports <- hidpump.Report{Kind: kind, Data: data}
}

// Connected marks the server as reachable.
func (a *USBActuator) Connected() error {
	SetPhase(PhaseServerConnected)
	return nil
}

// Disconnected reverts to the server-unreachable phase and neutralizes
// all three HID devices, since a torn-down session leaves no
// guarantee about what was last held.
func (a *USBActuator) Disconnected() error {
	if err := a.Leave(); err != nil {
		return err
	}
	SetPhase(PhaseLinkUpServerDisconnected)
	return nil
}

// ScreenSize returns the logical screen size reported to the server.
func (a *USBActuator) ScreenSize() (uint16, uint16) {
	return a.width, a.height
}

// CursorPosition returns the cached last-known server-space position.
func (a *USBActuator) CursorPosition() (uint16, uint16) {
	return a.x, a.y
}

// SetCursorPosition updates the cached position and emits an absolute
// mouse report scaled to the HID logical range.
func (a *USBActuator) SetCursorPosition(x, y uint16) error {
	a.x, a.y = x, y
	kind, data := a.tr.SetCursorPosition(x, y)
	a.enqueue(kind, data)
	return nil
}

// MoveCursor applies a relative delta to the cached position — the
// server sometimes sends relative moves even to an
// absolute-positioning device — and emits the resulting absolute
// report.
func (a *USBActuator) MoveCursor(dx, dy int16) error {
	nx := clampAxis(int32(a.x)+int32(dx), a.width)
	ny := clampAxis(int32(a.y)+int32(dy), a.height)
	return a.SetCursorPosition(nx, ny)
}

func clampAxis(v int32, max uint16) uint16 {
	if v < 0 {
		return 0
	}
	if v > int32(max) {
		return max
	}
	return uint16(v)
}

// MouseDown sets the HID bit for button, if it maps to one of the
// three boot-mouse buttons.
func (a *USBActuator) MouseDown(button int8) error {
	if kind, data, ok := a.tr.MouseDown(button); ok {
		a.enqueue(kind, data)
	}
	return nil
}

// MouseUp clears the HID bit for button.
func (a *USBActuator) MouseUp(button int8) error {
	if kind, data, ok := a.tr.MouseUp(button); ok {
		a.enqueue(kind, data)
	}
	return nil
}

// MouseWheel emits a wheel/pan report for a scroll event.
func (a *USBActuator) MouseWheel(dx, dy int16) error {
	kind, data := a.tr.MouseWheel(dx, dy)
	a.enqueue(kind, data)
	return nil
}

// KeyDown translates and presses key through button's table slot.
func (a *USBActuator) KeyDown(key, mask, button uint16) error {
	if kind, data, ok := a.tr.KeyDown(key, button); ok {
		a.enqueue(kind, data)
	}
	return nil
}

// KeyUp releases whatever key was last pressed through button.
func (a *USBActuator) KeyUp(key, mask, button uint16) error {
	if kind, data, ok := a.tr.KeyUp(button); ok {
		a.enqueue(kind, data)
	}
	return nil
}

// KeyRepeat is intentionally a no-op: the host OS's own auto-repeat
// is used instead of re-emitting the key.
func (a *USBActuator) KeyRepeat(key, mask, button, count uint16) error {
	return nil
}

// Enter moves the cursor to (x, y), synthesizes key-down reports for
// every modifier bit set in mask, and marks the session active.
func (a *USBActuator) Enter(x, y uint16, mask uint16) error {
	if err := a.SetCursorPosition(x, y); err != nil {
		return err
	}
	for _, data := range a.tr.ModifierKeyDowns(mask) {
		a.enqueue(hid.ReportKeyboard, data)
	}
	SetPhase(PhaseActive)
	return nil
}

// Leave neutralizes all three logical devices and reverts the phase.
func (a *USBActuator) Leave() error {
	for _, data := range a.tr.Leave() {
		a.enqueue(hid.ReportKind(data[0]), data)
	}
	SetPhase(PhaseServerConnected)
	return nil
}

// SetClipboard stores the server's clipboard payload for later typing.
func (a *USBActuator) SetClipboard(data []byte) error {
	SetClipboard(data)
	return nil
}

// Jiggle nudges the cursor by one logical unit and back, enough to
// keep the host from judging the session idle.
func (a *USBActuator) Jiggle() error {
	x, y := a.CursorPosition()
	if err := a.MoveCursor(1, 0); err != nil {
		return err
	}
	return a.SetCursorPosition(x, y)
}

var _ Actuator = (*USBActuator)(nil)
