// USB-HID boot-compatible report translation.
// https://github.com/hidbridge/barrierkvm
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package hid

// serverButtonSlots bounds the Barrier button numbers this client
// tracks; button values at or beyond this are out of range and
// ignored.
const serverButtonSlots = 512

// Translator owns the three HID report buffers and the mapping from
// Barrier "button" identifiers to the key last pressed through them,
// translating every input event into wire-ready report bytes.
type Translator struct {
	kb       keyboardReport
	mouse    absMouseReport
	consumer consumerReport

	serverButtons [serverButtonSlots]uint16

	width, height uint16
	flipWheel     bool
}

// New returns a Translator scaling absolute coordinates against a
// screen of the given logical size.
func New(width, height uint16, flipWheel bool) *Translator {
	return &Translator{width: width, height: height, flipWheel: flipWheel}
}

// ScaleAxis maps a server-space coordinate x on an axis of length w
// into the HID absolute range [0, 0x7FFF], rounding up so that the
// maximum coordinate always reaches 0x7FFF.
func ScaleAxis(x, w uint16) uint16 {
	if w == 0 {
		return 0
	}
	v := (uint32(x)*0x7FFF + uint32(w) - 1) / uint32(w)
	if v > 0x7FFF {
		v = 0x7FFF
	}
	return uint16(v)
}

// SetCursorPosition scales (x, y) against the translator's configured
// screen size and returns the resulting mouse report.
func (t *Translator) SetCursorPosition(x, y uint16) (ReportKind, []byte) {
	t.mouse.x = ScaleAxis(x, t.width)
	t.mouse.y = ScaleAxis(y, t.height)
	return ReportMouse, t.mouse.bytes()
}

// KeyDown records button's key, translates it, and returns the
// updated keyboard or consumer report. ok is false if the key code
// has no HID mapping.
func (t *Translator) KeyDown(key, button uint16) (kind ReportKind, data []byte, ok bool) {
	if int(button) < serverButtonSlots {
		t.serverButtons[button] = key
	}
	m := lookup(key)
	switch m.action {
	case actionKey:
		t.kb.press(m.usage)
		return ReportKeyboard, t.kb.bytes(), true
	case actionConsumer:
		t.consumer.usage = m.usage
		return ReportConsumer, t.consumer.bytes(), true
	default:
		return 0, nil, false
	}
}

// KeyUp releases the key last recorded for button and clears the table
// entry. The key code carried by the key-up event is not consulted,
// since the server repeats the button on key-up but not always the
// same key code.
func (t *Translator) KeyUp(button uint16) (kind ReportKind, data []byte, ok bool) {
	var key uint16
	if int(button) < serverButtonSlots {
		key = t.serverButtons[button]
		t.serverButtons[button] = 0
	}
	m := lookup(key)
	switch m.action {
	case actionKey:
		t.kb.release(m.usage)
		return ReportKeyboard, t.kb.bytes(), true
	case actionConsumer:
		t.consumer.clear()
		return ReportConsumer, t.consumer.bytes(), true
	default:
		return 0, nil, false
	}
}

// ModifierKeyDowns synthesizes a keyboard report for each modifier bit
// set in mask, in DecomposeModifiers' deterministic order. Used on
// CursorEnter to replay modifiers the server reports as already held.
func (t *Translator) ModifierKeyDowns(mask uint16) [][]byte {
	usages := DecomposeModifiers(mask)
	reports := make([][]byte, 0, len(usages))
	for _, u := range usages {
		t.kb.press(u)
		reports = append(reports, t.kb.bytes())
	}
	return reports
}

// MouseDown sets the HID button bit for a Synergy button number. ok is
// false for buttons beyond the three the boot mouse report supports.
func (t *Translator) MouseDown(button int8) (kind ReportKind, data []byte, ok bool) {
	bit, ok := MouseButtonUsage(button)
	if !ok {
		return 0, nil, false
	}
	t.mouse.buttons |= 1 << bit
	return ReportMouse, t.mouse.bytes(), true
}

// MouseUp clears the HID button bit for a Synergy button number.
func (t *Translator) MouseUp(button int8) (kind ReportKind, data []byte, ok bool) {
	bit, ok := MouseButtonUsage(button)
	if !ok {
		return 0, nil, false
	}
	t.mouse.buttons &^= 1 << bit
	return ReportMouse, t.mouse.bytes(), true
}

// wheelDelta converts a Barrier wheel delta (units of 120) into a
// clamped signed HID byte, negating it if flipWheel is set.
func wheelDelta(d int16, flip bool) int8 {
	v := int32(d) / 120
	if flip {
		v = -v
	}
	if v > 127 {
		v = 127
	}
	if v < -128 {
		v = -128
	}
	return int8(v)
}

// MouseWheel translates Barrier's (x=horizontal, y=vertical) wheel
// deltas onto HID's (wheel=vertical, pan=horizontal) axes.
func (t *Translator) MouseWheel(dx, dy int16) (ReportKind, []byte) {
	t.mouse.wheel = wheelDelta(dy, t.flipWheel)
	t.mouse.pan = wheelDelta(dx, t.flipWheel)
	bytes := t.mouse.bytes()
	// Wheel/pan deltas are not sticky state like position or buttons;
	// clear them immediately so the next unrelated mouse report
	// doesn't repeat a stale scroll.
	t.mouse.wheel = 0
	t.mouse.pan = 0
	return ReportMouse, bytes
}

// PressRaw sets a keyboard usage directly, bypassing Barrier button
// bookkeeping. Used by clipboard typing, which injects HID usages
// that never arrived as DKDN/DKUP packets.
func (t *Translator) PressRaw(usage uint16) []byte {
	t.kb.press(usage)
	return t.kb.bytes()
}

// ReleaseRaw clears a keyboard usage set by PressRaw.
func (t *Translator) ReleaseRaw(usage uint16) []byte {
	t.kb.release(usage)
	return t.kb.bytes()
}

// Leave neutralizes all three logical devices and returns one clear
// report per device, in keyboard/mouse/consumer order.
func (t *Translator) Leave() [][]byte {
	t.kb.clear()
	t.mouse.clear()
	t.consumer.clear()
	return [][]byte{
		Clear(ReportKeyboard),
		Clear(ReportMouse),
		Clear(ReportConsumer),
	}
}
