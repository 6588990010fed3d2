// USB-HID boot-compatible report translation.
// https://github.com/hidbridge/barrierkvm
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package hid

import "github.com/hidbridge/barrierkvm/bits"

// action classifies what a Synergy key code produces.
type action int

const (
	actionNone action = iota
	actionKey
	actionConsumer
)

// keyMapping is one entry of the Synergy key code → HID usage table.
type keyMapping struct {
	action action
	usage  uint16
}

// Modifier usage codes, the HID boot-keyboard modifier byte's eight
// bit positions (usage 0xE0..0xE7).
const (
	UsageLeftControl  uint16 = 0xE0
	UsageLeftShift    uint16 = 0xE1
	UsageLeftAlt      uint16 = 0xE2
	UsageLeftGUI      uint16 = 0xE3
	UsageRightControl uint16 = 0xE4
	UsageRightShift   uint16 = 0xE5
	UsageRightAlt     uint16 = 0xE6
	UsageRightGUI     uint16 = 0xE7
)

// extendedKeyTable holds the non-printable Synergy key codes this
// client recognizes: editing/navigation keys, function keys, and
// modifiers, keyed by the X11 keysym values Synergy/Barrier key codes
// are drawn from for anything outside the printable ASCII range.
var extendedKeyTable = map[uint16]keyMapping{
	0xFF08: {actionKey, 0x2A}, // BackSpace
	0xFF09: {actionKey, 0x2B}, // Tab
	0xFF0D: {actionKey, 0x28}, // Return
	0xFF1B: {actionKey, 0x29}, // Escape
	0xFFFF: {actionKey, 0x4C}, // Delete
	0xFF50: {actionKey, 0x4A}, // Home
	0xFF51: {actionKey, 0x50}, // Left
	0xFF52: {actionKey, 0x52}, // Up
	0xFF53: {actionKey, 0x4F}, // Right
	0xFF54: {actionKey, 0x51}, // Down
	0xFF55: {actionKey, 0x4B}, // Page_Up
	0xFF56: {actionKey, 0x4E}, // Page_Down
	0xFF57: {actionKey, 0x4D}, // End
	0xFF63: {actionKey, 0x49}, // Insert

	0xFFE1: {actionKey, UsageLeftShift},
	0xFFE2: {actionKey, UsageRightShift},
	0xFFE3: {actionKey, UsageLeftControl},
	0xFFE4: {actionKey, UsageRightControl},
	0xFFE5: {actionKey, 0x39}, // Caps_Lock
	0xFFE7: {actionKey, UsageLeftGUI},  // Meta_L
	0xFFE8: {actionKey, UsageRightGUI}, // Meta_R
	0xFFE9: {actionKey, UsageLeftAlt},
	0xFFEA: {actionKey, UsageRightAlt},
	0xFFEB: {actionKey, UsageLeftGUI},  // Super_L
	0xFFEC: {actionKey, UsageRightGUI}, // Super_R

	// F1..F12
	0xFFBE: {actionKey, 0x3A}, 0xFFBF: {actionKey, 0x3B},
	0xFFC0: {actionKey, 0x3C}, 0xFFC1: {actionKey, 0x3D},
	0xFFC2: {actionKey, 0x3E}, 0xFFC3: {actionKey, 0x3F},
	0xFFC4: {actionKey, 0x40}, 0xFFC5: {actionKey, 0x41},
	0xFFC6: {actionKey, 0x42}, 0xFFC7: {actionKey, 0x43},
	0xFFC8: {actionKey, 0x44}, 0xFFC9: {actionKey, 0x45},

	// Consumer-control media keys.
	0xE0AD: {actionConsumer, 0x00E2}, // Mute
	0xE0AE: {actionConsumer, 0x00EA}, // Volume Down
	0xE0AF: {actionConsumer, 0x00E9}, // Volume Up
}

// lookup translates a Synergy key code into the (action, usage) pair
// C5 needs to decide which logical report, if any, to update.
// Printable ASCII key codes share the same numeric value as the ASCII
// table used for clipboard typing, so they are resolved through it.
func lookup(key uint16) keyMapping {
	if key >= 0x20 && key <= 0x7E {
		if entry, ok := asciiTable[byte(key)]; ok {
			return keyMapping{actionKey, uint16(entry.Usage)}
		}
		return keyMapping{actionNone, 0}
	}
	if m, ok := extendedKeyTable[key]; ok {
		return m
	}
	return keyMapping{actionNone, 0}
}

// modifierBit pairs a CursorEnter mask bit position with the HID
// modifier usage it stands for.
type modifierBit struct {
	pos   int
	usage uint16
}

// modifierBits is this client's ordered mask-bit-to-modifier table.
// Bit positions are assigned low-to-high, left variant before right,
// in the conventional Ctrl/Shift/Alt/GUI order.
var modifierBits = []modifierBit{
	{0, UsageLeftControl},
	{1, UsageLeftShift},
	{2, UsageLeftAlt},
	{3, UsageLeftGUI},
	{4, UsageRightControl},
	{5, UsageRightShift},
	{6, UsageRightAlt},
	{7, UsageRightGUI},
}

// DecomposeModifiers returns, in a deterministic order, the HID
// modifier usages whose bit is set in mask.
func DecomposeModifiers(mask uint16) []uint16 {
	m := uint32(mask)
	var usages []uint16
	for _, b := range modifierBits {
		if bits.Get(&m, b.pos) {
			usages = append(usages, b.usage)
		}
	}
	return usages
}

// MouseButtonUsage maps a Synergy mouse button number to its HID
// button bit index, or ok=false for buttons beyond the three the boot
// mouse report supports.
func MouseButtonUsage(button int8) (bit uint, ok bool) {
	switch button {
	case 1:
		return 0, true
	case 2:
		return 1, true
	case 3:
		return 2, true
	default:
		return 0, false
	}
}
