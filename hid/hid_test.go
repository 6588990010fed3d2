package hid

import (
	"bytes"
	"testing"
)

func TestScaleAxisAbsoluteMove(t *testing.T) {
	// w=1920,h=1080, x=960,y=540 -> 0x4000 on both axes.
	if got := ScaleAxis(960, 1920); got != 0x4000 {
		t.Fatalf("ScaleAxis(960,1920) = %#x, want 0x4000", got)
	}
	if got := ScaleAxis(540, 1080); got != 0x4000 {
		t.Fatalf("ScaleAxis(540,1080) = %#x, want 0x4000", got)
	}
}

func TestScaleAxisProperty(t *testing.T) {
	widths := []uint16{1, 2, 7, 1920, 4096, 65535}
	for _, w := range widths {
		for _, x := range []uint16{0, 1, w / 2, w} {
			got := ScaleAxis(x, w)
			want := uint32(uint32(x)*0x7FFF+uint32(w)-1) / uint32(w)
			if want > 0x7FFF {
				want = 0x7FFF
			}
			if uint32(got) != want {
				t.Fatalf("ScaleAxis(%d,%d) = %#x, want %#x", x, w, got, want)
			}
			if got > 0x7FFF {
				t.Fatalf("ScaleAxis(%d,%d) = %#x exceeds 0x7FFF", x, w, got)
			}
		}
	}
}

func TestKeyADownUp(t *testing.T) {
	tr := New(1920, 1080, false)

	kind, data, ok := tr.KeyDown(0x61, 30)
	if !ok || kind != ReportKeyboard {
		t.Fatalf("KeyDown: ok=%v kind=%v", ok, kind)
	}
	want := []byte{0x01, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00}
	if !bytes.Equal(data, want) {
		t.Fatalf("KeyDown bytes = % x, want % x", data, want)
	}

	kind, data, ok = tr.KeyUp(30)
	if !ok || kind != ReportKeyboard {
		t.Fatalf("KeyUp: ok=%v kind=%v", ok, kind)
	}
	want = []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	if !bytes.Equal(data, want) {
		t.Fatalf("KeyUp bytes = % x, want % x", data, want)
	}
}

func TestServerButtonTableReleasesKeyNotCurrentKey(t *testing.T) {
	tr := New(1920, 1080, false)
	tr.KeyDown(0x61, 30) // press 'a' through button 30
	// server repeats button 30 on key-up, but with a different (or
	// zeroed) key code than the press.
	_, data, ok := tr.KeyUp(30)
	if !ok {
		t.Fatalf("KeyUp not ok")
	}
	if !(&keyboardReport{}).isEmptyBytes(data) {
		t.Fatalf("expected empty keyboard report after release, got % x", data)
	}
	if tr.serverButtons[30] != 0 {
		t.Fatalf("serverButtons[30] = %d, want cleared", tr.serverButtons[30])
	}
}

// isEmptyBytes is a test helper checking a keyboard report's wire
// bytes carry no pressed modifier or key slot.
func (r *keyboardReport) isEmptyBytes(data []byte) bool {
	if len(data) != 9 {
		return false
	}
	if data[1] != 0 {
		return false
	}
	for _, b := range data[3:] {
		if b != 0 {
			return false
		}
	}
	return true
}

func TestModifierDecompositionShift(t *testing.T) {
	// mask=0x0002 (left-shift bit).
	usages := DecomposeModifiers(0x0002)
	if len(usages) != 1 || usages[0] != UsageLeftShift {
		t.Fatalf("DecomposeModifiers(0x0002) = %v, want [UsageLeftShift]", usages)
	}
}

func TestModifierDecompositionDeterministicOrder(t *testing.T) {
	usages := DecomposeModifiers(0x000F) // LeftControl|LeftShift|LeftAlt|LeftGUI
	want := []uint16{UsageLeftControl, UsageLeftShift, UsageLeftAlt, UsageLeftGUI}
	if len(usages) != len(want) {
		t.Fatalf("len = %d, want %d", len(usages), len(want))
	}
	for i := range want {
		if usages[i] != want[i] {
			t.Fatalf("usages[%d] = %#x, want %#x", i, usages[i], want[i])
		}
	}
}

func TestWheelClamping(t *testing.T) {
	cases := []struct {
		in   int16
		flip bool
		want int8
	}{
		{120, false, 1},
		{-120, false, -1},
		{120 * 200, false, 127},
		{-120 * 200, false, -128},
		{120, true, -1},
	}
	for _, c := range cases {
		got := wheelDelta(c.in, c.flip)
		if got != c.want {
			t.Fatalf("wheelDelta(%d,%v) = %d, want %d", c.in, c.flip, got, c.want)
		}
	}
}

func TestKeyboardOverflowDiscardsNewest(t *testing.T) {
	r := &keyboardReport{}
	for i := byte(0x04); i < 0x04+6; i++ {
		r.press(uint16(i))
	}
	r.press(0x20) // 7th distinct key: discarded, not replacing an existing slot.
	for _, k := range r.keys {
		if k == 0x20 {
			t.Fatalf("7th key was admitted, want discarded")
		}
	}
}

func TestLeaveClearsAllThreeDevices(t *testing.T) {
	tr := New(100, 100, false)
	tr.KeyDown(0x61, 1)
	tr.MouseDown(1)
	reports := tr.Leave()
	if len(reports) != 3 {
		t.Fatalf("len(reports) = %d, want 3", len(reports))
	}
	for i, kind := range []ReportKind{ReportKeyboard, ReportMouse, ReportConsumer} {
		if reports[i][0] != byte(kind) {
			t.Fatalf("reports[%d][0] = %d, want %d", i, reports[i][0], kind)
		}
		for _, b := range reports[i][1:] {
			if b != 0 {
				t.Fatalf("reports[%d] not all-zero after ID: % x", i, reports[i])
			}
		}
	}
}
