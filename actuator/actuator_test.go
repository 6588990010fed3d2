package actuator

import (
	"testing"
	"time"

	"github.com/hidbridge/barrierkvm/hid"
	"github.com/hidbridge/barrierkvm/hidpump"
)

func TestUSBActuatorEnterSetsPhaseActive(t *testing.T) {
	reports := make(chan hidpump.Report, 32)
	a := NewUSBActuator(1920, 1080, false, reports)

	Init(1, 0, 0, 0)
	if err := a.Enter(100, 200, 0x0002); err != nil {
		t.Fatalf("Enter: %v", err)
	}
	if Current().Phase != PhaseActive {
		t.Fatalf("Phase = %v, want PhaseActive", Current().Phase)
	}

	// Position report, then one modifier key-down report (shift).
	var kinds []hid.ReportKind
	for i := 0; i < 2; i++ {
		select {
		case r := <-reports:
			kinds = append(kinds, r.Kind)
		default:
			t.Fatalf("expected %d reports, got %d", 2, i)
		}
	}
	if kinds[0] != hid.ReportMouse || kinds[1] != hid.ReportKeyboard {
		t.Fatalf("kinds = %v", kinds)
	}
}

func TestUSBActuatorLeaveClearsAllDevices(t *testing.T) {
	reports := make(chan hidpump.Report, 32)
	a := NewUSBActuator(1920, 1080, false, reports)
	a.KeyDown(0x61, 0, 1)
	<-reports

	if err := a.Leave(); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	for i := 0; i < 3; i++ {
		r := <-reports
		for _, b := range r.Data[1:] {
			if b != 0 {
				t.Fatalf("report %d not cleared: % x", i, r.Data)
			}
		}
	}
}

func TestUSBActuatorMoveCursorRelative(t *testing.T) {
	reports := make(chan hidpump.Report, 32)
	a := NewUSBActuator(100, 100, false, reports)
	a.SetCursorPosition(50, 50)
	<-reports

	a.MoveCursor(10, -5)
	x, y := a.CursorPosition()
	if x != 60 || y != 45 {
		t.Fatalf("CursorPosition = (%d,%d), want (60,45)", x, y)
	}
}

func TestClipboardSetAndRetrieve(t *testing.T) {
	SetClipboard([]byte("hi"))
	if got := string(Clipboard()); got != "hi" {
		t.Fatalf("Clipboard() = %q, want %q", got, "hi")
	}
}

func TestTypeClipboardEmitsPressRelease(t *testing.T) {
	tr := hid.New(100, 100, false)
	SetClipboard([]byte("a"))

	var reports [][]byte
	TypeClipboard(tr, func(data []byte) {
		reports = append(reports, data)
	}, func(time.Duration) {})

	// 'a' needs no shift: one press report (key slot set) and one
	// release report (key slot cleared).
	if len(reports) != 2 {
		t.Fatalf("len(reports) = %d, want 2", len(reports))
	}
	if reports[0][3] != 0x04 {
		t.Fatalf("press report = % x, want usage 0x04 in slot 0", reports[0])
	}
	for _, b := range reports[1][1:] {
		if b != 0 {
			t.Fatalf("release report not cleared: % x", reports[1])
		}
	}
}
