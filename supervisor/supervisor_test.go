package supervisor

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hidbridge/barrierkvm/config"
	"github.com/hidbridge/barrierkvm/hid"
	"github.com/hidbridge/barrierkvm/hidpump"
)

type noopActuator struct{}

func (noopActuator) Connected() error                         { return nil }
func (noopActuator) Disconnected() error                      { return nil }
func (noopActuator) ScreenSize() (uint16, uint16)              { return 1920, 1080 }
func (noopActuator) CursorPosition() (uint16, uint16)          { return 0, 0 }
func (noopActuator) SetCursorPosition(x, y uint16) error       { return nil }
func (noopActuator) MoveCursor(dx, dy int16) error             { return nil }
func (noopActuator) MouseDown(button int8) error               { return nil }
func (noopActuator) MouseUp(button int8) error                 { return nil }
func (noopActuator) MouseWheel(dx, dy int16) error              { return nil }
func (noopActuator) KeyDown(key, mask, button uint16) error     { return nil }
func (noopActuator) KeyUp(key, mask, button uint16) error       { return nil }
func (noopActuator) KeyRepeat(key, mask, button, count uint16) error { return nil }
func (noopActuator) Enter(x, y uint16, mask uint16) error       { return nil }
func (noopActuator) Leave() error                               { return nil }
func (noopActuator) SetClipboard(data []byte) error             { return nil }
func (noopActuator) Jiggle() error                              { return nil }

type fakeWriter struct{}

func (fakeWriter) WriteReport(data []byte, deadline time.Time) error { return nil }

type fakeWatchdog struct {
	feeds int32
}

func (w *fakeWatchdog) Start(timeout time.Duration) error { return nil }
func (w *fakeWatchdog) Feed() error {
	atomic.AddInt32(&w.feeds, 1)
	return nil
}
func (w *fakeWatchdog) Stop() error                           { return nil }
func (w *fakeWatchdog) Remaining() (time.Duration, error)     { return 0, nil }

func TestSupervisorDialsUntilCanceledDespiteDialFailure(t *testing.T) {
	var attempts int32
	dial := func(addr string) (net.Conn, error) {
		atomic.AddInt32(&attempts, 1)
		return nil, errDialFailed
	}

	cfg := config.AppConfig{
		Server:          "127.0.0.1:0",
		ScreenName:      "scrn",
		JiggleInterval:  time.Second,
		WatchdogTimeout: time.Second,
	}

	pump := hidpump.New(fakeWriter{}, 4, 10*time.Millisecond, func(hid.ReportKind, error) {})
	wd := &fakeWatchdog{}
	sup := New(cfg, dial, noopActuator{}, pump, wd)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	// Run blocks until ctx is done. The short-lived context ends Run
	// during the first 5s backoff, so only the first dial attempt is
	// observed here.
	done := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(done)
	}()
	<-done

	if atomic.LoadInt32(&attempts) < 1 {
		t.Fatalf("attempts = %d, want >= 1", attempts)
	}
}

type dialError struct{ s string }

func (e *dialError) Error() string { return e.s }

var errDialFailed = &dialError{"dial failed"}
