package hidpump

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hidbridge/barrierkvm/hid"
)

type fakeWriter struct {
	mu  sync.Mutex
	got [][]byte
}

func (w *fakeWriter) WriteReport(data []byte, deadline time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	cp := append([]byte(nil), data...)
	w.got = append(w.got, cp)
	return nil
}

func TestPumpPreservesFIFOOrder(t *testing.T) {
	w := &fakeWriter{}
	p := New(w, 8, 50*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	for i := 0; i < 5; i++ {
		p.Reports() <- Report{Kind: hid.ReportKeyboard, Data: []byte{byte(i)}}
	}

	deadline := time.Now().Add(time.Second)
	for {
		w.mu.Lock()
		n := len(w.got)
		w.mu.Unlock()
		if n >= 5 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for reports, got %d/5", n)
		}
		time.Sleep(time.Millisecond)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for i, got := range w.got {
		if got[0] != byte(i) {
			t.Fatalf("got[%d] = %v, want first byte %d", i, got, i)
		}
	}
}

func TestClampWriteDeadline(t *testing.T) {
	cases := []struct {
		pollMs int
		want   time.Duration
	}{
		{1, 10 * time.Millisecond},
		{10, 30 * time.Millisecond},
		{1000, 100 * time.Millisecond},
	}
	for _, c := range cases {
		if got := ClampWriteDeadline(c.pollMs); got != c.want {
			t.Fatalf("ClampWriteDeadline(%d) = %v, want %v", c.pollMs, got, c.want)
		}
	}
}

func TestPumpStallInvokesOnStall(t *testing.T) {
	stallErr := make(chan error, 1)
	w := stallingWriter{}
	p := New(w, 4, time.Millisecond, func(kind hid.ReportKind, err error) {
		stallErr <- err
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	p.Reports() <- Report{Kind: hid.ReportMouse, Data: []byte{0}}

	select {
	case err := <-stallErr:
		if err == nil {
			t.Fatalf("expected non-nil stall error")
		}
	case <-time.After(time.Second):
		t.Fatal("onStall was not invoked")
	}
}

type stallingWriter struct{}

func (stallingWriter) WriteReport(data []byte, deadline time.Time) error {
	return errAlwaysStalls
}

var errAlwaysStalls = &stallError{}

type stallError struct{}

func (*stallError) Error() string { return "endpoint stalled" }
