// Hardware and software watchdog support.
// https://github.com/hidbridge/barrierkvm
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package watchdog

import (
	"errors"
	"sync"
	"time"
)

// ErrNotArmed is returned by Feed, Stop, or Remaining when the
// watchdog has not been started.
var ErrNotArmed = errors.New("watchdog: not armed")

// onExpire is invoked when a Software watchdog's timer fires without
// an intervening Feed, in place of the hardware reset a bare-metal
// build would trigger. It is supplied by the caller of NewSoftware;
// there is no default.
type onExpire func()

// Software is a timer-based Watchdog for host-OS embeddings that have
// no memory-mapped watchdog peripheral. Starvation calls onExpire
// instead of resetting the board.
type Software struct {
	mu       sync.Mutex
	timer    *time.Timer
	period   time.Duration
	expireAt time.Time
	onExpire onExpire
}

// NewSoftware returns a Software watchdog that calls onExpire on
// starvation. onExpire must not block.
func NewSoftware(onExpire onExpire) *Software {
	return &Software{onExpire: onExpire}
}

func (w *Software) Start(timeout time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.period = timeout
	w.expireAt = time.Now().Add(timeout)
	w.timer = time.AfterFunc(timeout, w.onExpire)
	return nil
}

func (w *Software) Feed() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer == nil {
		return ErrNotArmed
	}
	w.expireAt = time.Now().Add(w.period)
	w.timer.Reset(w.period)
	return nil
}

func (w *Software) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer == nil {
		return ErrNotArmed
	}
	w.timer.Stop()
	w.timer = nil
	return nil
}

func (w *Software) Remaining() (time.Duration, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer == nil {
		return 0, ErrNotArmed
	}
	return time.Until(w.expireAt), nil
}
