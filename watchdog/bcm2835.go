// Hardware and software watchdog support.
// https://github.com/hidbridge/barrierkvm
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package watchdog

import (
	"errors"
	"time"
)

// RegisterIO reads and writes a 32-bit memory-mapped register at a
// byte offset from the peripheral base. It is the seam between the
// register arithmetic below and whatever unsafe-pointer or mailbox
// mechanism a given board uses to reach physical memory — an injected
// dependency instead of the package-level globals a bare-metal driver
// would normally reach for, so this package stays testable off actual
// hardware.
type RegisterIO interface {
	Read(offset uint32) uint32
	Write(offset uint32, val uint32)
}

// BCM2835 register offsets and constants for the power management
// watchdog, relative to the PM peripheral base.
const (
	pmRSTC = 0x1c
	pmWDOG = 0x24

	pmPassword = 0x5a000000

	pmRSTCWRCFGClr  = 0xffffffcf
	pmRSTCWRCFGSet  = 0x00000030
	pmRSTCWRCFGFull = 0x00000020
	pmRSTCReset     = 0x00000102

	pmWDOGTimeSet = 0x000fffff
)

// watchdogPeriod is the tick period of the BCM2835 watchdog counter.
const watchdogPeriod = 16 * time.Microsecond

// ErrExcessTimeout is returned when a requested timeout does not fit
// in the watchdog's 20-bit countdown register.
var ErrExcessTimeout = errors.New("watchdog: excess timeout for bcm2835 watchdog")

// BCM2835 is the Raspberry Pi power-management watchdog: a free-running
// counter that resets the SoC when it reaches zero unless periodically
// reloaded.
type BCM2835 struct {
	io      RegisterIO
	timeout time.Duration
}

// NewBCM2835 returns a BCM2835 watchdog driver using io to reach the
// PM peripheral registers.
func NewBCM2835(io RegisterIO) *BCM2835 {
	return &BCM2835{io: io}
}

func (w *BCM2835) ticks(timeout time.Duration) (uint32, error) {
	ticks := uint64(timeout / watchdogPeriod)
	if ticks > pmWDOGTimeSet {
		return 0, ErrExcessTimeout
	}
	return uint32(ticks), nil
}

// Start arms the watchdog for timeout, using the full-reset
// configuration (PM_RSTC_WRCFG_FULL) so expiry power-cycles the SoC
// rather than issuing a partial reset.
func (w *BCM2835) Start(timeout time.Duration) error {
	ticks, err := w.ticks(timeout)
	if err != nil {
		return err
	}
	w.timeout = timeout

	w.io.Write(pmWDOG, pmPassword|ticks)

	rstc := w.io.Read(pmRSTC)
	rstc &= pmRSTCWRCFGClr
	rstc |= pmRSTCWRCFGFull
	w.io.Write(pmRSTC, pmPassword|rstc)
	return nil
}

// Feed reloads the countdown with the timeout last passed to Start.
func (w *BCM2835) Feed() error {
	if w.timeout == 0 {
		return ErrNotArmed
	}
	ticks, err := w.ticks(w.timeout)
	if err != nil {
		return err
	}
	w.io.Write(pmWDOG, pmPassword|ticks)
	return nil
}

// Stop disarms the watchdog by clearing the write-config bits without
// setting a reset mode.
func (w *BCM2835) Stop() error {
	if w.timeout == 0 {
		return ErrNotArmed
	}
	rstc := w.io.Read(pmRSTC)
	rstc &= pmRSTCWRCFGClr
	w.io.Write(pmRSTC, pmPassword|rstc)
	w.timeout = 0
	return nil
}

// Remaining reports the time left on the countdown register.
func (w *BCM2835) Remaining() (time.Duration, error) {
	if w.timeout == 0 {
		return 0, ErrNotArmed
	}
	ticks := w.io.Read(pmWDOG) & pmWDOGTimeSet
	return time.Duration(ticks) * watchdogPeriod, nil
}
