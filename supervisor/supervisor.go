// Task composition and reconnect loop.
// https://github.com/hidbridge/barrierkvm
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package supervisor

import (
	"context"
	"log"
	"net"
	"time"

	"github.com/hidbridge/barrierkvm/actuator"
	"github.com/hidbridge/barrierkvm/config"
	"github.com/hidbridge/barrierkvm/hidpump"
	"github.com/hidbridge/barrierkvm/session"
	"github.com/hidbridge/barrierkvm/watchdog"
)

// reconnectBackoff is how long the supervisor waits after any session
// attempt, success or failure, before trying again.
const reconnectBackoff = 5 * time.Second

// watchdogFeedPeriod is how often the supervisor feeds the watchdog
// while running, well inside cfg.WatchdogTimeout (5s by default, see
// config.DefaultWatchdogTimeout).
const watchdogFeedPeriod = 500 * time.Millisecond

// Dialer opens the transport-level connection to the Barrier server.
// A host-OS build passes session.Dial; a board with a user-space
// network stack passes a closure over transport.Dial.
type Dialer func(addr string) (net.Conn, error)

// Supervisor owns the long-running task graph: the HID pump, the
// watchdog feed, and the session reconnect loop. It never returns
// under normal operation.
type Supervisor struct {
	cfg    config.AppConfig
	dial   Dialer
	act    actuator.Actuator
	pump   *hidpump.Pump
	wd     watchdog.Watchdog
}

// New composes a Supervisor from its dependencies. act and pump share
// the same report channel; the caller is responsible for wiring that
// up (see cmd/barrierhid for the composition root).
func New(cfg config.AppConfig, dial Dialer, act actuator.Actuator, pump *hidpump.Pump, wd watchdog.Watchdog) *Supervisor {
	return &Supervisor{cfg: cfg, dial: dial, act: act, pump: pump, wd: wd}
}

// Run starts the pump and watchdog-feed tasks and loops running
// sessions against cfg.Server until ctx is canceled. On any session
// return — success or error — it sleeps reconnectBackoff and tries
// again.
func (s *Supervisor) Run(ctx context.Context) error {
	if err := s.wd.Start(s.cfg.WatchdogTimeout); err != nil {
		return err
	}
	defer s.wd.Stop()

	pumpDone := make(chan error, 1)
	go func() { pumpDone <- s.pump.Run(ctx) }()

	go s.feedWatchdog(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := s.runOnce(ctx); err != nil {
			log.Printf("supervisor: session ended: %v", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectBackoff):
		}
	}
}

func (s *Supervisor) runOnce(ctx context.Context) error {
	conn, err := s.dial(s.cfg.Server)
	if err != nil {
		return err
	}
	defer conn.Close()

	sess := session.New(conn, s.act, s.cfg.ScreenName, s.cfg.JiggleInterval)
	return sess.Run()
}

func (s *Supervisor) feedWatchdog(ctx context.Context) {
	ticker := time.NewTicker(watchdogFeedPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.wd.Feed(); err != nil {
				log.Printf("supervisor: watchdog feed: %v", err)
			}
		}
	}
}
