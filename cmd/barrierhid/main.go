// Command barrierhid runs the Barrier-to-USB-HID bridge: it connects
// to a Barrier/Synergy server as a client, translates the input
// events it receives into USB HID reports, and keeps the pipeline
// alive under a watchdog.
//
// https://github.com/hidbridge/barrierkvm
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hidbridge/barrierkvm/actuator"
	"github.com/hidbridge/barrierkvm/config"
	"github.com/hidbridge/barrierkvm/diagnostics"
	"github.com/hidbridge/barrierkvm/hidpump"
	"github.com/hidbridge/barrierkvm/session"
	"github.com/hidbridge/barrierkvm/supervisor"
	"github.com/hidbridge/barrierkvm/watchdog"
)

// usbHIDWriter is the platform-specific HID endpoint write, supplied
// by the board's USB device-mode stack (external to this core).
type usbHIDWriter struct{}

func (usbHIDWriter) WriteReport(data []byte, deadline time.Time) error {
	// A real embedding swaps this for the board's USB HID endpoint
	// write, honoring deadline.
	return nil
}

func main() {
	cfg := config.AppConfig{
		Server:     "192.168.1.10:24800",
		ScreenName: "barrierkvm",
	}.WithDefaults()

	actuator.Init(0, 1, 0, 0)

	reports := make(chan hidpump.Report, 8)
	act := actuator.NewUSBActuator(cfg.ScreenWidth, cfg.ScreenHeight, cfg.FlipWheel, reports)

	pump := hidpump.New(
		usbHIDWriter{},
		8,
		hidpump.ClampWriteDeadline(1000/cfg.PollIntervalHz),
		nil,
	)
	go forwardReports(reports, pump)

	wd := watchdog.NewSoftware(func() {
		log.Fatal("barrierhid: watchdog starved, exiting")
	})

	sup := supervisor.New(cfg, session.Dial, act, pump, wd)

	go func() {
		log.Printf("barrierhid: diagnostics listening on :8080")
		if err := http.ListenAndServe(":8080", diagnostics.Handler()); err != nil {
			log.Printf("barrierhid: diagnostics server: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sup.Run(ctx); err != nil {
		log.Printf("barrierhid: supervisor exited: %v", err)
	}
}

// forwardReports drains the actuator's report channel into the pump's
// queue; kept separate so the pump's own channel stays internal.
func forwardReports(reports <-chan hidpump.Report, pump *hidpump.Pump) {
	for r := range reports {
		pump.Reports() <- r
	}
}
