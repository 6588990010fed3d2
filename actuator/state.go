// Input-event adapter between a Barrier session and a HID endpoint.
// https://github.com/hidbridge/barrierkvm
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package actuator

import "sync"

// Phase is the coarse-grained lifecycle position the status indicator
// reports, so a human can diagnose where the pipeline is stuck
// without a debugger.
type Phase int

const (
	PhaseLinkDown Phase = iota
	PhaseLinkUpServerDisconnected
	PhaseServerConnected
	PhaseActive
)

func (p Phase) String() string {
	switch p {
	case PhaseLinkDown:
		return "link-down"
	case PhaseLinkUpServerDisconnected:
		return "link-up-server-disconnected"
	case PhaseServerConnected:
		return "server-connected"
	case PhaseActive:
		return "active"
	default:
		return "unknown"
	}
}

// State is the running-state record: link/server/focus status plus
// the version and feature-flag fields reported over the control
// surface. It is module-scoped rather than constructed on first use,
// so tests can run many sessions back-to-back against a known-clean
// record.
type State struct {
	mu sync.Mutex

	phase         Phase
	versionMajor  uint8
	versionMinor  uint8
	versionPatch  uint8
	featureFlags  uint32
	ipAddress     string
	serverConnected bool
	active          bool
	keepAwake       bool
}

// global is the process-wide running-state record. Sessions and the
// status/indicator surface share it; the per-packet dispatch path
// never touches it except on Enter/Leave transitions.
var global = &State{}

// Init resets the running-state record, called once at startup (and
// by tests that want a clean slate between sessions).
func Init(versionMajor, versionMinor, versionPatch uint8, featureFlags uint32) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.phase = PhaseLinkDown
	global.versionMajor = versionMajor
	global.versionMinor = versionMinor
	global.versionPatch = versionPatch
	global.featureFlags = featureFlags
	global.ipAddress = ""
	global.serverConnected = false
	global.active = false
	global.keepAwake = false
}

// SetPhase updates the running-state phase.
func SetPhase(p Phase) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.phase = p
	global.serverConnected = p == PhaseServerConnected || p == PhaseActive
	global.active = p == PhaseActive
}

// SetIPAddress records the link-layer address for status reporting.
func SetIPAddress(addr string) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.ipAddress = addr
}

// SetKeepAwake toggles whether the jiggler should be running.
func SetKeepAwake(on bool) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.keepAwake = on
}

// Snapshot is a point-in-time copy of State safe to read without
// holding the lock.
type Snapshot struct {
	Phase           Phase
	VersionMajor    uint8
	VersionMinor    uint8
	VersionPatch    uint8
	FeatureFlags    uint32
	IPAddress       string
	ServerConnected bool
	Active          bool
	KeepAwake       bool
}

// Current returns a Snapshot of the running-state record.
func Current() Snapshot {
	global.mu.Lock()
	defer global.mu.Unlock()
	return Snapshot{
		Phase:           global.phase,
		VersionMajor:    global.versionMajor,
		VersionMinor:    global.versionMinor,
		VersionPatch:    global.versionPatch,
		FeatureFlags:    global.featureFlags,
		IPAddress:       global.ipAddress,
		ServerConnected: global.serverConnected,
		Active:          global.active,
		KeepAwake:       global.keepAwake,
	}
}
