// Status and debug HTTP surface.
// https://github.com/hidbridge/barrierkvm
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package diagnostics

import (
	"encoding/json"
	"net/http"

	// Registers the /debug/charts/ live memory and GC chart handlers
	// on http.DefaultServeMux as a side effect of import.
	_ "github.com/mkevac/debugcharts"

	"github.com/hidbridge/barrierkvm/actuator"
)

// Handler builds the diagnostics mux: a JSON status endpoint reporting
// the running-state record, plus debugcharts' live memory/GC charts
// for watching the session pipeline under load.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", statusHandler)
	mux.Handle("/debug/", http.DefaultServeMux)
	return mux
}

func statusHandler(w http.ResponseWriter, r *http.Request) {
	snap := actuator.Current()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Phase           string `json:"phase"`
		ServerConnected bool   `json:"server_connected"`
		Active          bool   `json:"active"`
		IPAddress       string `json:"ip_address"`
		VersionMajor    uint8  `json:"version_major"`
		VersionMinor    uint8  `json:"version_minor"`
		VersionPatch    uint8  `json:"version_patch"`
	}{
		Phase:           snap.Phase.String(),
		ServerConnected: snap.ServerConnected,
		Active:          snap.Active,
		IPAddress:       snap.IPAddress,
		VersionMajor:    snap.VersionMajor,
		VersionMinor:    snap.VersionMinor,
		VersionPatch:    snap.VersionPatch,
	})
}
