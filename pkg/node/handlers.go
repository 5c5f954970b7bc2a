package node

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/ryandielhenn/simonlink/pkg/history"
)

// Healthz returns 200 OK to indicate the Node is alive.
func (n *Node) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// Info writes a JSON payload with the process ID, current time, the machine
// snapshot, and the recent round history (manager only).
func (n *Node) Info(w http.ResponseWriter, _ *http.Request) {
	type resp struct {
		Role    string           `json:"role"`
		PID     int              `json:"pid"`
		Now     time.Time        `json:"now"`
		Machine any              `json:"machine"`
		Rounds  []history.Round  `json:"rounds,omitempty"`
		Stats   *history.Summary `json:"stats,omitempty"`
	}
	out := resp{
		Role: n.role,
		PID:  os.Getpid(),
		Now:  time.Now(),
	}
	if n.snapshot != nil {
		out.Machine = n.snapshot()
	}
	if n.hist != nil {
		out.Rounds = n.hist.Recent(10)
		stats := n.hist.Stats()
		out.Stats = &stats
	}
	data, _ := json.Marshal(out)
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
