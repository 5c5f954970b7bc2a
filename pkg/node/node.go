package node

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ryandielhenn/simonlink/internal/telemetry"
	"github.com/ryandielhenn/simonlink/pkg/history"
)

// Node wraps one game machine with its operational surface: health, state
// introspection, and metrics. The machine itself is opaque here; it only has
// to produce a snapshot.
type Node struct {
	role     string
	log      *zap.Logger
	hist     *history.Log
	snapshot func() any
}

func New(role string, snapshot func() any, hist *history.Log, logger *zap.Logger) *Node {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Node{
		role:     role,
		log:      logger,
		hist:     hist,
		snapshot: snapshot,
	}
}

// Handler mounts the status endpoints.
func (n *Node) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", n.Healthz)
	mux.Handle("/info", telemetry.Instrument("info", http.HandlerFunc(n.Info)))
	mux.Handle("/metrics", telemetry.MetricsHandler())
	return mux
}

// Serve blocks on the status listener.
func (n *Node) Serve(addr string) error {
	n.log.Info("status server listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, n.Handler())
}
