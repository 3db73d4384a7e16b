// Package metrics exposes the orchestrator's Prometheus instrumentation
// (SPEC_FULL.md §4.J/§6): an ambient observability surface the distilled
// spec doesn't mention, but that every pack repo of this shape carries
// (grounded on vellankikoti-kubilitics-os-emergent/kubilitics-ai's use of
// github.com/prometheus/client_golang).
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// ConnectedPeers tracks how many MCP peers are currently connected.
	ConnectedPeers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "orchestrator_connected_peers",
		Help: "Number of currently connected MCP peers.",
	})

	// ToolInvocations counts tool calls by peer and outcome.
	ToolInvocations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orchestrator_tool_invocations_total",
		Help: "Total MCP tool invocations, labeled by peer and outcome.",
	}, []string{"peer", "outcome"})
)

func init() {
	prometheus.MustRegister(ConnectedPeers, ToolInvocations)
}

// RecordToolInvocation increments the invocation counter for a peer.
func RecordToolInvocation(peerName string, success bool) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	ToolInvocations.WithLabelValues(peerName, outcome).Inc()
}

// SetConnectedPeers sets the connected-peer gauge.
func SetConnectedPeers(n int) {
	ConnectedPeers.Set(float64(n))
}
