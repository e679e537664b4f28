package metrics

import "github.com/prometheus/client_golang/prometheus"

// SessionMetrics holds Prometheus metrics for the session manager.
type SessionMetrics struct {
	Transitions  *prometheus.CounterVec
	Attempts     *prometheus.CounterVec
	ForcedResets prometheus.Counter
}

// NewSessionMetrics creates and registers session metrics on the given registry.
func NewSessionMetrics(reg prometheus.Registerer) *SessionMetrics {
	m := &SessionMetrics{
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "transitions_total",
			Help:      "Session state transitions, by target state.",
		}, []string{"state"}),
		Attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "attempts_total",
			Help:      "Login and registration attempts, by operation and result.",
		}, []string{"operation", "result"}),
		ForcedResets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "forced_resets_total",
			Help:      "Logouts forced by a failed profile fetch.",
		}),
	}

	reg.MustRegister(m.Transitions, m.Attempts, m.ForcedResets)
	return m
}
