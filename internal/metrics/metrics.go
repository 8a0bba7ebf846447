// Package metrics exposes prometheus counters for the payout flow and the staff relay.
package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once       sync.Once
	collectors []prometheus.Collector
)

func register(cs ...prometheus.Collector) {
	collectors = append(collectors, cs...)
}

// MustRegister registers all collectors with the given registerer exactly once.
// A nil registerer means the prometheus default registry.
func MustRegister(reg prometheus.Registerer) {
	once.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		reg.MustRegister(collectors...)
	})
}

func init() {
	register(
		requestsStarted,
		requestsCancelled,
		requestsCompleted,
		stageAdvances,
		validationFailures,
		dispatchFailures,
		forwardsRecorded,
		staffReplies,
		forwardsPruned,
	)
}

var (
	requestsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payout_requests_started_total",
		Help: "Payout requests opened by users.",
	})

	requestsCancelled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payout_requests_cancelled_total",
		Help: "Payout requests cancelled before completion.",
	})

	requestsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payout_requests_completed_total",
		Help: "Payout requests delivered to the staff chat.",
	})

	stageAdvances = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payout_stage_advances_total",
		Help: "Accepted inputs by the stage they moved the request to.",
	}, []string{"stage"})

	validationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payout_validation_failures_total",
		Help: "Rejected inputs by reason.",
	}, []string{"reason"})

	dispatchFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_dispatch_failures_total",
		Help: "Failed sends into the staff chat by message kind.",
	}, []string{"kind"})

	forwardsRecorded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_forwards_recorded_total",
		Help: "Forwarding records created by message kind.",
	}, []string{"kind"})

	staffReplies = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_staff_replies_total",
		Help: "Staff replies by outcome.",
	}, []string{"outcome"})

	forwardsPruned = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "relay_forwards_pruned_total",
		Help: "Forwarding records removed by retention.",
	})
)

func RequestStarted()   { requestsStarted.Inc() }
func RequestCancelled() { requestsCancelled.Inc() }
func RequestCompleted() { requestsCompleted.Inc() }

func StageAdvanced(stage string)     { stageAdvances.WithLabelValues(norm(stage)).Inc() }
func ValidationFailed(reason string) { validationFailures.WithLabelValues(norm(reason)).Inc() }
func DispatchFailed(kind string)     { dispatchFailures.WithLabelValues(norm(kind)).Inc() }
func ForwardRecorded(kind string)    { forwardsRecorded.WithLabelValues(norm(kind)).Inc() }
func StaffReply(outcome string)      { staffReplies.WithLabelValues(norm(outcome)).Inc() }

func ForwardsPruned(n int) {
	if n > 0 {
		forwardsPruned.Add(float64(n))
	}
}

func norm(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return "unknown"
	}
	return label
}
