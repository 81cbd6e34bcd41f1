/*
metrics.go - Prometheus instrumentation for the recalculation paths

PURPOSE:
  Counts and times month recalculations by trigger (create, edit, delete,
  bulk_delete, batch_insert, explicit) so operators can see how often
  payroll months are being recomputed and how long it takes. Exposed at
  /metrics via the default registry.
*/
package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recalcTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crewpay",
		Name:      "recalculations_total",
		Help:      "Month recalculations triggered, by trigger type.",
	}, []string{"trigger"})

	recalcFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crewpay",
		Name:      "recalculation_failures_total",
		Help:      "Failed recalculation requests, by trigger type.",
	}, []string{"trigger"})

	recalcDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "crewpay",
		Name:      "recalculation_duration_seconds",
		Help:      "Wall time of a mutation plus its month recalculations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"trigger"})
)

type recalcTimer struct {
	trigger string
	start   time.Time
}

func newRecalcTimer(trigger string) *recalcTimer {
	recalcTotal.WithLabelValues(trigger).Inc()
	return &recalcTimer{trigger: trigger, start: time.Now()}
}

func (t *recalcTimer) done(err error) {
	recalcDuration.WithLabelValues(t.trigger).Observe(time.Since(t.start).Seconds())
	if err != nil {
		recalcFailures.WithLabelValues(t.trigger).Inc()
	}
}
