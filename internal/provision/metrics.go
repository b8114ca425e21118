package provision

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/plantit/plantit/internal/domain/types"
)

var (
	metricsOnce sync.Once
	metricsErr  error

	runsTotal   *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
)

// RegisterMetrics registers the provisioning metrics on reg. Until it
// is called, runs are not observed. Safe to call more than once.
func RegisterMetrics(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	metricsOnce.Do(func() {
		runsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "provisioning_runs_total",
			Help: "Provisioning runs by mode, result and terminal stage",
		}, []string{"mode", "result", "stage"})

		runDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "provisioning_run_duration_seconds",
			Help:    "Wall time of provisioning runs",
			Buckets: prometheus.DefBuckets,
		}, []string{"mode"})

		for _, c := range []prometheus.Collector{runsTotal, runDuration} {
			if err := reg.Register(c); err != nil {
				if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
					metricsErr = err
					return
				}
			}
		}
	})
	return metricsErr
}

func observeRun(mode types.Mode, out types.WorkflowOutcome, d time.Duration) {
	if runsTotal == nil || runDuration == nil {
		return
	}
	result := "failed"
	if out.Success {
		result = "completed"
	}
	runsTotal.WithLabelValues(string(mode), result, string(out.Stage)).Inc()
	runDuration.WithLabelValues(string(mode)).Observe(d.Seconds())
}
