package metrics

import (
	"time"

	"github.com/accruesavings/wallet-provisioning/interfaces"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	OutcomeSuccess         = "success"
	OutcomeUserCancelled   = "user_cancelled"
	OutcomePlatformError   = "platform_error"
	OutcomeValidationError = "validation_error"
	OutcomeInternalError   = "internal_error"
)

// Collector counts provisioning attempts and their outcomes. It satisfies
// orchestrator.Observer.
type Collector struct {
	started  prometheus.Counter
	inFlight prometheus.Gauge
	finished *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewCollector creates the collector and registers it with reg.
func NewCollector(namespace string, reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provisioning_attempts_started_total",
			Help:      "Provisioning attempts started.",
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "provisioning_attempts_in_flight",
			Help:      "Provisioning attempts started and not yet finished.",
		}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provisioning_attempts_finished_total",
			Help:      "Provisioning outcomes by kind and error code.",
		}, []string{"outcome", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provisioning_attempt_duration_seconds",
			Help:      "Time from the start of an attempt to its outcome.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"outcome"}),
	}
	for _, col := range []prometheus.Collector{c.started, c.inFlight, c.finished, c.duration} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector) AttemptStarted() {
	c.started.Inc()
	c.inFlight.Inc()
}

// AttemptFinished records the outcome of a started attempt.
func (c *Collector) AttemptFinished(o interfaces.Outcome, elapsed time.Duration) {
	label := OutcomeLabel(o)
	c.finished.WithLabelValues(label, interfaces.OutcomeCode(o)).Inc()
	c.inFlight.Dec()
	c.duration.WithLabelValues(label).Observe(elapsed.Seconds())
}

// AttemptRejected counts the outcome of a request that never started. The
// gauge and the histogram are left alone.
func (c *Collector) AttemptRejected(o interfaces.Outcome) {
	c.finished.WithLabelValues(OutcomeLabel(o), interfaces.OutcomeCode(o)).Inc()
}

// OutcomeLabel names the kind of o.
func OutcomeLabel(o interfaces.Outcome) string {
	switch o.(type) {
	case interfaces.Success:
		return OutcomeSuccess
	case interfaces.UserCancelled:
		return OutcomeUserCancelled
	case interfaces.PlatformError:
		return OutcomePlatformError
	case interfaces.ValidationError:
		return OutcomeValidationError
	default:
		return OutcomeInternalError
	}
}
