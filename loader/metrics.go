package loader

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeNotHandled     = "not_handled"
	outcomeInvalid        = "invalid"
	outcomeAlreadyDefined = "already_defined"
	outcomeDefined        = "defined"
	outcomeFailed         = "failed"
)

type metrics struct {
	resolutions       *prometheus.CounterVec
	synthesisDuration prometheus.Histogram
}

func newMetrics(registerer prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "godeco",
				Name:      "resolutions_total",
				Help:      "Proxy resolutions by outcome",
			},
			[]string{"outcome"},
		),
		synthesisDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "godeco",
				Name:      "synthesis_duration_seconds",
				Help:      "Duration of the synthesis of a proxy source in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}

	if err := registerer.Register(m.resolutions); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, err
		}
		m.resolutions = already.ExistingCollector.(*prometheus.CounterVec)
	}
	if err := registerer.Register(m.synthesisDuration); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, err
		}
		m.synthesisDuration = already.ExistingCollector.(prometheus.Histogram)
	}
	return m, nil
}

func (m *metrics) resolved(outcome string) {
	if m != nil {
		m.resolutions.WithLabelValues(outcome).Inc()
	}
}

func (m *metrics) synthesized(seconds float64) {
	if m != nil {
		m.synthesisDuration.Observe(seconds)
	}
}
