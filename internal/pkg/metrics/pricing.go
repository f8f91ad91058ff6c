package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PricingMetrics registra as resoluções de preço.
type PricingMetrics struct {
	resolutions *prometheus.CounterVec
	failures    *prometheus.CounterVec
	duration    prometheus.Histogram
}

// NewPricingMetrics registra as métricas no registerer. reg nil devolve um coletor inerte.
func NewPricingMetrics(reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		return &PricingMetrics{}
	}
	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gopos",
		Name:      "price_resolutions_total",
		Help:      "Resoluções de preço concluídas, por origem do preço.",
	}, []string{"source"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gopos",
		Name:      "price_resolution_failures_total",
		Help:      "Resoluções de preço com erro, por categoria.",
	}, []string{"category"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gopos",
		Name:      "price_resolution_duration_seconds",
		Help:      "Duração das resoluções de preço, incluindo leituras no banco.",
		Buckets:   prometheus.DefBuckets,
	})
	reg.MustRegister(resolutions, failures, duration)
	return &PricingMetrics{
		resolutions: resolutions,
		failures:    failures,
		duration:    duration,
	}
}

// ObserveResolution conta uma resolução bem-sucedida.
func (m *PricingMetrics) ObserveResolution(source string, elapsed time.Duration) {
	if m == nil || m.resolutions == nil {
		return
	}
	m.resolutions.WithLabelValues(normalizeLabel(source)).Inc()
	m.duration.Observe(elapsed.Seconds())
}

// ObserveFailure conta uma resolução com erro.
func (m *PricingMetrics) ObserveFailure(category string, elapsed time.Duration) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(category)).Inc()
	m.duration.Observe(elapsed.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
