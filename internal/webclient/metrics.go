package webclient

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsObserver counts pipeline events in Prometheus.
type MetricsObserver struct {
	Dispatched *prometheus.CounterVec
	Succeeded  *prometheus.CounterVec
	Failed     *prometheus.CounterVec
}

// NewMetricsObserver registers its collectors on reg. A nil reg uses the
// default registerer.
func NewMetricsObserver(reg prometheus.Registerer) *MetricsObserver {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &MetricsObserver{
		Dispatched: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gesturepanel_http_requests_total",
				Help: "Total number of requests dispatched to the transport",
			},
			[]string{"method"},
		),
		Succeeded: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gesturepanel_http_responses_total",
				Help: "Total number of successful responses",
			},
			[]string{"status"},
		),
		Failed: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gesturepanel_http_failures_total",
				Help: "Total number of failed calls by kind",
			},
			[]string{"kind"},
		),
	}
}

func (m *MetricsObserver) Emit(e Event) {
	switch e.Stage {
	case StageDispatch:
		m.Dispatched.WithLabelValues(e.Method).Inc()
	case StageSuccess:
		m.Succeeded.WithLabelValues(strconv.Itoa(e.StatusCode)).Inc()
	case StageFailure:
		m.Failed.WithLabelValues(e.Kind.String()).Inc()
	}
}
