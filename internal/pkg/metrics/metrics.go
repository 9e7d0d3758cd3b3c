package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the application collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	faceRequests      *prometheus.CounterVec
	faceDuration      *prometheus.HistogramVec
	attendanceEvents  *prometheus.CounterVec
	referenceReplaced prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		faceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "face_service_requests_total",
			Help:      "Face recognition service calls by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		faceDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "attendance",
			Name:      "face_service_request_duration_seconds",
			Help:      "Face recognition service round trip latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		attendanceEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "events_total",
			Help:      "Attendance workflow results by kind and outcome.",
		}, []string{"kind", "outcome"}),
		referenceReplaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "reference_sets_replaced_total",
			Help:      "Reference photo sets stored.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.faceRequests, m.faceDuration, m.attendanceEvents, m.referenceReplaced)
	}
	return m
}

func (m *Metrics) ObserveFaceRequest(endpoint, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.faceRequests.WithLabelValues(endpoint, outcome).Inc()
	m.faceDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// AttendanceEvent counts check_in, check_out, validate and supervised results.
func (m *Metrics) AttendanceEvent(kind, outcome string) {
	if m == nil {
		return
	}
	m.attendanceEvents.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) ReferenceSetReplaced() {
	if m == nil {
		return
	}
	m.referenceReplaced.Inc()
}
