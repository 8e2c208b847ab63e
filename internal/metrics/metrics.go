package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "venueslot_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "venueslot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	AdmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "venueslot_admissions_total",
			Help: "Booking admission attempts by outcome",
		},
		[]string{"outcome"},
	)

	CancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "venueslot_cancellations_total",
			Help: "Total number of reservation cancellations",
		},
	)

	ScheduleUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "venueslot_schedule_updates_total",
			Help: "Reservation schedule updates by outcome",
		},
		[]string{"outcome"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "venueslot_notifications_total",
			Help: "Notification events by type and delivery status",
		},
		[]string{"type", "status"},
	)

	NotifyQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "venueslot_notify_queue_length",
			Help: "Current length of the notification queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordAdmission(outcome string) {
	AdmissionsTotal.WithLabelValues(outcome).Inc()
}

func RecordCancellation() {
	CancellationsTotal.Inc()
}

func RecordScheduleUpdate(outcome string) {
	ScheduleUpdatesTotal.WithLabelValues(outcome).Inc()
}

func RecordNotification(eventType, status string) {
	NotificationsTotal.WithLabelValues(eventType, status).Inc()
}
