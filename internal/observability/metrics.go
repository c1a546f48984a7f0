package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RidesBookedTotal    = promauto.NewCounter(prometheus.CounterOpts{Namespace: "hellocabs", Name: "rides_booked_total", Help: "Total rides booked"})
	RidesCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "hellocabs", Name: "rides_cancelled_total", Help: "Total rides cancelled"})
	CabsAssignedTotal   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "hellocabs", Name: "cabs_assigned_total", Help: "Total cab assignments confirmed"})

	RideTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hellocabs", Name: "ride_transitions_total", Help: "Ride status transitions applied"},
		[]string{"from", "to"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hellocabs", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hellocabs",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
