// Package metrics exposes Prometheus counters for the scheduling engine.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "findly",
			Name:      "booking_created_total",
			Help:      "Count of bookings created.",
		},
	)

	bookingRejectedConflict = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "findly",
			Name:      "booking_slot_conflict_total",
			Help:      "Count of booking attempts rejected because the slot was taken.",
		},
	)

	lifecycleTransition = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "findly",
			Name:      "booking_transition_total",
			Help:      "Count of booking lifecycle transitions by action.",
		},
		[]string{"action"},
	)

	availabilityQueries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "findly",
			Name:      "availability_queries_total",
			Help:      "Count of availability lookups.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "findly",
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by handler.",
		},
		[]string{"handler"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			bookingCreated,
			bookingRejectedConflict,
			lifecycleTransition,
			availabilityQueries,
			httpRequests,
		)
	})
}

func IncBookingCreated()      { bookingCreated.Inc() }
func IncSlotConflict()        { bookingRejectedConflict.Inc() }
func IncTransition(a string)  { lifecycleTransition.WithLabelValues(a).Inc() }
func IncAvailabilityQueries() { availabilityQueries.Inc() }
func IncHTTP(handler string)  { httpRequests.WithLabelValues(handler).Inc() }
