package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RetryAttemptsTotal tracks retry attempts per call domain and error code
	RetryAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aegis_retry_attempts_total",
			Help: "Total number of retry attempts",
		},
		[]string{"domain", "code"},
	)

	// RetriesExhaustedTotal tracks calls that failed after the full retry budget
	RetriesExhaustedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aegis_retries_exhausted_total",
			Help: "Total number of calls that exhausted their retry budget",
		},
		[]string{"domain"},
	)

	// BreakerState tracks circuit breaker state per service (0=closed, 1=open, 2=half-open)
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "aegis_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"service"},
	)

	// BreakerTransitionsTotal tracks breaker state transitions per service
	BreakerTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aegis_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"service", "to"},
	)

	// BreakerRejectedTotal tracks calls rejected while a breaker is open
	BreakerRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aegis_breaker_rejected_total",
			Help: "Total number of calls rejected by an open circuit breaker",
		},
		[]string{"service"},
	)

	// AuditEventsRecorded tracks audit events written per category and severity
	AuditEventsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aegis_audit_events_recorded_total",
			Help: "Total number of audit events recorded",
		},
		[]string{"category", "severity"},
	)

	// AuditEventsDropped tracks audit events lost to store failures
	AuditEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aegis_audit_events_dropped_total",
			Help: "Total number of audit events dropped due to store failures",
		},
	)

	// RetentionDeletedTotal tracks rows removed by the retention sweeper
	RetentionDeletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aegis_retention_deleted_total",
			Help: "Total number of audit events deleted by retention",
		},
		[]string{"category"},
	)

	// DBConnectionPoolUsage tracks database connection pool utilization
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aegis_db_pool_usage_percent",
			Help: "Database connection pool usage percentage",
		},
	)
)
