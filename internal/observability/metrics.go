package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	driveCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "discctl",
			Subsystem: "drive",
			Name:      "calls_total",
			Help:      "Total drive control calls.",
		},
		[]string{"op", "result"},
	)
	driveCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "discctl",
			Subsystem: "drive",
			Name:      "call_duration_seconds",
			Help:      "Drive control call duration in seconds.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"op"},
	)
	sectorsRead = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "discctl",
			Subsystem: "drive",
			Name:      "sectors_read_total",
			Help:      "Sectors transferred from the drive.",
		},
		[]string{"kind"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(driveCalls, driveCallDuration, sectorsRead)
	})
}

// RecordDriveCall records one control call and its decoded result.
func RecordDriveCall(op, result string, duration time.Duration) {
	RegisterMetrics()
	driveCalls.WithLabelValues(op, result).Inc()
	driveCallDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordSectors counts sectors read, kind being "audio" or "raw".
func RecordSectors(kind string, n int) {
	RegisterMetrics()
	sectorsRead.WithLabelValues(kind).Add(float64(n))
}
