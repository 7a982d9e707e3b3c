package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_sessions_active",
		Help: "Number of browsing sessions held in memory",
	})

	snapshotWriteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_snapshot_write_failures_total",
		Help: "Snapshot writes that failed and were dropped",
	}, []string{"store"})
)
