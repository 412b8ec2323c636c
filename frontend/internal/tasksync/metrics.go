package tasksync

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tgsched_sync_ticks_total",
			Help: "Polling rounds run by the task sync loop",
		},
	)

	refreshErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tgsched_sync_refresh_errors_total",
			Help: "Failed view refreshes by view",
		},
		[]string{"view"},
	)
)
