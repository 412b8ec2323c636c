package apiclient

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK           = "ok"
	outcomeAPIError     = "api_error"
	outcomeUnauthorized = "unauthorized"
	outcomeNetwork      = "network_error"
)

var (
	apiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tgsched_api_requests_total",
			Help: "Backend API calls by route and outcome",
		},
		[]string{"route", "outcome"},
	)

	sessionLossTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tgsched_session_loss_total",
			Help: "Session-loss recoveries triggered by HTTP 401",
		},
	)
)

func observe(route, outcome string) {
	apiRequestsTotal.WithLabelValues(route, outcome).Inc()
}
