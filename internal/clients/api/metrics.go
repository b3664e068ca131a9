package api

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var histogramRequestTime = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "expense_tracker",
		Subsystem: "api",
		Name:      "histogram_request_time_seconds",
		Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	},
	[]string{"method", "status"},
)

func observeRequest(method string, status int, elapsed time.Duration) {
	histogramRequestTime.
		WithLabelValues(method, statusClass(status)).
		Observe(elapsed.Seconds())
}

func statusClass(status int) string {
	if status == 0 {
		return "network"
	}
	return strconv.Itoa(status/100) + "xx"
}
