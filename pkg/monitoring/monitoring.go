package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	APIRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engdis_api_requests_total",
			Help: "Total number of EngDis API requests",
		},
		[]string{"endpoint", "outcome"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engdis_api_request_duration_seconds",
			Help:    "Duration of EngDis API requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"endpoint"},
	)

	TasksCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "engdis_tasks_completed_total",
			Help: "Total number of tasks marked complete",
		},
	)

	TestsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engdis_tests_submitted_total",
			Help: "Total number of submitted tests by review outcome",
		},
		[]string{"outcome"}, // accepted / flagged
	)
)

func Init() {
	prometheus.MustRegister(APIRequestCounter)
	prometheus.MustRegister(APIRequestDuration)
	prometheus.MustRegister(TasksCompleted)
	prometheus.MustRegister(TestsSubmitted)
}

// ObserveAPIRequest 由 EngDis 客户端在每次请求完成后上报
func ObserveAPIRequest(endpoint, outcome string, elapsed time.Duration) {
	APIRequestCounter.WithLabelValues(endpoint, outcome).Inc()
	APIRequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// Serve 在独立端口上暴露 /metrics，长时间跑全量 unit 时用于观察进度
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	go srv.ListenAndServe()
	return srv
}
