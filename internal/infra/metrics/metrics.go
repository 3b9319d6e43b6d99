package metrics

import (
	"strconv"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	redemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "code_redemptions_total",
			Help: "Redemption attempts by result (ok/not_found/disabled/expired/used_up).",
		},
		[]string{"result"},
	)

	validationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_validations_total",
			Help: "Token validation attempts by result.",
		},
		[]string{"result"},
	)

	adminLoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_logins_total",
			Help: "Admin login attempts by success.",
		},
		[]string{"success"},
	)

	rateLimitedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limited_total",
			Help: "Requests denied by the rate limiter per scope.",
		},
		[]string{"scope"},
	)

	sessionsPruned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_pruned_total",
			Help: "Expired sessions removed by opportunistic pruning.",
		},
	)

	requestLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_latency_ms",
			Help:    "Request latency distribution in milliseconds.",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"route", "status"},
	)
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			redemptionsTotal, validationsTotal, adminLoginsTotal,
			rateLimitedTotal, sessionsPruned, requestLatencyMs,
		)
	})
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncRedemption(result string) {
	redemptionsTotal.WithLabelValues(norm(result)).Inc()
}

func IncValidation(result string) {
	validationsTotal.WithLabelValues(norm(result)).Inc()
}

func IncAdminLogin(success bool) {
	adminLoginsTotal.WithLabelValues(strconv.FormatBool(success)).Inc()
}

func IncRateLimited(scope string) {
	rateLimitedTotal.WithLabelValues(norm(scope)).Inc()
}

func AddSessionsPruned(n int) {
	if n > 0 {
		sessionsPruned.Add(float64(n))
	}
}

func ObserveRequest(route string, status int, latencyMs float64) {
	requestLatencyMs.WithLabelValues(route, strconv.Itoa(status)).Observe(latencyMs)
}
