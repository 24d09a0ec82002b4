package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat67_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat67_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	MessagesPosted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat67_messages_posted_total",
			Help: "Total messages posted",
		},
		[]string{"kind"}, // "text" or "gif"
	)

	MessagesDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat67_messages_deleted_total",
			Help: "Total messages soft-deleted",
		},
	)

	EffectPolls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat67_effect_polls_total",
			Help: "Total check-effects polls by outcome",
		},
		[]string{"result"}, // "banned", "effect", "none"
	)

	BansApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat67_bans_applied_total",
			Help: "Total bans applied",
		},
		[]string{"kind"}, // "ip" or "user"
	)

	EffectsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat67_effects_applied_total",
			Help: "Total screen effects applied",
		},
		[]string{"action"},
	)

	// Sweep metrics
	SweepRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat67_sweep_runs_total",
			Help: "Total background sweep runs",
		},
	)

	SweepRemovals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat67_sweep_removals_total",
			Help: "Total records removed by sweeps",
		},
		[]string{"kind"}, // "presence" or "effect"
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat67_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)
)
