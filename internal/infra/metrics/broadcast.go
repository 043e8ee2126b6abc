package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		channelSendsTotal,
		channelSendLatency,
		dispatchPassesTotal,
		dispatchPairingsTotal,
		collectOverflowTotal,
		sessionsActive,
		sessionsExpiredTotal,
		scheduledPostsTotal,
	)
}

var (
	channelSendsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_channel_sends_total",
			Help: "Delivery attempts per post kind and outcome.",
		},
		[]string{"kind", "success"},
	)

	channelSendLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "broadcast_channel_send_latency_ms",
			Help:    "Latency of single channel sends in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
		[]string{"kind"},
	)

	dispatchPassesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_dispatch_passes_total",
			Help: "Completed dispatch passes.",
		},
	)

	dispatchPairingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_dispatch_pairings_total",
			Help: "Pairings covered by dispatch passes, by outcome.",
		},
		[]string{"outcome"},
	)

	collectOverflowTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_collect_overflow_total",
			Help: "Posts rejected because the session was already full.",
		},
	)

	sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "broadcast_sessions_active",
			Help: "Live distribution sessions.",
		},
	)

	sessionsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_sessions_expired_total",
			Help: "Sessions auto-cancelled after idling past the TTL.",
		},
	)

	scheduledPostsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_scheduled_posts_total",
			Help: "Scheduled-post stub records written.",
		},
	)
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func ObserveChannelSend(kind string, latency time.Duration, success bool) {
	channelSendsTotal.WithLabelValues(norm(kind), strconv.FormatBool(success)).Inc()
	channelSendLatency.WithLabelValues(norm(kind)).Observe(float64(latency.Milliseconds()))
}

func ObserveDispatchPass(total, succeeded int) {
	dispatchPassesTotal.Inc()
	dispatchPairingsTotal.WithLabelValues("success").Add(float64(succeeded))
	dispatchPairingsTotal.WithLabelValues("failure").Add(float64(total - succeeded))
}

func IncCollectOverflow() { collectOverflowTotal.Inc() }

func SetActiveSessions(n int) { sessionsActive.Set(float64(n)) }

func AddSessionsExpired(n int) { sessionsExpiredTotal.Add(float64(n)) }

func AddScheduledPosts(n int) { scheduledPostsTotal.Add(float64(n)) }
