// Package metrics exposes Prometheus counters for playback activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "streambot",
		Name:      "sessions_started_total",
		Help:      "Playback sessions started, by source kind.",
	}, []string{"kind"})

	SessionsEnded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "streambot",
		Name:      "sessions_ended_total",
		Help:      "Playback sessions ended, by outcome.",
	}, []string{"outcome"})

	SessionsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "streambot",
		Name:      "sessions_rejected_total",
		Help:      "Play requests rejected because a session was active.",
	})

	DownloadSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "streambot",
		Name:      "download_duration_seconds",
		Help:      "Wall time spent materializing remote sources.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})

	SessionSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "streambot",
		Name:      "session_duration_seconds",
		Help:      "Session length from acquire to teardown.",
		Buckets:   prometheus.ExponentialBuckets(10, 2, 10),
	})
)
