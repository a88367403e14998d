// Package metrics exposes Prometheus collectors for the game pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "handtris"

var (
	// FramesProcessed counts camera frames by outcome: hand, no_hand, still,
	// error.
	FramesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "frames_processed_total",
		Help:      "Camera frames handled by the pipeline.",
	}, []string{"outcome"})

	// Gestures counts emitted gestures other than none.
	Gestures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gestures_total",
		Help:      "Gestures emitted by the classifier.",
	}, []string{"gesture"})

	// Actions counts actions applied to the engine by source (gesture or
	// manual) and whether the engine accepted them.
	Actions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "actions_total",
		Help:      "Actions applied to the puzzle engine.",
	}, []string{"action", "source", "accepted"})

	// LinesCleared counts cleared rows.
	LinesCleared = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lines_cleared_total",
		Help:      "Rows removed by line clears.",
	})

	// GamesOver counts finished games.
	GamesOver = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "games_over_total",
		Help:      "Games that reached game over.",
	})

	// Score is the score of the current game.
	Score = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "score",
		Help:      "Score of the current game.",
	})

	// DetectSeconds observes hand detector latency.
	DetectSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "detect_seconds",
		Help:      "Hand detector latency.",
		Buckets:   prometheus.ExponentialBuckets(0.002, 2, 10),
	})
)
