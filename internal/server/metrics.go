package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tankopt_runs_started_total",
		Help: "Number of optimization runs started.",
	})

	runsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tankopt_runs_finished_total",
		Help: "Number of optimization runs finished, by terminal status.",
	}, []string{"status", "method"})

	runIterations = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tankopt_run_iterations",
		Help:    "Iterations taken per finished optimization run.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	evaluations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tankopt_point_evaluations_total",
		Help: "Number of single-point evaluate requests served.",
	})
)
