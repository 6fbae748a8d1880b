package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ModuleLoadCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buildopts_module_load_count",
			Help: "Total number of configuration module loads",
		},
		[]string{"loader", "cached"},
	)

	ModuleLoadFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buildopts_module_load_failed",
			Help: "Number of configuration module loads that failed",
		},
		[]string{"loader"},
	)

	ModuleLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "buildopts_module_load_duration_seconds",
			Help:    "Configuration module load duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"loader"},
	)

	TargetFetchFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buildopts_target_fetch_failed",
			Help: "Number of target option lookups that failed",
		},
		[]string{"project", "target"},
	)

	TargetFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "buildopts_target_fetch_duration_seconds",
			Help:    "Target option lookup duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"project", "target"},
	)

	ResolveFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "buildopts_resolve_failed",
			Help: "Number of option resolutions aborted by an error",
		},
	)

	ResolveCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "buildopts_resolve_count",
			Help: "Total number of completed option resolutions",
		},
	)

	ResolveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "buildopts_resolve_duration_seconds",
			Help:    "Option resolution duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)
)
