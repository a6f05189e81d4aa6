// Package metrics 汇总点击追踪、同步任务和统计查询的 Prometheus 指标。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ClicksTracked 点击事件写入结果。
	// sink: buffer / store；outcome: success / failure
	ClicksTracked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkbio_clicks_tracked_total",
			Help: "Total number of click tracking attempts",
		},
		[]string{"sink", "outcome"},
	)

	// SyncEntries 同步任务处理的队列条目。
	// stage: popped / inserted / discarded
	SyncEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkbio_sync_entries_total",
			Help: "Buffered click entries handled by the sync worker",
		},
		[]string{"stage"},
	)

	// SyncRuns 同步任务执行次数。
	// outcome: empty / success / failure
	SyncRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkbio_sync_runs_total",
			Help: "Total number of sync worker runs",
		},
		[]string{"outcome"},
	)

	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "linkbio_sync_duration_seconds",
			Help:    "Duration of sync worker runs",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	// AnalyticsCache 统计结果缓存命中情况。
	// result: hit / miss / error
	AnalyticsCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkbio_analytics_cache_total",
			Help: "Analytics cache lookups",
		},
		[]string{"result"},
	)
)
