package blockindex

import (
	"sync"

	"github.com/bsv-blockchain/indexprefix/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusPrefixCopyEntriesCopied  prometheus.Counter
	prometheusPrefixCopyEntriesSkipped prometheus.Counter
	prometheusPrefixCopyFailures       *prometheus.CounterVec
	prometheusPrefixCopyResolve        prometheus.Histogram
	prometheusPrefixCopyDuration       prometheus.Histogram
)

var (
	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusPrefixCopyEntriesCopied = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "prefixcopy",
			Name:      "entries_copied",
			Help:      "Number of block index entries written to the destination",
		},
	)

	prometheusPrefixCopyEntriesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "prefixcopy",
			Name:      "entries_skipped",
			Help:      "Number of heights skipped because the source had no entry",
		},
	)

	prometheusPrefixCopyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prefixcopy",
			Name:      "failures",
			Help:      "Number of copies aborted, by the phase that failed",
		},
		[]string{"phase"},
	)

	prometheusPrefixCopyResolve = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "prefixcopy",
			Name:      "resolve_height",
			Help:      "Histogram of resolving a height to a block hash",
			Buckets:   util.MetricsBucketsMilliSeconds,
		},
	)

	prometheusPrefixCopyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "prefixcopy",
			Name:      "copy",
			Help:      "Histogram of complete prefix copies",
			Buckets:   util.MetricsBucketsMilliLongSeconds,
		},
	)
}
