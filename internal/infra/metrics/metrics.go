package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "news_cache_hits_total",
			Help: "The total number of feed lookups served from the cache",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "news_cache_misses_total",
			Help: "The total number of feed lookups that missed the cache",
		},
	)

	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "news_cache_evictions_total",
			Help: "The total number of expired entries removed from the cache",
		},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "news_cache_entries",
			Help: "Number of entries currently held in the cache",
		},
	)

	InflightJoins = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "news_inflight_joins_total",
			Help: "The total number of callers coalesced onto an in-flight fetch",
		},
	)

	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_fetches_total",
			Help: "The total number of upstream fetches by outcome",
		},
		[]string{"provider", "status"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "news_fetch_duration_seconds",
			Help:    "Duration of upstream fetches",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	FetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_fetch_errors_total",
			Help: "Total number of upstream fetch errors by kind",
		},
		[]string{"provider", "kind"},
	)

	FeedRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_retries_total",
			Help: "Total number of feed retries scheduled by error kind",
		},
		[]string{"kind"},
	)

	WatchNewArticles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watch_new_articles_total",
			Help: "Total number of new articles observed by the watcher",
		},
		[]string{"category"},
	)
)
