// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tomtom215/storefront/internal/cache"
)

// CacheStatsFunc returns a snapshot of a cache's counters.
type CacheStatsFunc func() cache.Stats

// CacheCollector exposes LRU cache counters at scrape time.
type CacheCollector struct {
	stats CacheStatsFunc

	hits      *prometheus.Desc
	misses    *prometheus.Desc
	evictions *prometheus.Desc
	entries   *prometheus.Desc
}

// NewCacheCollector creates a collector for the cache named name.
// Register it with prometheus.MustRegister.
func NewCacheCollector(name string, stats CacheStatsFunc) *CacheCollector {
	labels := prometheus.Labels{"cache": name}
	return &CacheCollector{
		stats: stats,
		hits: prometheus.NewDesc("storefront_cache_hits_total",
			"Total number of cache hits", nil, labels),
		misses: prometheus.NewDesc("storefront_cache_misses_total",
			"Total number of cache misses", nil, labels),
		evictions: prometheus.NewDesc("storefront_cache_evictions_total",
			"Total number of cache evictions", nil, labels),
		entries: prometheus.NewDesc("storefront_cache_entries",
			"Current number of cached entries", nil, labels),
	}
}

// Describe implements prometheus.Collector.
func (c *CacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.evictions
	ch <- c.entries
}

// Collect implements prometheus.Collector.
func (c *CacheCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats()
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(s.Evictions))
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(s.Size))
}
