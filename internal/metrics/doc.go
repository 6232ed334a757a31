// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

/*
Package metrics provides Prometheus instrumentation for the storefront service.

All metrics are registered on the default registry through promauto and are
exposed by the API router at /metrics.

# Available Metrics

Recommendation pipelines:
  - storefront_recommend_requests_total{pipeline,result}
  - storefront_recommend_fallbacks_total{pipeline,kind}
  - storefront_recommend_duration_seconds{pipeline}
  - storefront_recommend_candidates{pipeline}

Profiles and events:
  - storefront_profile_updates_total{kind,result}
  - storefront_events_published_total{topic,status}
  - storefront_events_processed_total{topic,status}
  - storefront_event_processing_duration_seconds{topic}

Embedding service:
  - storefront_embedding_requests_total{endpoint,status}
  - storefront_embedding_request_duration_seconds{endpoint}
  - storefront_embedding_circuit_state (0=closed, 1=half-open, 2=open)
  - storefront_embedding_circuit_transitions_total{from_state,to_state}

HTTP API:
  - storefront_api_requests_total{method,route,status_code}
  - storefront_api_request_duration_seconds{method,route}
  - storefront_api_active_requests
  - storefront_api_rate_limit_hits_total{route}

Result cache (CacheCollector, registered by the server):
  - storefront_cache_hits_total{cache}, storefront_cache_misses_total{cache}
  - storefront_cache_evictions_total{cache}, storefront_cache_entries{cache}

# Usage

Recorder satisfies recommend.Recorder:

	engine.SetRecorder(metrics.Recorder{})

Record helpers are safe for concurrent use.
*/
package metrics
