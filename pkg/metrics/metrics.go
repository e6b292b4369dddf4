// Package metrics provides the centralized Prometheus metrics registry for
// the ingestion pipeline. All metrics are defined in their respective
// packages (startgg, cache, ratelimit, ingest) to maintain modularity and
// avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the pipeline.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/startgg):
//   - startgg_requests_total{operation, status} (Counter): Total requests by operation and HTTP status
//   - startgg_request_duration_seconds{operation} (Histogram): Request duration by operation
//   - startgg_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Retry Metrics (pkg/startgg):
//   - startgg_retries_total{error_class} (Counter): Retry attempts by error class
//   - startgg_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - startgg_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Cache Metrics (pkg/cache):
//   - startgg_cache_hits_total (Counter): Response cache hits
//   - startgg_cache_misses_total (Counter): Response cache misses
//   - startgg_cache_errors_total{operation} (Counter): Cache operation errors
//
// Pacing Metrics (pkg/ratelimit):
//   - ingest_pacer_waits_total{pacer} (Counter): Pacing pauses by pacer name
//   - ingest_pacer_wait_seconds_total{pacer} (Counter): Cumulative pause time by pacer name
//
// Pipeline Metrics (pkg/ingest):
//   - ingest_tournaments_total (Counter): Tournaments ingested
//   - ingest_players_recorded_total (Counter): Distinct players recorded
//   - ingest_sets_persisted_total (Counter): Set results persisted
//   - ingest_sets_skipped_total (Counter): Sets skipped as incomplete or unscored
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   rate(startgg_cache_hits_total[5m]) /
//   (rate(startgg_cache_hits_total[5m]) + rate(startgg_cache_misses_total[5m]))
//
//   # Request Error Rate
//   rate(startgg_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(startgg_request_duration_seconds_bucket[5m]))
//
//   # Share of sets dropped as incomplete
//   rate(ingest_sets_skipped_total[1h]) /
//   (rate(ingest_sets_skipped_total[1h]) + rate(ingest_sets_persisted_total[1h]))
