// Package metrics holds the Prometheus collectors shared by the client
// packages and exposes them over HTTP when an address is configured.
//
// # Overview
//
// Collectors are registered on the default registry with promauto when the
// package loads, so importing packages only increment them:
//
//   - backoffice_api_requests_total, backoffice_api_request_duration_seconds:
//     API calls by method and outcome
//   - backoffice_api_breaker_state: circuit breaker state
//   - backoffice_cache_*: hits, misses, joined loads and invalidations
//   - backoffice_session_transitions_total: session state changes
//   - backoffice_photo_embed_bytes: sizes of files embedded as data URLs
//
// # Endpoint
//
// Serve exposes /metrics on the given address until its context is done.
// The client only starts it when metrics.addr is set; otherwise the
// collectors still count but nothing scrapes them.
package metrics
