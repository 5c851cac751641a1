// Package httputil provides HTTP utilities for fetching audit reports.
//
// # Overview
//
// This package provides infrastructure shared by everything that pulls
// report data over the network:
//
//   - [Cache]: File-based HTTP response caching
//   - [Retry]: Automatic retry with exponential backoff
//
// # Caching
//
// [Cache] stores HTTP responses in the filesystem
// (~/.cache/lighthouse-treemap/) with configurable TTL. This dramatically
// speeds up repeated renders of the same report and avoids re-downloading
// large report bodies.
//
// Usage:
//
//	cache, err := httputil.NewCache("", 24*time.Hour)
//	var body []byte
//	ok, _ := cache.Get("report:"+url, &body) // Check cache
//	if !ok {
//	    body = fetchReport(url)
//	    cache.Set("report:"+url, body) // Store for later
//	}
//
// Cache keys should be namespaced by content kind to avoid collisions.
//
// # Retry
//
// [Retry] wraps HTTP requests with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//
// Wrap errors that warrant another attempt in [RetryableError]; anything
// else aborts immediately:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return fetchOnce(url)
//	})
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Cache directory: ~/.cache/lighthouse-treemap/
//   - Default TTL: 24 hours
//   - Max retries: 3
//   - Base backoff: 1 second
//
// The cache can be cleared via `lighthouse-treemap cache clear` or by
// deleting the cache directory.
package httputil
