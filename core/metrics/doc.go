// Package metrics exposes prometheus counters for the marketplace core and a
// request latency middleware. All metrics live on a private registry served by
// Handler at the configured path.
package metrics
