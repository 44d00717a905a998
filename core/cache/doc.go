// Package cache provides the shared read cache.
//
// RedisCache stores raw bytes in redis under a configurable key prefix; Noop is used
// when redis is disabled so callers never branch on configuration. GetJSON and
// SetJSON cover the common case of caching JSON-encodable values.
package cache
