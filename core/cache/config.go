package cache

import "time"

// Config holds configuration for the redis read cache.
type Config struct {
	// Enabled toggles the redis cache. When false a no-op cache is used.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Addr is the redis address (host:port).
	Addr string `mapstructure:"addr" default:"localhost:6379"`
	// Password is the redis password.
	Password string `mapstructure:"password" default:""`
	// DB is the redis database index.
	DB int `mapstructure:"db" default:"0"`
	// TTLSeconds is the default entry lifetime.
	TTLSeconds int `mapstructure:"ttl_seconds" default:"300"`
	// Prefix namespaces every key.
	Prefix string `mapstructure:"prefix" default:"market:"`
}

// TTL returns the entry lifetime as a duration.
func (c Config) TTL() time.Duration {
	if c.TTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.TTLSeconds) * time.Second
}
