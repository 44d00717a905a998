package metrics

// Config holds configuration for prometheus metrics.
type Config struct {
	// Enabled exposes /metrics and records request metrics.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Namespace prefixes every metric name.
	Namespace string `mapstructure:"namespace" default:"marketplace"`
	// Path is where the scrape endpoint is mounted.
	Path string `mapstructure:"path" default:"/metrics"`
}
