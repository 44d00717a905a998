package server

import "time"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret the upstream gateway must present. Empty disables the check.
	ApiKey string `mapstructure:"api_key" default:""`
	// Environment is the deployment environment (development, staging, production).
	Environment string `mapstructure:"environment" default:"development"`
	// ReadTimeoutSeconds bounds reading a full request.
	ReadTimeoutSeconds int `mapstructure:"read_timeout_seconds" default:"15"`
	// BodyLimitBytes caps request bodies.
	BodyLimitBytes int `mapstructure:"body_limit_bytes" default:"1048576"`
}

const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// IsValidEnvironment checks if the configured environment is known.
func (c Config) IsValidEnvironment() bool {
	switch c.Environment {
	case EnvDevelopment, EnvStaging, EnvProduction:
		return true
	default:
		return false
	}
}

// ReadTimeout returns the read timeout as a duration, defaulting to 15s.
func (c Config) ReadTimeout() time.Duration {
	if c.ReadTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}
