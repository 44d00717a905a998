// Package config provides configuration management for the marketplace service.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Defaults come from the `default` struct tags.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key, environment)
//   - Database: MySQL or SQLite connection details
//   - Storage: MinIO credentials, photo bucket and public URL
//   - Log: Logging level and format
//   - Cache: Redis read cache
//   - Messaging: NATS url and subjects
//   - Metrics: Prometheus namespace and path
//   - Market: Listing expiration and refresh window
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
