// Package database handles database connections, migrations and schema inspection.
//
// It wraps GORM to configure MySQL connections (production) or SQLite databases
// (tests and local runs) from the application's configuration.
//
// # Connect
//
// Connect opens the configured driver, applies pool settings and pings the database
// with the configured timeout.
//
// # Migrations
//
// Migrate runs AutoMigrate for the marketplace models. VerifySchema uses the column
// inspector to report expected columns missing from the live schema, which the
// `migrate --check` command prints.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.VerifySchema(db, map[string][]string{"bids": {"bid_id"}})
package database
