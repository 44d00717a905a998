// Package dbtest opens throwaway databases for tests.
package dbtest

import (
	"fmt"
	"testing"

	"marketplace/core/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// SQLite returns a migrated in-memory SQLite database private to the test.
// The shared cache mode keeps every pooled connection on the same database.
func SQLite(t testing.TB, models ...any) *gorm.DB {
	t.Helper()

	name := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: name})
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	if err := database.Migrate(db, models...); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// MySQLMock returns a gorm handle on the mysql dialector backed by sqlmock.
func MySQLMock(t testing.TB) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}
	return gormDB, mock
}
