// Package testutil holds helpers shared by package tests.
package testutil

import (
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"forum-api/internal/database"
)

// NewSQLiteDB opens a migrated in-memory sqlite database that is closed when the test ends
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Driver: database.DriverSQLite,
		DSN:    ":memory:",
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	if err := database.AutoMigrate(db, zap.NewNop()); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return db
}
