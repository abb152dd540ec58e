package testsupport

import (
	"fmt"
	"testing"

	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MustOpenDB opens a migrated in-memory sqlite database private to the test
// and registers cleanup.
func MustOpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := database.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("database.Open: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("database.Migrate: %v", err)
	}
	return db
}
