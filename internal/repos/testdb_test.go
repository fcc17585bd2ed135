package repos

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yungbote/labelsense-backend/internal/types"
)

// openTestDB gives each test an isolated in-memory database with the same
// error translation the production config uses, so unique violations surface
// as gorm.ErrDuplicatedKey on either driver. A single connection keeps the
// in-memory database alive and shared across goroutines.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&types.ScanRecord{}, &types.Product{}, &types.ScanLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
