// Package dbtest opens sqlite databases carrying the full storefront schema for tests.
package dbtest

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Open returns an isolated in-memory database with every model migrated.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:storefront_%s?mode=memory&cache=shared", uuid.NewString())
	return open(t, dsn)
}

// OpenFile returns a file-backed database whose transactions take the write lock on
// BEGIN, so concurrent transactions queue instead of failing with SQLITE_LOCKED.
func OpenFile(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "storefront.db")
	return open(t, fmt.Sprintf("file:%s?_busy_timeout=10000&_txlock=immediate", path))
}

func open(t *testing.T, dsn string) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}
