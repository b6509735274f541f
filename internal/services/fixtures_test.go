package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nearbychat/server/internal/domain"
	"github.com/nearbychat/server/internal/repo"
)

// testBcryptCost keeps password hashing fast in tests.
const testBcryptCost = 4

// newTestDB opens a per-test in-memory SQLite database. The shared-cache DSN
// keeps every connection of the pool on the same database; the uuid keeps
// parallel tests apart.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *domain.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), db, email, "not-a-real-hash")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedOpenRoom(t *testing.T, db *gorm.DB, creatorID string, lat, lng float64) *domain.Room {
	t.Helper()
	r, err := repo.CreateRoom(context.Background(), db, creatorID, "coffee corner", "social", lat, lng, time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatalf("seed room: %v", err)
	}
	return r
}

func seedExpiredRoom(t *testing.T, db *gorm.DB, creatorID string, lat, lng float64) *domain.Room {
	t.Helper()
	r, err := repo.CreateRoom(context.Background(), db, creatorID, "old haunt", "social", lat, lng, time.Now().UTC().Add(-time.Minute))
	if err != nil {
		t.Fatalf("seed expired room: %v", err)
	}
	return r
}
