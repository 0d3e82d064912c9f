package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wikivault/internal/db"
)

func setupTagServiceTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:tag-service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	return gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	}
}

func TestTagServiceCreateOrGetNormalizesCase(t *testing.T) {
	gdb, cleanup := setupTagServiceTestDB(t)
	defer cleanup()

	svc := NewTagService(gdb)

	first, err := svc.CreateOrGet("Keter")
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}
	if first.Name != "keter" {
		t.Fatalf("expected lower-cased name, got %q", first.Name)
	}

	second, err := svc.CreateOrGet("KETER")
	if err != nil {
		t.Fatalf("get tag: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected the same tag for both casings, got %d and %d", first.ID, second.ID)
	}

	var count int64
	if err := gdb.Model(&db.Tag{}).Count(&count).Error; err != nil {
		t.Fatalf("count tags: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 tag row, got %d", count)
	}
}

func TestTagServiceHiddenPrefix(t *testing.T) {
	gdb, cleanup := setupTagServiceTestDB(t)
	defer cleanup()

	svc := NewTagService(gdb)

	system, err := svc.CreateOrGet("_System")
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}
	if !system.Hidden() {
		t.Fatalf("expected %q to be hidden", system.Name)
	}

	public, err := svc.CreateOrGet("plot")
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}
	if public.Hidden() {
		t.Fatalf("expected %q to be visible", public.Name)
	}
}

func TestTagServiceCreateOrGetEmptyName(t *testing.T) {
	gdb, cleanup := setupTagServiceTestDB(t)
	defer cleanup()

	svc := NewTagService(gdb)

	if _, err := svc.CreateOrGet("   "); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTagServiceListOrdersByName(t *testing.T) {
	gdb, cleanup := setupTagServiceTestDB(t)
	defer cleanup()

	svc := NewTagService(gdb)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if _, err := svc.CreateOrGet(name); err != nil {
			t.Fatalf("create tag %q: %v", name, err)
		}
	}

	tags, err := svc.List()
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	if len(tags) != 3 {
		t.Fatalf("expected 3 tags, got %d", len(tags))
	}
	if tags[0].Name != "alpha" || tags[1].Name != "mid" || tags[2].Name != "zeta" {
		t.Fatalf("unexpected order: %+v", []string{tags[0].Name, tags[1].Name, tags[2].Name})
	}
}
