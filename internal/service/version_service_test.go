package service

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wikivault/internal/db"
)

func setupVersionServiceTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:version-service-%d?mode=memory&cache=shared", time.Now().UnixNano())
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

func createVersionTestArticle(t *testing.T, gdb *gorm.DB) *db.Article {
	t.Helper()

	article, err := NewArticleService(gdb).Create(ArticleInput{Name: fmt.Sprintf("article-%d", time.Now().UnixNano())})
	if err != nil {
		t.Fatalf("create article: %v", err)
	}
	return article
}

func TestVersionServiceAppendHistoryLatest(t *testing.T) {
	gdb, cleanup := setupVersionServiceTestDB(t)
	defer cleanup()

	svc := NewVersionService(gdb)
	article := createVersionTestArticle(t, gdb)

	sources := []string{"first", "second", "third"}
	for _, source := range sources {
		if _, err := svc.Append(article.ID, source); err != nil {
			t.Fatalf("append version: %v", err)
		}
	}

	history, err := svc.History(article.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != len(sources) {
		t.Fatalf("expected %d versions, got %d", len(sources), len(history))
	}
	for i, version := range history {
		if version.Source != sources[i] {
			t.Fatalf("unexpected order at %d: %q", i, version.Source)
		}
		if version.Rendered != nil {
			t.Fatalf("expected rendered to start unset, got %q", *version.Rendered)
		}
	}

	latest, err := svc.Latest(article.ID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest == nil || latest.Source != "third" {
		t.Fatalf("expected the last appended version, got %+v", latest)
	}

	sum := sha256.Sum256([]byte("third"))
	if latest.ContentHash != hex.EncodeToString(sum[:]) {
		t.Fatalf("unexpected content hash: %q", latest.ContentHash)
	}
}

func TestVersionServiceLatestWithoutVersions(t *testing.T) {
	gdb, cleanup := setupVersionServiceTestDB(t)
	defer cleanup()

	svc := NewVersionService(gdb)
	article := createVersionTestArticle(t, gdb)

	latest, err := svc.Latest(article.ID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest != nil {
		t.Fatalf("expected nil for an article without content, got %+v", latest)
	}
}

func TestVersionServiceAppendUnknownArticle(t *testing.T) {
	gdb, cleanup := setupVersionServiceTestDB(t)
	defer cleanup()

	svc := NewVersionService(gdb)

	if _, err := svc.Append(9999, "text"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not-found kind, got %v", err)
	}
	if _, err := svc.History(9999); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("expected ErrArticleNotFound from history, got %v", err)
	}
}

func TestVersionServiceSetRenderedOverwrites(t *testing.T) {
	gdb, cleanup := setupVersionServiceTestDB(t)
	defer cleanup()

	svc := NewVersionService(gdb)
	article := createVersionTestArticle(t, gdb)

	version, err := svc.Append(article.ID, "source text")
	if err != nil {
		t.Fatalf("append version: %v", err)
	}

	if err := svc.SetRendered(version.ID, "<p>one</p>"); err != nil {
		t.Fatalf("set rendered: %v", err)
	}
	// Re-rendering after a template change just overwrites.
	if err := svc.SetRendered(version.ID, "<p>two</p>"); err != nil {
		t.Fatalf("set rendered again: %v", err)
	}

	reloaded, err := svc.Get(version.ID)
	if err != nil {
		t.Fatalf("get version: %v", err)
	}
	if reloaded.Rendered == nil || *reloaded.Rendered != "<p>two</p>" {
		t.Fatalf("unexpected rendered content: %+v", reloaded.Rendered)
	}
	if reloaded.Source != "source text" {
		t.Fatalf("rendering must not touch the source, got %q", reloaded.Source)
	}

	if err := svc.SetRendered(424242, "x"); !errors.Is(err, ErrVersionNotFound) {
		t.Fatalf("expected ErrVersionNotFound, got %v", err)
	}
}

type stubRenderer struct {
	prefix string
}

func (r stubRenderer) Render(source string) (string, error) {
	return r.prefix + source, nil
}

func TestVersionServiceRenderVersion(t *testing.T) {
	gdb, cleanup := setupVersionServiceTestDB(t)
	defer cleanup()

	svc := NewVersionService(gdb)
	article := createVersionTestArticle(t, gdb)

	version, err := svc.Append(article.ID, "body")
	if err != nil {
		t.Fatalf("append version: %v", err)
	}

	if err := svc.RenderVersion(version.ID, stubRenderer{prefix: "rendered:"}); err != nil {
		t.Fatalf("render version: %v", err)
	}

	reloaded, err := svc.Get(version.ID)
	if err != nil {
		t.Fatalf("get version: %v", err)
	}
	if reloaded.Rendered == nil || *reloaded.Rendered != "rendered:body" {
		t.Fatalf("unexpected rendered content: %+v", reloaded.Rendered)
	}
}
