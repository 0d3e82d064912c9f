package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/wikivault/internal/db"
)

// maxRevNumberRetries bounds the optimistic allocation loop. Each
// retry only happens when a concurrent append won the same number, so
// the loop terminates quickly once contention drains.
const maxRevNumberRetries = 10

// Typed log entry payloads, one shape per entry kind. They are stored
// JSON-encoded in the entry's meta column; the log itself treats the
// payload as opaque and never validates it on read.
type (
	// NewMeta marks article creation.
	NewMeta struct{}

	// SourceMeta references the version created by a content edit
	// instead of duplicating its text.
	SourceMeta struct {
		VersionID uint `json:"version_id"`
	}

	// TitleMeta records a title change.
	TitleMeta struct {
		Old string `json:"old"`
		New string `json:"new"`
	}

	// NameMeta records a rename: the raw (category, name) pairs plus
	// the derived full names. Full names alone are ambiguous when a
	// name contains ":".
	NameMeta struct {
		Old         string `json:"old"`
		New         string `json:"new"`
		OldCategory string `json:"old_category"`
		OldName     string `json:"old_name"`
		NewCategory string `json:"new_category"`
		NewName     string `json:"new_name"`
	}

	// TagsMeta records the tag diff of one edit.
	TagsMeta struct {
		Added   []string `json:"added"`
		Removed []string `json:"removed"`
	}

	// ParentMeta records a hierarchy change.
	ParentMeta struct {
		OldParentID *uint `json:"old_parent_id"`
		NewParentID *uint `json:"new_parent_id"`
	}
)

// RevisionLogService wraps the append-only audit trail of an article.
type RevisionLogService struct {
	db *gorm.DB
}

// NewRevisionLogService creates a RevisionLogService instance.
func NewRevisionLogService(gdb *gorm.DB) *RevisionLogService {
	return &RevisionLogService{db: gdb}
}

// Append writes one audit entry for the article, allocating the next
// per-article revision number. Allocation is optimistic: the insert
// runs under the (article_id, rev_number) unique index and retries
// with a recomputed number when a concurrent append took the same one.
// Unrelated articles never contend.
func (s *RevisionLogService) Append(articleID uint, entryType string, meta interface{}, comment string) (*db.ArticleLogEntry, error) {
	if err := s.ensureArticle(articleID); err != nil {
		return nil, err
	}

	payload, err := encodeMeta(meta)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxRevNumberRetries; attempt++ {
		var maxRev int64
		err := s.db.Model(&db.ArticleLogEntry{}).
			Where("article_id = ?", articleID).
			Select("COALESCE(MAX(rev_number), 0)").
			Scan(&maxRev).Error
		if err != nil {
			return nil, err
		}

		entry := db.ArticleLogEntry{
			ArticleID: articleID,
			Type:      entryType,
			Meta:      payload,
			Comment:   comment,
			RevNumber: uint(maxRev) + 1,
		}
		createErr := s.db.Create(&entry).Error
		if createErr == nil {
			return &entry, nil
		}
		if errors.Is(createErr, gorm.ErrDuplicatedKey) {
			continue
		}
		return nil, createErr
	}

	return nil, ErrRevisionConflict
}

// History returns all entries for the article ascending by revision
// number. An unknown or deleted article yields ErrArticleNotFound
// rather than an empty list.
func (s *RevisionLogService) History(articleID uint) ([]db.ArticleLogEntry, error) {
	if err := s.ensureArticle(articleID); err != nil {
		return nil, err
	}

	var entries []db.ArticleLogEntry
	err := s.db.Where("article_id = ?", articleID).
		Order("rev_number asc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// DecodeMeta unmarshals an entry's payload into the typed shape for
// its kind.
func DecodeMeta(entry *db.ArticleLogEntry) (interface{}, error) {
	switch entry.Type {
	case db.LogTypeNew:
		return decodeInto[NewMeta](entry.Meta)
	case db.LogTypeSource:
		return decodeInto[SourceMeta](entry.Meta)
	case db.LogTypeTitle:
		return decodeInto[TitleMeta](entry.Meta)
	case db.LogTypeName:
		return decodeInto[NameMeta](entry.Meta)
	case db.LogTypeTags:
		return decodeInto[TagsMeta](entry.Meta)
	case db.LogTypeParent:
		return decodeInto[ParentMeta](entry.Meta)
	default:
		return nil, fmt.Errorf("unknown log entry type %q", entry.Type)
	}
}

func decodeInto[T any](payload string) (T, error) {
	var meta T
	err := json.Unmarshal([]byte(payload), &meta)
	return meta, err
}

func encodeMeta(meta interface{}) (string, error) {
	if meta == nil {
		return "{}", nil
	}
	payload, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

func (s *RevisionLogService) ensureArticle(articleID uint) error {
	var article db.Article
	if err := s.db.Select("id").First(&article, articleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrArticleNotFound
		}
		return err
	}
	return nil
}
