package db

import "time"

// Log entry kinds. One entry records one logical change, so a single
// edit touching both title and tags produces two entries.
const (
	LogTypeSource = "source"
	LogTypeTitle  = "title"
	LogTypeName   = "name"
	LogTypeTags   = "tags"
	LogTypeNew    = "new"
	LogTypeParent = "parent"
)

// ArticleLogEntry is one audit record in an article's revision log.
// RevNumber is a per-article counter; the unique index over
// (article_id, rev_number) backs the optimistic allocation in the
// revision log service. Entries are append-only and removed only by
// cascade when the article is deleted.
type ArticleLogEntry struct {
	ID        uint `gorm:"primarykey"`
	ArticleID uint `gorm:"not null;uniqueIndex:idx_article_log_entries_article_rev"`
	Article   Article

	Type string `gorm:"not null"`
	// Meta is the JSON-encoded payload for the entry kind; see the
	// typed payload structs in the service package.
	Meta    string `gorm:"type:text;not null"`
	Comment string

	RevNumber uint `gorm:"not null;uniqueIndex:idx_article_log_entries_article_rev"`
	CreatedAt time.Time
}
