package db

import "time"

// ArticleVersion is an immutable snapshot of an article's source text.
// Rows are only ever created; changing content means appending a new
// version. The latest version per article is the current content.
type ArticleVersion struct {
	ID        uint `gorm:"primarykey"`
	ArticleID uint `gorm:"not null;index:idx_article_versions_article_created"`
	Article   Article

	Source string `gorm:"type:text;not null"`
	// Rendered is filled in later by the rendering collaborator. Nil
	// means "not yet rendered", not an error.
	Rendered *string `gorm:"type:text"`
	// ContentHash is the hex sha256 of Source.
	ContentHash string `gorm:"size:64"`

	CreatedAt time.Time `gorm:"index:idx_article_versions_article_created"`
}
