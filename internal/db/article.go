package db

import "gorm.io/gorm"

// DefaultCategory is the sentinel category for articles addressed by a
// bare name without the "category:" prefix.
const DefaultCategory = "_default"

// Article is a named content item addressed by (category, name).
// Content lives in ArticleVersion rows; the article row itself only
// carries identity, hierarchy and authorship.
type Article struct {
	gorm.Model
	Category string `gorm:"not null;default:_default;uniqueIndex:idx_articles_category_name"`
	Name     string `gorm:"not null;uniqueIndex:idx_articles_category_name"`
	Title    string

	// ParentID forms a forest. Deleting the parent nulls this
	// reference, it never cascades to children.
	ParentID *uint
	Parent   *Article

	Tags []Tag `gorm:"many2many:article_tags;"`

	// AuthorID is an opaque reference into the external identity
	// system. Nulled when the account goes away.
	AuthorID *uint
}

// FullName returns the canonical address of the article: the bare name
// for the default category, "category:name" otherwise.
func (a Article) FullName() string {
	if a.Category != DefaultCategory {
		return a.Category + ":" + a.Name
	}
	return a.Name
}
