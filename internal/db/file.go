package db

import "time"

// File is attachment metadata scoped to a site and an article. The
// bytes live in external storage keyed by MediaName; this table only
// names and addresses them.
//
// Files are soft deleted: DeletedBy/DeletedAt are set instead of
// removing the row, so at most one live file exists per (article, name)
// while any number of historical rows may share the name. DeletedAt is
// deliberately a plain *time.Time, not gorm.DeletedAt: deleted rows
// must stay visible to history queries.
//
// The partial idx_files_article_name_live index enforces the one-live-
// file rule at the schema level; the (article_id, name, deleted_at)
// index alone cannot, because sqlite treats NULL deleted_at values as
// distinct.
type File struct {
	ID        uint   `gorm:"primarykey"`
	SiteSlug  string `gorm:"not null;index"`
	ArticleID uint   `gorm:"not null;index:idx_files_article_name;uniqueIndex:idx_files_article_name_deleted;uniqueIndex:idx_files_article_name_live,where:deleted_at IS NULL"`
	Article   Article

	Name string `gorm:"not null;index:idx_files_article_name;uniqueIndex:idx_files_article_name_deleted;uniqueIndex:idx_files_article_name_live,where:deleted_at IS NULL"`
	// MediaName is the physical storage key.
	MediaName string `gorm:"not null"`

	MimeType string
	Size     int64

	AuthorID  *uint
	CreatedAt time.Time

	DeletedBy *uint
	DeletedAt *time.Time `gorm:"uniqueIndex:idx_files_article_name_deleted"`
}
