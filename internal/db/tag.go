package db

import (
	"strings"

	"gorm.io/gorm"
)

// Tag is a label attachable to articles. Names are stored lower-cased.
type Tag struct {
	gorm.Model
	Name     string    `gorm:"uniqueIndex;not null"`
	Articles []Article `gorm:"many2many:article_tags;"`
}

// Hidden reports whether the tag is a system tag. By convention any tag
// whose name starts with "_" is filtered out of public listings.
func (t Tag) Hidden() bool {
	return strings.HasPrefix(t.Name, "_")
}

// BeforeSave normalizes the name regardless of input casing.
func (t *Tag) BeforeSave(*gorm.DB) error {
	t.Name = strings.ToLower(t.Name)
	return nil
}
