package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/wikivault/internal/db"
)

// TagService wraps tag registry operations.
type TagService struct {
	db *gorm.DB
}

// NewTagService creates a TagService instance.
func NewTagService(gdb *gorm.DB) *TagService {
	return &TagService{db: gdb}
}

// CreateOrGet returns the tag with the given name, creating it when it
// does not exist yet. Names are matched and stored lower-cased, so
// "SCP" and "scp" resolve to the same tag.
func (s *TagService) CreateOrGet(name string) (*db.Tag, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, ErrTagNameRequired
	}

	var existing db.Tag
	err := s.db.Where("name = ?", name).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tag := db.Tag{Name: name}
	if err := s.db.Create(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a create race; the tag exists now.
			var winner db.Tag
			if lookupErr := s.db.Where("name = ?", name).First(&winner).Error; lookupErr == nil {
				return &winner, nil
			}
		}
		return nil, err
	}

	return &tag, nil
}

// List returns all tags ordered by name.
func (s *TagService) List() ([]db.Tag, error) {
	var tags []db.Tag
	if err := s.db.Order("name asc").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}
