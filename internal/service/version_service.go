package service

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"gorm.io/gorm"

	"github.com/wikivault/internal/db"
)

// Renderer is the external rendering collaborator. It turns article
// source into display output; the store never renders on its own.
type Renderer interface {
	Render(source string) (string, error)
}

// VersionService wraps the append-only version chain of an article.
type VersionService struct {
	db *gorm.DB
}

// NewVersionService creates a VersionService instance.
func NewVersionService(gdb *gorm.DB) *VersionService {
	return &VersionService{db: gdb}
}

// Append stores a new immutable source snapshot for the article.
// Existing versions are never touched.
func (s *VersionService) Append(articleID uint, source string) (*db.ArticleVersion, error) {
	if err := s.ensureArticle(articleID); err != nil {
		return nil, err
	}

	sum := sha256.Sum256([]byte(source))
	version := db.ArticleVersion{
		ArticleID:   articleID,
		Source:      source,
		ContentHash: hex.EncodeToString(sum[:]),
	}
	if err := s.db.Create(&version).Error; err != nil {
		return nil, err
	}

	return &version, nil
}

// Get returns a version by id.
func (s *VersionService) Get(versionID uint) (*db.ArticleVersion, error) {
	var version db.ArticleVersion
	if err := s.db.First(&version, versionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVersionNotFound
		}
		return nil, err
	}
	return &version, nil
}

// SetRendered stores the rendering collaborator's output for a
// version. Calling it again overwrites the previous output, so content
// may be re-rendered after template changes.
func (s *VersionService) SetRendered(versionID uint, rendered string) error {
	result := s.db.Model(&db.ArticleVersion{}).Where("id = ?", versionID).Update("rendered", rendered)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionNotFound
	}
	return nil
}

// RenderVersion runs the renderer over a version's source and stores
// the output.
func (s *VersionService) RenderVersion(versionID uint, renderer Renderer) error {
	version, err := s.Get(versionID)
	if err != nil {
		return err
	}

	rendered, err := renderer.Render(version.Source)
	if err != nil {
		return err
	}
	return s.SetRendered(version.ID, rendered)
}

// Latest returns the authoritative current version for the article, or
// nil when no content has ever been appended. Timestamp collisions are
// broken by insertion id.
func (s *VersionService) Latest(articleID uint) (*db.ArticleVersion, error) {
	if err := s.ensureArticle(articleID); err != nil {
		return nil, err
	}

	var version db.ArticleVersion
	err := s.db.Where("article_id = ?", articleID).
		Order("created_at desc").
		Order("id desc").
		First(&version).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &version, nil
}

// History returns all versions of the article, oldest first. Unlike
// the bare row query, an unknown or deleted article yields
// ErrArticleNotFound rather than an empty list.
func (s *VersionService) History(articleID uint) ([]db.ArticleVersion, error) {
	if err := s.ensureArticle(articleID); err != nil {
		return nil, err
	}

	var versions []db.ArticleVersion
	err := s.db.Where("article_id = ?", articleID).
		Order("created_at asc").
		Order("id asc").
		Find(&versions).Error
	if err != nil {
		return nil, err
	}
	return versions, nil
}

func (s *VersionService) ensureArticle(articleID uint) error {
	var article db.Article
	if err := s.db.Select("id").First(&article, articleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrArticleNotFound
		}
		return err
	}
	return nil
}
