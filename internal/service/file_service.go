package service

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wikivault/internal/db"
)

// FileService manages attachment metadata. The bytes themselves live
// in the external storage backend keyed by the file's media name; this
// service only names, scopes and addresses them.
type FileService struct {
	db        *gorm.DB
	sites     SiteResolver
	mediaRoot string
}

// NewFileService creates a FileService instance. mediaRoot is the
// local directory all media paths are built under.
func NewFileService(gdb *gorm.DB, sites SiteResolver, mediaRoot string) *FileService {
	return &FileService{db: gdb, sites: sites, mediaRoot: mediaRoot}
}

// FileInput represents fields accepted when recording an attachment.
type FileInput struct {
	SiteSlug  string
	ArticleID uint
	Name      string
	MimeType  string
	Size      int64
	AuthorID  *uint
}

// Put records a new live attachment. If a live file with the same name
// already exists on the article, Put fails with ErrFileExists; the
// caller must soft delete the old file first, which keeps the deletion
// history intact instead of silently overwriting it.
func (s *FileService) Put(input FileInput) (*db.File, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrFileNameRequired
	}
	if _, err := s.sites.Resolve(input.SiteSlug); err != nil {
		return nil, err
	}

	file := &db.File{
		SiteSlug:  input.SiteSlug,
		ArticleID: input.ArticleID,
		Name:      name,
		MediaName: NewMediaName(name),
		MimeType:  input.MimeType,
		Size:      input.Size,
		AuthorID:  input.AuthorID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var article db.Article
		if err := tx.Select("id").First(&article, input.ArticleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrArticleNotFound
			}
			return err
		}

		// The explicit check gives the common caller mistake a clean
		// answer; the partial unique index on live files backs it up
		// against concurrent puts on other connections.
		var live int64
		err := tx.Model(&db.File{}).
			Where("article_id = ? AND name = ? AND deleted_at IS NULL", input.ArticleID, name).
			Count(&live).Error
		if err != nil {
			return err
		}
		if live > 0 {
			return ErrFileExists
		}

		if err := tx.Create(file).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrFileExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return file, nil
}

// Get returns a file by id, deleted or not.
func (s *FileService) Get(fileID uint) (*db.File, error) {
	var file db.File
	if err := s.db.First(&file, fileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return &file, nil
}

// ListLive returns the article's non-deleted files ordered by name.
func (s *FileService) ListLive(articleID uint) ([]db.File, error) {
	var files []db.File
	err := s.db.Where("article_id = ? AND deleted_at IS NULL", articleID).
		Order("name asc").
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

// ListAll returns every file row of the article including soft-deleted
// history, oldest first.
func (s *FileService) ListAll(articleID uint) ([]db.File, error) {
	var files []db.File
	err := s.db.Where("article_id = ?", articleID).
		Order("created_at asc").
		Order("id asc").
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

// SoftDelete marks the file as deleted by the given actor. Deleting a
// file twice is an error, not a no-op: a second delete would silently
// overwrite who deleted it and when.
func (s *FileService) SoftDelete(fileID, actorID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var file db.File
		if err := tx.First(&file, fileID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrFileNotFound
			}
			return err
		}
		if file.DeletedAt != nil {
			return ErrFileAlreadyDeleted
		}

		now := time.Now()
		return tx.Model(&file).Updates(map[string]interface{}{
			"deleted_by": actorID,
			"deleted_at": now,
		}).Error
	})
}

// MediaURL builds the public address of the file from the site's media
// domain and the percent-escaped article full name and file name.
func (s *FileService) MediaURL(file *db.File) (string, error) {
	site, err := s.sites.Resolve(file.SiteSlug)
	if err != nil {
		return "", err
	}
	fullName, err := s.articleFullName(file.ArticleID)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("//%s/%s/%s", site.MediaDomain, quoteSegment(fullName), quoteSegment(file.Name)), nil
}

// LocalMediaPath builds the path the storage backend keeps the bytes
// under: media root, escaped site slug, escaped article full name,
// escaped media name.
func (s *FileService) LocalMediaPath(file *db.File) (string, error) {
	site, err := s.sites.Resolve(file.SiteSlug)
	if err != nil {
		return "", err
	}
	fullName, err := s.articleFullName(file.ArticleID)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%s/%s/%s",
		s.mediaRoot,
		EscapeMediaName(site.Slug),
		EscapeMediaName(fullName),
		EscapeMediaName(file.MediaName),
	), nil
}

// EscapeMediaName escapes the two characters that would break
// path-segment boundaries or the "category:name" convention. This is
// deliberately narrower than full URL escaping.
func EscapeMediaName(name string) string {
	return strings.NewReplacer(":", "%3A", "/", "%2F").Replace(name)
}

// NewMediaName builds a unique physical storage key, keeping the
// original extension so storage backends can infer the content kind.
func NewMediaName(name string) string {
	return fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.New().String(), filepath.Ext(name))
}

func (s *FileService) articleFullName(articleID uint) (string, error) {
	var article db.Article
	if err := s.db.First(&article, articleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrArticleNotFound
		}
		return "", err
	}
	return article.FullName(), nil
}

// quoteSegment percent-escapes one URL path segment. PathEscape leaves
// ":" alone, which would collide with the category separator, so it is
// escaped on top.
func quoteSegment(segment string) string {
	return strings.ReplaceAll(url.PathEscape(segment), ":", "%3A")
}
