package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/wikivault/internal/db"
)

// ArticleService wraps article directory operations: identity,
// hierarchy and tag association. It never writes revision log entries;
// EditorService combines directory changes with their audit records.
type ArticleService struct {
	db *gorm.DB
}

// NewArticleService creates an ArticleService instance.
func NewArticleService(gdb *gorm.DB) *ArticleService {
	return &ArticleService{db: gdb}
}

// ArticleInput represents fields accepted when creating an article.
type ArticleInput struct {
	Category string
	Name     string
	Title    string
	ParentID *uint
	AuthorID *uint
}

// Create inserts a new article. The category defaults to "_default"
// when empty; a duplicate (category, name) pair fails with
// ErrArticleExists.
func (s *ArticleService) Create(input ArticleInput) (*db.Article, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = db.DefaultCategory
	}

	var existing db.Article
	if err := s.db.Where("category = ? AND name = ?", category, name).First(&existing).Error; err == nil {
		return nil, ErrArticleExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if input.ParentID != nil {
		if err := s.ensureExists(*input.ParentID); err != nil {
			return nil, err
		}
	}

	article := db.Article{
		Category: category,
		Name:     name,
		Title:    input.Title,
		ParentID: input.ParentID,
		AuthorID: input.AuthorID,
	}
	if err := s.db.Create(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrArticleExists
		}
		return nil, err
	}

	return &article, nil
}

// Get returns an article by id.
func (s *ArticleService) Get(id uint) (*db.Article, error) {
	var article db.Article
	if err := s.db.Preload("Tags").First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return &article, nil
}

// GetByName returns the article addressed by (category, name). An
// empty category means the default one.
func (s *ArticleService) GetByName(category, name string) (*db.Article, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		category = db.DefaultCategory
	}

	var article db.Article
	err := s.db.Preload("Tags").Where("category = ? AND name = ?", category, strings.TrimSpace(name)).First(&article).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return &article, nil
}

// List returns all articles ordered by category then name.
func (s *ArticleService) List() ([]db.Article, error) {
	var articles []db.Article
	if err := s.db.Order("category asc").Order("name asc").Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

// Rename moves the article to a new (category, name) pair. Empty
// arguments keep the current value. A collision with a different
// article fails with ErrArticleExists.
func (s *ArticleService) Rename(id uint, category, name string) (*db.Article, error) {
	article, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	newCategory := strings.TrimSpace(category)
	if newCategory == "" {
		newCategory = article.Category
	}
	newName := strings.TrimSpace(name)
	if newName == "" {
		newName = article.Name
	}

	if newCategory == article.Category && newName == article.Name {
		return article, nil
	}

	var other db.Article
	if err := s.db.Where("category = ? AND name = ? AND id <> ?", newCategory, newName, id).First(&other).Error; err == nil {
		return nil, ErrArticleExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	updates := map[string]interface{}{
		"category": newCategory,
		"name":     newName,
	}
	if err := s.db.Model(article).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrArticleExists
		}
		return nil, err
	}

	article.Category = newCategory
	article.Name = newName
	return article, nil
}

// SetTitle updates the article title.
func (s *ArticleService) SetTitle(id uint, title string) (*db.Article, error) {
	article, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(article).Update("title", title).Error; err != nil {
		return nil, err
	}
	article.Title = title
	return article, nil
}

// SetParent moves the article under a new parent, or to the forest
// root when parentID is nil. Self-parenting and deeper ancestor cycles
// both fail with a validation error.
func (s *ArticleService) SetParent(id uint, parentID *uint) (*db.Article, error) {
	article, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if parentID != nil {
		if *parentID == id {
			return nil, ErrSelfParent
		}
		if err := s.ensureExists(*parentID); err != nil {
			return nil, err
		}
		if err := s.checkAncestry(id, *parentID); err != nil {
			return nil, err
		}
	}

	if err := s.db.Model(article).Update("parent_id", parentID).Error; err != nil {
		return nil, err
	}
	article.ParentID = parentID
	return article, nil
}

// AttachTag associates the tag with the article. Attaching an already
// attached tag is a no-op.
func (s *ArticleService) AttachTag(id uint, tag *db.Tag) error {
	article, err := s.Get(id)
	if err != nil {
		return err
	}
	return s.db.Model(article).Association("Tags").Append(tag)
}

// DetachTag removes the association. Detaching an absent tag is a
// no-op.
func (s *ArticleService) DetachTag(id uint, tag *db.Tag) error {
	article, err := s.Get(id)
	if err != nil {
		return err
	}
	return s.db.Model(article).Association("Tags").Delete(tag)
}

// Delete removes the article for good, cascading to its versions, log
// entries, files and tag associations. Child articles survive with
// their parent reference nulled.
func (s *ArticleService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var article db.Article
		if err := tx.First(&article, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrArticleNotFound
			}
			return err
		}

		if err := tx.Model(&db.Article{}).Where("parent_id = ?", id).Update("parent_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&article).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", id).Delete(&db.ArticleVersion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", id).Delete(&db.ArticleLogEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", id).Delete(&db.File{}).Error; err != nil {
			return err
		}

		return tx.Unscoped().Delete(&article).Error
	})
}

func (s *ArticleService) ensureExists(id uint) error {
	var article db.Article
	if err := s.db.Select("id").First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrArticleNotFound
		}
		return err
	}
	return nil
}

// checkAncestry walks up from candidate and fails when id shows up in
// the chain. The walk is bounded by the total article count, so a
// pre-existing corrupt cycle cannot loop forever.
func (s *ArticleService) checkAncestry(id, candidate uint) error {
	var total int64
	if err := s.db.Model(&db.Article{}).Count(&total).Error; err != nil {
		return err
	}

	current := candidate
	for i := int64(0); i <= total; i++ {
		var row struct{ ParentID *uint }
		if err := s.db.Model(&db.Article{}).Select("parent_id").Where("id = ?", current).Scan(&row).Error; err != nil {
			return err
		}
		if row.ParentID == nil {
			return nil
		}
		if *row.ParentID == id {
			return ErrParentCycle
		}
		current = *row.ParentID
	}
	return ErrParentCycle
}
