package service

import (
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/wikivault/internal/db"
)

// EditorService orchestrates directory and version mutations together
// with their audit entries. Every method runs in a single transaction,
// so a version is never durably visible without its log entry and
// vice versa.
type EditorService struct {
	db *gorm.DB
}

// NewEditorService creates an EditorService instance.
func NewEditorService(gdb *gorm.DB) *EditorService {
	return &EditorService{db: gdb}
}

// CreateArticleInput represents fields accepted when creating an
// article through the editor.
type CreateArticleInput struct {
	Category string
	Name     string
	Title    string
	// Source is the initial content; empty means the article starts
	// without a version.
	Source   string
	ParentID *uint
	AuthorID *uint
	Tags     []string
	Comment  string
}

// CreateArticle creates the article, its creation log entry and, when
// initial content or tags are given, the first version and the
// matching source/tags entries.
func (s *EditorService) CreateArticle(input CreateArticleInput) (*db.Article, error) {
	var created *db.Article
	err := s.db.Transaction(func(tx *gorm.DB) error {
		directory := NewArticleService(tx)
		logs := NewRevisionLogService(tx)

		article, err := directory.Create(ArticleInput{
			Category: input.Category,
			Name:     input.Name,
			Title:    input.Title,
			ParentID: input.ParentID,
			AuthorID: input.AuthorID,
		})
		if err != nil {
			return err
		}

		if _, err := logs.Append(article.ID, db.LogTypeNew, NewMeta{}, input.Comment); err != nil {
			return err
		}

		if input.Source != "" {
			version, err := NewVersionService(tx).Append(article.ID, input.Source)
			if err != nil {
				return err
			}
			if _, err := logs.Append(article.ID, db.LogTypeSource, SourceMeta{VersionID: version.ID}, ""); err != nil {
				return err
			}
		}

		if len(input.Tags) > 0 {
			if _, err := setTags(tx, article, input.Tags, ""); err != nil {
				return err
			}
		}

		created = article
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// EditSource appends a new version and its source log entry.
func (s *EditorService) EditSource(articleID uint, source, comment string) (*db.ArticleVersion, error) {
	var version *db.ArticleVersion
	err := s.db.Transaction(func(tx *gorm.DB) error {
		v, err := NewVersionService(tx).Append(articleID, source)
		if err != nil {
			return err
		}
		if _, err := NewRevisionLogService(tx).Append(articleID, db.LogTypeSource, SourceMeta{VersionID: v.ID}, comment); err != nil {
			return err
		}
		version = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return version, nil
}

// SetTitle updates the title and logs the change. An unchanged title
// is a no-op with no log entry.
func (s *EditorService) SetTitle(articleID uint, title, comment string) (*db.Article, error) {
	var updated *db.Article
	err := s.db.Transaction(func(tx *gorm.DB) error {
		directory := NewArticleService(tx)

		article, err := directory.Get(articleID)
		if err != nil {
			return err
		}
		if article.Title == title {
			updated = article
			return nil
		}

		old := article.Title
		article, err = directory.SetTitle(articleID, title)
		if err != nil {
			return err
		}
		if _, err := NewRevisionLogService(tx).Append(articleID, db.LogTypeTitle, TitleMeta{Old: old, New: title}, comment); err != nil {
			return err
		}

		updated = article
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Rename moves the article to a new (category, name) pair and logs the
// change using full names. Empty arguments keep the current value.
func (s *EditorService) Rename(articleID uint, category, name, comment string) (*db.Article, error) {
	var updated *db.Article
	err := s.db.Transaction(func(tx *gorm.DB) error {
		directory := NewArticleService(tx)

		article, err := directory.Get(articleID)
		if err != nil {
			return err
		}
		oldCategory, oldName := article.Category, article.Name
		oldFullName := article.FullName()

		article, err = directory.Rename(articleID, category, name)
		if err != nil {
			return err
		}
		// Compare the raw pair, not full names: a name containing ":"
		// can make distinct pairs share one full name.
		if article.Category == oldCategory && article.Name == oldName {
			updated = article
			return nil
		}

		meta := NameMeta{
			Old:         oldFullName,
			New:         article.FullName(),
			OldCategory: oldCategory,
			OldName:     oldName,
			NewCategory: article.Category,
			NewName:     article.Name,
		}
		if _, err := NewRevisionLogService(tx).Append(articleID, db.LogTypeName, meta, comment); err != nil {
			return err
		}

		updated = article
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetParent moves the article in the hierarchy and logs the change.
// Setting the same parent again is a no-op with no log entry.
func (s *EditorService) SetParent(articleID uint, parentID *uint, comment string) (*db.Article, error) {
	var updated *db.Article
	err := s.db.Transaction(func(tx *gorm.DB) error {
		directory := NewArticleService(tx)

		article, err := directory.Get(articleID)
		if err != nil {
			return err
		}
		if equalID(article.ParentID, parentID) {
			updated = article
			return nil
		}

		old := article.ParentID
		article, err = directory.SetParent(articleID, parentID)
		if err != nil {
			return err
		}

		meta := ParentMeta{OldParentID: old, NewParentID: parentID}
		if _, err := NewRevisionLogService(tx).Append(articleID, db.LogTypeParent, meta, comment); err != nil {
			return err
		}

		updated = article
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetTags replaces the article's tag set with the given names,
// creating missing tags through the registry, and logs the diff. An
// empty diff is a no-op with no log entry.
func (s *EditorService) SetTags(articleID uint, names []string, comment string) (*db.Article, error) {
	var updated *db.Article
	err := s.db.Transaction(func(tx *gorm.DB) error {
		article, err := NewArticleService(tx).Get(articleID)
		if err != nil {
			return err
		}

		article, err = setTags(tx, article, names, comment)
		if err != nil {
			return err
		}
		updated = article
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// setTags diffs the current tag set against names and records one tags
// entry covering the whole change. Runs inside the caller's
// transaction.
func setTags(tx *gorm.DB, article *db.Article, names []string, comment string) (*db.Article, error) {
	registry := NewTagService(tx)

	wanted := make(map[string]*db.Tag, len(names))
	for _, name := range names {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if normalized == "" {
			continue
		}
		if _, ok := wanted[normalized]; ok {
			continue
		}
		tag, err := registry.CreateOrGet(normalized)
		if err != nil {
			return nil, err
		}
		wanted[normalized] = tag
	}

	current := make(map[string]db.Tag, len(article.Tags))
	for _, tag := range article.Tags {
		current[tag.Name] = tag
	}

	var added, removed []string
	var next []db.Tag
	for name, tag := range wanted {
		next = append(next, *tag)
		if _, ok := current[name]; !ok {
			added = append(added, name)
		}
	}
	for name := range current {
		if _, ok := wanted[name]; !ok {
			removed = append(removed, name)
		}
	}
	if len(added) == 0 && len(removed) == 0 {
		return article, nil
	}
	sort.Strings(added)
	sort.Strings(removed)

	if len(next) == 0 {
		if err := tx.Model(article).Association("Tags").Clear(); err != nil {
			return nil, err
		}
	} else if err := tx.Model(article).Association("Tags").Replace(next); err != nil {
		return nil, err
	}

	meta := TagsMeta{Added: added, Removed: removed}
	if _, err := NewRevisionLogService(tx).Append(article.ID, db.LogTypeTags, meta, comment); err != nil {
		return nil, err
	}

	article.Tags = next
	return article, nil
}

func equalID(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
