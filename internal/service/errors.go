package service

import (
	"errors"
	"fmt"
)

// Base error kinds. Every error surfaced by the services wraps exactly
// one of these, so callers can classify any failure with errors.Is and
// map it to a response without string matching.
var (
	ErrValidation     = errors.New("validation failed")
	ErrConflict       = errors.New("conflict")
	ErrNotFound       = errors.New("not found")
	ErrAlreadyDeleted = errors.New("already deleted")
	ErrUnavailable    = errors.New("unavailable")
)

var (
	ErrTagNameRequired = fmt.Errorf("%w: tag name is required", ErrValidation)
	ErrNameRequired    = fmt.Errorf("%w: article name is required", ErrValidation)
	ErrSelfParent      = fmt.Errorf("%w: article cannot be its own parent", ErrValidation)
	ErrParentCycle     = fmt.Errorf("%w: parent change would create a cycle", ErrValidation)

	ErrArticleExists    = fmt.Errorf("%w: article with this category and name already exists", ErrConflict)
	ErrFileExists       = fmt.Errorf("%w: a live file with this name already exists", ErrConflict)
	ErrRevisionConflict = fmt.Errorf("%w: revision number allocation exhausted retries", ErrConflict)

	ErrArticleNotFound = fmt.Errorf("%w: article", ErrNotFound)
	ErrVersionNotFound = fmt.Errorf("%w: article version", ErrNotFound)
	ErrFileNotFound    = fmt.Errorf("%w: file", ErrNotFound)

	ErrFileAlreadyDeleted = fmt.Errorf("%w: file", ErrAlreadyDeleted)

	ErrSiteUnavailable = fmt.Errorf("%w: site registry could not resolve site", ErrUnavailable)

	ErrFileNameRequired = fmt.Errorf("%w: file name is required", ErrValidation)
)
