package render

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Markdown turns article source into sanitized HTML. It implements the
// renderer collaborator consumed by the version service; the storage
// core itself never invokes it.
type Markdown struct {
	engine    goldmark.Markdown
	sanitizer *bluemonday.Policy
}

// NewMarkdown creates a Markdown renderer with GFM extensions and a
// user-generated-content sanitizer policy.
func NewMarkdown() *Markdown {
	return &Markdown{
		engine: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
			goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
		),
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// Render converts markdown source to sanitized HTML.
func (m *Markdown) Render(source string) (string, error) {
	var buf bytes.Buffer
	if err := m.engine.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return m.sanitizer.Sanitize(buf.String()), nil
}
