package models

import (
	"time"

	"github.com/google/uuid"
)

// RenderFormat is the output format of a rendering
type RenderFormat string

const (
	FormatMarkdown RenderFormat = "markdown"
	FormatHTML     RenderFormat = "html"
	FormatDOCX     RenderFormat = "docx"
	FormatPDF      RenderFormat = "pdf"
)

// Valid reports whether f is a supported format
func (f RenderFormat) Valid() bool {
	switch f {
	case FormatMarkdown, FormatHTML, FormatDOCX, FormatPDF:
		return true
	}
	return false
}

// Extension returns the file extension used when exporting the format
func (f RenderFormat) Extension() string {
	switch f {
	case FormatHTML:
		return ".html"
	default:
		return ".md"
	}
}

// Rendering is a disposable cache of a version projected into a format
type Rendering struct {
	ID           uuid.UUID    `json:"id"`
	VersionID    uuid.UUID    `json:"document_version_id"`
	Format       RenderFormat `json:"format"`
	RenderedText string       `json:"rendered_text"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
