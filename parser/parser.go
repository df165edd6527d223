// Package parser extracts plain text from in-memory office documents.
// The text is used as a cheap probe: a document that yields none is
// treated as empty or corrupt.
package parser

import (
	"context"
	"errors"
)

// Format identifies a document container format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatPPTX Format = "pptx"
	FormatXLSX Format = "xlsx"
)

var (
	// ErrEmptyContent is returned when a document has no extractable text.
	ErrEmptyContent = errors.New("parser: no extractable content")

	// ErrUnknownFormat is returned when the buffer matches no known format.
	ErrUnknownFormat = errors.New("parser: unknown document format")
)

// Extractor can pull text out of a specific document format.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
	SupportedFormats() []Format
}
