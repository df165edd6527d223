package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/brunobiangulo/docaccess/container"
)

type Registry struct {
	extractors map[Format]Extractor
}

func NewRegistry() *Registry {
	r := &Registry{extractors: make(map[Format]Extractor)}
	// Register built-in extractors
	pdf := &PDFExtractor{}
	docx := &DOCXExtractor{}
	xlsx := &XLSXExtractor{}
	pptx := &PPTXExtractor{}

	for _, e := range []Extractor{pdf, docx, xlsx, pptx} {
		for _, f := range e.SupportedFormats() {
			r.extractors[f] = e
		}
	}
	return r
}

func (r *Registry) Get(format Format) (Extractor, error) {
	e, ok := r.extractors[format]
	if !ok {
		return nil, fmt.Errorf("no extractor for format: %s", format)
	}
	return e, nil
}

func (r *Registry) Register(format Format, e Extractor) {
	r.extractors[format] = e
}

// Detect sniffs the container format from the buffer contents, ignoring
// whatever type the document was declared as.
func Detect(data []byte) (Format, error) {
	if len(data) == 0 {
		return "", ErrEmptyContent
	}
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return FormatPDF, nil
	}

	c, err := container.Open(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnknownFormat, err)
	}
	for _, name := range c.Names("") {
		switch {
		case strings.HasPrefix(name, "word/"):
			return FormatDOCX, nil
		case strings.HasPrefix(name, "ppt/"):
			return FormatPPTX, nil
		case strings.HasPrefix(name, "xl/"):
			return FormatXLSX, nil
		}
	}
	return "", ErrUnknownFormat
}

// Extract detects the format of data and returns its text. Whitespace-only
// text is reported as ErrEmptyContent.
func (r *Registry) Extract(ctx context.Context, data []byte) (string, error) {
	format, err := Detect(data)
	if err != nil {
		return "", err
	}

	e, err := r.Get(format)
	if err != nil {
		return "", err
	}

	text, err := e.Extract(ctx, data)
	if err != nil {
		return "", fmt.Errorf("extracting %s: %w", format, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyContent
	}
	return text, nil
}
