package parser

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/brunobiangulo/docaccess/container"
)

// WordprocessingML namespaces, transitional and strict.
var wordprocessingNS = []string{
	"http://schemas.openxmlformats.org/wordprocessingml/2006/main",
	"http://purl.oclc.org/ooxml/wordprocessingml/main",
}

type DOCXExtractor struct{}

func (p *DOCXExtractor) SupportedFormats() []Format { return []Format{FormatDOCX} }

// Extract returns the text runs of the main document, headers, footers,
// footnotes and endnotes.
func (p *DOCXExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	c, err := container.Open(data)
	if err != nil {
		return "", fmt.Errorf("opening DOCX: %w", err)
	}

	parts := []string{"word/document.xml"}
	parts = append(parts, c.Names("word/header")...)
	parts = append(parts, c.Names("word/footer")...)
	parts = append(parts, "word/footnotes.xml", "word/endnotes.xml")

	var b strings.Builder
	for _, part := range parts {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		xmlData, ok, err := c.Read(part)
		if err != nil {
			return "", err
		}
		if !ok {
			continue
		}

		text, err := collectText(xmlData, wordprocessingNS...)
		if err != nil {
			return "", fmt.Errorf("parsing %s: %w", part, err)
		}
		if text != "" {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(text)
		}
	}
	return b.String(), nil
}

// collectText concatenates the character data of every <t> element in one
// of the given namespaces. Paragraph ends (<p>) become newlines.
func collectText(data []byte, spaces ...string) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))

	var b strings.Builder
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" && (t.Name.Space == "" || slices.Contains(spaces, t.Name.Space)) {
				inText = true
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteString("\n")
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}
