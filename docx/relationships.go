// Package docx reads the accessibility-relevant parts of a WordprocessingML
// package: the main document's relationship manifest and its drawing
// descriptors.
package docx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
)

const (
	// MainPart is the main document content part.
	MainPart = "word/document.xml"
	// RelationshipsPart is the relationship manifest of MainPart.
	RelationshipsPart = "word/_rels/document.xml.rels"

	// ImageRelType is the transitional image relationship type.
	ImageRelType       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	strictImageRelType = "http://purl.oclc.org/ooxml/officeDocument/relationships/image"
)

// ErrMalformedManifest is returned when the relationship manifest is not
// a parseable Relationships document.
var ErrMalformedManifest = errors.New("docx: malformed relationship manifest")

// Relationship is one entry of a .rels manifest.
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

// IsImage reports whether the relationship points at an embedded image.
func (r Relationship) IsImage() bool {
	if r.TargetMode == "External" {
		return false
	}
	return r.Type == ImageRelType || r.Type == strictImageRelType
}

// relationships represents the .rels XML structure.
type relationships struct {
	XMLName xml.Name       `xml:"Relationships"`
	Rels    []Relationship `xml:"Relationship"`
}

// ResolveRelationships parses a relationship manifest and keeps only the
// image relationships, in manifest order.
func ResolveRelationships(manifest []byte) ([]Relationship, error) {
	var rels relationships
	if err := xml.Unmarshal(manifest, &rels); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedManifest, err)
	}

	images := make([]Relationship, 0, len(rels.Rels))
	for _, rel := range rels.Rels {
		if rel.IsImage() {
			images = append(images, rel)
		}
	}
	return images, nil
}

// EntryReader looks up raw entry bytes by name. A missing entry is
// ok=false with a nil error.
type EntryReader interface {
	Read(name string) (data []byte, ok bool, err error)
}

// Image is an embedded image resolved to its package entry.
type Image struct {
	Target    string // relationship target as written in the manifest
	EntryPath string // resolved entry name inside the package
	Data      []byte
}

// LoadImages joins image relationships against the package entries.
// Targets that do not resolve to a readable entry are dropped.
func LoadImages(r EntryReader, rels []Relationship) []Image {
	var images []Image
	for _, rel := range rels {
		entry := EntryPath(rel.Target)

		data, ok, err := r.Read(entry)
		if err != nil {
			slog.Debug("docx: failed to read image entry", "path", entry, "rId", rel.ID, "error", err)
			continue
		}
		if !ok {
			slog.Debug("docx: image entry not found in package", "path", entry, "rId", rel.ID)
			continue
		}

		images = append(images, Image{
			Target:    rel.Target,
			EntryPath: entry,
			Data:      data,
		})
	}
	return images
}

// EntryPath resolves a relationship target of the main document to a
// package entry name. Relative targets are relative to word/, absolute
// ones to the package root.
func EntryPath(target string) string {
	target = strings.ReplaceAll(target, "\\", "/")
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Clean(path.Join(path.Dir(MainPart), target))
}
