package docaccess

import "strings"

// MediaType is the declared type of an uploaded document.
type MediaType string

const (
	MediaPDF  MediaType = "application/pdf"
	MediaDOCX MediaType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Supported reports whether m is one of the accepted document types.
func (m MediaType) Supported() bool {
	return m == MediaPDF || m == MediaDOCX
}

// MediaTypeFromExt maps a file extension (with or without the dot, any
// case) to its media type.
func MediaTypeFromExt(ext string) (MediaType, bool) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "pdf":
		return MediaPDF, true
	case "docx":
		return MediaDOCX, true
	default:
		return "", false
	}
}

// Document is one uploaded file. Data is not modified by the analysis.
type Document struct {
	Name      string // used in logs only
	Data      []byte
	MediaType MediaType
}
