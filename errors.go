package docaccess

import "errors"

var (
	// ErrEmptyFile is returned when the text probe finds no content or
	// cannot read the document.
	ErrEmptyFile = errors.New("docaccess: empty file")

	// ErrInvalidStructure is returned when the main document part is missing.
	ErrInvalidStructure = errors.New("docaccess: main document part missing")

	// ErrInvalidRelationships is returned when the relationship manifest of
	// the main document part is missing.
	ErrInvalidRelationships = errors.New("docaccess: relationship manifest missing")

	// ErrInvalidConfig is returned for invalid configuration values.
	ErrInvalidConfig = errors.New("docaccess: invalid configuration")
)

// reasonFor maps an analysis failure to the reason of its Corrupted result.
// Anything unclassified, including a corrupt archive or manifest, is
// reported as ReasonCorrupted.
func reasonFor(err error) string {
	switch {
	case errors.Is(err, ErrEmptyFile):
		return ReasonEmptyFile
	case errors.Is(err, ErrInvalidStructure):
		return ReasonInvalidStructure
	case errors.Is(err, ErrInvalidRelationships):
		return ReasonInvalidRelationships
	default:
		return ReasonCorrupted
	}
}
