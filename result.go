package docaccess

import "encoding/json"

// Corruption reasons reported by Corrupted results.
const (
	ReasonEmptyFile            = "Empty File"
	ReasonInvalidStructure     = "Invalid Document Structure"
	ReasonInvalidRelationships = "Invalid Document Relationships"
	ReasonCorrupted            = "File is corrupted"
)

// Messages of Valid and Invalid results.
const (
	MessageValid                 = "File is valid"
	MessageMissingAltText        = "File contains images which do not contain alternate text"
	MessageBadContrast           = "File contains images with bad contrast"
	MessageMissingAltAndContrast = "File contains images which do not contain alternate text and images with bad contrast"
)

// Kind names a Result variant.
type Kind string

const (
	KindCorrupted Kind = "corrupted"
	KindInvalid   Kind = "invalid"
	KindValid     Kind = "valid"
)

// Result is the outcome of one analysis. It is exactly one of Corrupted,
// Invalid or Valid.
type Result interface {
	Kind() Kind
	Message() string
	isResult()
}

// AltTextFinding is an image descriptor without alternate text.
type AltTextFinding struct {
	ImageTag string `json:"imageTag"`
}

// ContrastFinding is an embedded image whose contrast ratio is below the
// configured threshold.
type ContrastFinding struct {
	ImagePath     string  `json:"imagePath"`
	ContrastRatio float64 `json:"contrastRatio"`
}

// Corrupted means the document could not be analysed at all.
type Corrupted struct {
	Reason string
}

func (Corrupted) Kind() Kind        { return KindCorrupted }
func (c Corrupted) Message() string { return c.Reason }
func (Corrupted) isResult()         {}

func (c Corrupted) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Message string `json:"message"`
	}{c.Reason})
}

// Invalid means the document parsed but has accessibility defects. At least
// one of the finding lists is non-empty.
type Invalid struct {
	MissingAltText []AltTextFinding
	BadContrast    []ContrastFinding
}

func (Invalid) Kind() Kind { return KindInvalid }

func (i Invalid) Message() string {
	switch {
	case len(i.MissingAltText) > 0 && len(i.BadContrast) > 0:
		return MessageMissingAltAndContrast
	case len(i.BadContrast) > 0:
		return MessageBadContrast
	default:
		return MessageMissingAltText
	}
}

func (Invalid) isResult() {}

func (i Invalid) MarshalJSON() ([]byte, error) {
	alt, bad := i.MissingAltText, i.BadContrast
	if alt == nil {
		alt = []AltTextFinding{}
	}
	if bad == nil {
		bad = []ContrastFinding{}
	}
	return json.Marshal(struct {
		Message                    string            `json:"message"`
		ImagesMissingAlternateText []AltTextFinding  `json:"imagesMissingAlternateText"`
		BadContrastImages          []ContrastFinding `json:"badContrastImages"`
	}{i.Message(), alt, bad})
}

// Valid means no defects were found.
type Valid struct{}

func (Valid) Kind() Kind      { return KindValid }
func (Valid) Message() string { return MessageValid }
func (Valid) isResult()       {}

func (v Valid) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Message string `json:"message"`
	}{MessageValid})
}

// classify builds the Result for a fully parsed document.
func classify(alt []AltTextFinding, bad []ContrastFinding) Result {
	if len(alt) == 0 && len(bad) == 0 {
		return Valid{}
	}
	return Invalid{MissingAltText: alt, BadContrast: bad}
}
