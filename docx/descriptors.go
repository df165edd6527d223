package docx

import "regexp"

var (
	// docPrTag matches the opening tag of a drawing's non-visual properties,
	// self-closing or not.
	docPrTag = regexp.MustCompile(`<wp:docPr\b[^>]*>`)

	// attribute matches one name="value" pair in either quote style. Quoted
	// values are consumed whole so their contents never match as names.
	attribute = regexp.MustCompile(`\s([\w:.-]+)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
)

// Finding is a drawing descriptor without alternate text.
type Finding struct {
	Tag string // raw matched tag markup
}

// ScanDescriptors reports every wp:docPr tag in the document markup whose
// descr attribute is missing or empty, in document order.
func ScanDescriptors(documentXML string) []Finding {
	var findings []Finding
	for _, tag := range docPrTag.FindAllString(documentXML, -1) {
		if !hasDescription(tag) {
			findings = append(findings, Finding{Tag: tag})
		}
	}
	return findings
}

func hasDescription(tag string) bool {
	for _, m := range attribute.FindAllStringSubmatch(tag, -1) {
		if m[1] == "descr" {
			return m[2] != "" || m[3] != ""
		}
	}
	return false
}
