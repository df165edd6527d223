// Package testdoc builds small in-memory documents for tests.
package testdoc

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

// Entry is one file inside a ZIP package, written in order.
type Entry struct {
	Name string
	Data []byte
}

// Zip writes entries into a ZIP archive.
func Zip(t testing.TB, entries ...Entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		fw, err := w.Create(e.Name)
		if err != nil {
			t.Fatalf("creating zip entry %s: %v", e.Name, err)
		}
		if _, err := fw.Write(e.Data); err != nil {
			t.Fatalf("writing zip entry %s: %v", e.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing zip writer: %v", err)
	}
	return buf.Bytes()
}

const documentHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"
            xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"
            xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
            xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
            xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture">
  <w:body>
`

// DocumentXML returns a word/document.xml with one text paragraph followed
// by the given raw body markup (typically drawings).
func DocumentXML(text string, body ...string) []byte {
	var b strings.Builder
	b.WriteString(documentHeader)
	fmt.Fprintf(&b, "    <w:p><w:r><w:t>%s</w:t></w:r></w:p>\n", text)
	for _, s := range body {
		b.WriteString(s)
		b.WriteString("\n")
	}
	b.WriteString("  </w:body>\n</w:document>")
	return []byte(b.String())
}

// Drawing returns an inline drawing paragraph. docPrAttrs is inserted
// verbatim into the wp:docPr tag; embed is the blip relationship id.
func Drawing(docPrAttrs, embed string) string {
	return fmt.Sprintf(`    <w:p><w:r><w:drawing><wp:inline>
      <wp:docPr %s/>
      <a:graphic><a:graphicData><pic:pic><pic:blipFill><a:blip r:embed="%s"/></pic:blipFill></pic:pic></a:graphicData></a:graphic>
    </wp:inline></w:drawing></w:r></w:p>`, docPrAttrs, embed)
}

// Rel is a relationship for Relationships.
type Rel struct {
	ID, Type, Target string
}

// ImageRel is an image relationship to target.
func ImageRel(id, target string) Rel {
	return Rel{ID: id, Type: "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image", Target: target}
}

// Relationships renders a .rels manifest.
func Relationships(rels ...Rel) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` + "\n")
	for _, r := range rels {
		fmt.Fprintf(&b, `  <Relationship Id="%s" Type="%s" Target="%s"/>`+"\n", r.ID, r.Type, r.Target)
	}
	b.WriteString(`</Relationships>`)
	return []byte(b.String())
}

// SolidPNG encodes a w x h PNG of a single colour.
func SolidPNG(t testing.TB, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return encodePNG(t, img)
}

// SplitPNG encodes a PNG whose left half is left and right half is right.
func SplitPNG(t testing.TB, w, h int, left, right color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := right
			if x < w/2 {
				c = left
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return encodePNG(t, img)
}

func encodePNG(t testing.TB, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding PNG: %v", err)
	}
	return buf.Bytes()
}

// PDF builds a single-page PDF that shows text in Helvetica. An empty text
// yields a page with an empty content stream.
func PDF(text string) []byte {
	content := ""
	if text != "" {
		content = fmt.Sprintf("BT /F1 24 Tf 72 720 Td (%s) Tj ET", text)
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}

	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", len(objects)+1)
	b.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return b.Bytes()
}
