package container

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"
)

func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, body := range entries {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("creating zip entry %s: %v", name, err)
		}
		if _, err := fw.Write([]byte(body)); err != nil {
			t.Fatalf("writing zip entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing zip writer: %v", err)
	}
	return buf.Bytes()
}

func TestOpenAndRead(t *testing.T) {
	data := buildZip(t, map[string]string{
		"word/document.xml":     "<w:document/>",
		"word/media/image1.png": "png-bytes",
		"[Content_Types].xml":   "<Types/>",
	})

	c, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}

	text, ok, err := c.ReadText("word/document.xml")
	if err != nil || !ok {
		t.Fatalf("ReadText: ok=%v err=%v", ok, err)
	}
	if text != "<w:document/>" {
		t.Errorf("ReadText = %q", text)
	}

	raw, ok, err := c.Read("word/media/image1.png")
	if err != nil || !ok {
		t.Fatalf("Read: ok=%v err=%v", ok, err)
	}
	if string(raw) != "png-bytes" {
		t.Errorf("Read = %q", raw)
	}
}

func TestReadMissingEntry(t *testing.T) {
	c, err := Open(buildZip(t, map[string]string{"a.xml": "a"}))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	data, ok, err := c.Read("word/document.xml")
	if err != nil {
		t.Errorf("missing entry should not be an error, got %v", err)
	}
	if ok || data != nil {
		t.Errorf("expected absent entry, got ok=%v data=%q", ok, data)
	}
	if c.Has("word/document.xml") {
		t.Error("Has reported a missing entry")
	}
}

func TestOpenCorrupt(t *testing.T) {
	inputs := map[string][]byte{
		"empty":   nil,
		"garbage": []byte("this is not a zip archive"),
		"pdf":     []byte("%PDF-1.4\n%%EOF"),
	}
	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := Open(data)
			if !errors.Is(err, ErrCorruptArchive) {
				t.Errorf("Open(%s) error = %v, want ErrCorruptArchive", name, err)
			}
		})
	}
}

func TestNames(t *testing.T) {
	c, err := Open(buildZip(t, map[string]string{
		"word/header2.xml": "",
		"word/header1.xml": "",
		"word/footer1.xml": "",
		"docProps/app.xml": "",
	}))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	got := c.Names("word/header")
	if len(got) != 2 || got[0] != "word/header1.xml" || got[1] != "word/header2.xml" {
		t.Errorf("Names(word/header) = %v", got)
	}
	if n := len(c.Names("")); n != 4 {
		t.Errorf("Names(\"\") returned %d entries, want 4", n)
	}
}
