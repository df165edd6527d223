// Package container indexes a ZIP-based office package held in memory.
package container

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ErrCorruptArchive is returned when the buffer is not a readable ZIP archive.
var ErrCorruptArchive = errors.New("container: corrupt archive")

// Container is a read-only name index over the entries of a ZIP archive.
type Container struct {
	files map[string]*zip.File
}

// Open indexes data as a ZIP archive. Entry contents are not validated.
func Open(data []byte) (*Container, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}

	// Build file index for quick lookup
	files := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		files[f.Name] = f
	}
	return &Container{files: files}, nil
}

// Has reports whether an entry named path exists.
func (c *Container) Has(path string) bool {
	_, ok := c.files[path]
	return ok
}

// Read returns the bytes of the entry at path. A missing entry is reported
// with ok=false and a nil error; err is set only when the entry exists but
// cannot be decompressed.
func (c *Container) Read(path string) (data []byte, ok bool, err error) {
	f := c.files[path]
	if f == nil {
		return nil, false, nil
	}

	rc, err := f.Open()
	if err != nil {
		return nil, true, fmt.Errorf("opening %s: %w", path, err)
	}
	defer rc.Close()

	data, err = io.ReadAll(rc)
	if err != nil {
		return nil, true, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, true, nil
}

// ReadText is Read for XML and other text parts.
func (c *Container) ReadText(path string) (string, bool, error) {
	data, ok, err := c.Read(path)
	if err != nil || !ok {
		return "", ok, err
	}
	return string(data), true, nil
}

// Names returns every entry name with the given prefix, sorted.
func (c *Container) Names(prefix string) []string {
	var names []string
	for name := range c.files {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Len returns the number of entries in the archive.
func (c *Container) Len() int { return len(c.files) }
