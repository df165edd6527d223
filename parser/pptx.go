package parser

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/brunobiangulo/docaccess/container"
)

// DrawingML namespaces, transitional and strict.
var drawingNS = []string{
	"http://schemas.openxmlformats.org/drawingml/2006/main",
	"http://purl.oclc.org/ooxml/drawingml/main",
}

type PPTXExtractor struct{}

func (p *PPTXExtractor) SupportedFormats() []Format { return []Format{FormatPPTX} }

func (p *PPTXExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	c, err := container.Open(data)
	if err != nil {
		return "", fmt.Errorf("opening PPTX: %w", err)
	}

	// Collect slide files (ppt/slides/slide1.xml, slide2.xml, ...)
	slides := make(map[int]string)
	for _, name := range c.Names("ppt/slides/slide") {
		if !strings.HasSuffix(name, ".xml") {
			continue
		}
		if num := extractSlideNumber(name); num > 0 {
			slides[num] = name
		}
	}

	// Sort by slide number
	nums := make([]int, 0, len(slides))
	for n := range slides {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	var parts []string
	for _, num := range nums {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		xmlData, ok, err := c.Read(slides[num])
		if err != nil || !ok {
			continue
		}

		text, err := collectText(xmlData, drawingNS...)
		if err != nil {
			return "", fmt.Errorf("parsing slide %d: %w", num, err)
		}
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n"), nil
}

func extractSlideNumber(name string) int {
	// Extract number from "ppt/slides/slide1.xml"
	name = strings.TrimPrefix(name, "ppt/slides/slide")
	name = strings.TrimSuffix(name, ".xml")
	var num int
	fmt.Sscanf(name, "%d", &num)
	return num
}
