// Package contrast measures the luminance spread of a raster image.
//
// Luminance is the Rec. 709 weighted sum of the 8-bit channel values, with
// no sRGB linearization:
//
//	L = 0.2126*R + 0.7152*G + 0.0722*B
//
// The contrast ratio is taken between the lightest and darkest pixel of the
// whole image, (Lmax+0.05)/(Lmin+0.05), so it is always >= 1.
package contrast

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultThreshold is the minimum ratio considered readable.
const DefaultThreshold = 4.5

var (
	// ErrDecode is returned when the buffer is not a decodable raster image.
	ErrDecode = errors.New("contrast: cannot decode image")

	// ErrTooLarge is returned when the image has more pixels than allowed.
	ErrTooLarge = errors.New("contrast: image exceeds pixel limit")
)

// Result is the contrast measurement of one image.
type Result struct {
	Ratio  float64 `json:"contrastRatio"`
	Good   bool    `json:"isGoodContrast"`
	Format string  `json:"format"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
}

// Analyzer decodes images and classifies their contrast. The zero value
// uses DefaultThreshold and no pixel limit.
type Analyzer struct {
	Threshold float64
	MaxPixels int
}

// Analyze decodes data and computes its global contrast ratio.
func (a Analyzer) Analyze(data []byte) (Result, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Result{}, fmt.Errorf("%w: empty %s image", ErrDecode, format)
	}
	if a.MaxPixels > 0 && cfg.Width*cfg.Height > a.MaxPixels {
		return Result{}, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	lo, hi := LuminanceRange(img)
	ratio := Ratio(hi, lo)

	threshold := a.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	return Result{
		Ratio:  ratio,
		Good:   ratio >= threshold,
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

// Luminance returns the unnormalized relative luminance of an 8-bit RGB
// sample.
func Luminance(r, g, b uint8) float64 {
	return 0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)
}

// Ratio returns (max(l1,l2)+0.05) / (min(l1,l2)+0.05).
func Ratio(l1, l2 float64) float64 {
	hi := math.Max(l1, l2) + 0.05
	lo := math.Min(l1, l2) + 0.05
	return hi / lo
}

// LuminanceRange returns the darkest and lightest luminance over every pixel
// of img in a single pass. Alpha is ignored.
func LuminanceRange(img image.Image) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	track := func(l float64) {
		if l < lo {
			lo = l
		}
		if l > hi {
			hi = l
		}
	}

	b := img.Bounds()
	switch m := img.(type) {
	case *image.NRGBA:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := m.Pix[m.PixOffset(b.Min.X, y):m.PixOffset(b.Max.X, y)]
			for i := 0; i+2 < len(row); i += 4 {
				track(Luminance(row[i], row[i+1], row[i+2]))
			}
		}
	case *image.Gray:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := m.Pix[m.PixOffset(b.Min.X, y):m.PixOffset(b.Max.X, y)]
			for _, v := range row {
				track(Luminance(v, v, v))
			}
		}
	case *image.NRGBA64:
		// 8 bytes per pixel; the high byte of each channel is its 8-bit value.
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := m.Pix[m.PixOffset(b.Min.X, y):m.PixOffset(b.Max.X, y)]
			for i := 0; i+4 < len(row); i += 8 {
				track(Luminance(row[i], row[i+2], row[i+4]))
			}
		}
	case *image.NYCbCrA:
		ycbcrRange(&m.YCbCr, b, track)
	case *image.YCbCr:
		ycbcrRange(m, b, track)
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				r, g, bl := opaqueRGB(img.At(x, y))
				track(Luminance(r, g, bl))
			}
		}
	}

	if b.Empty() {
		return 0, 0
	}
	return lo, hi
}

func ycbcrRange(m *image.YCbCr, b image.Rectangle, track func(float64)) {
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			yi, ci := m.YOffset(x, y), m.COffset(x, y)
			r, g, bl := color.YCbCrToRGB(m.Y[yi], m.Cb[ci], m.Cr[ci])
			track(Luminance(r, g, bl))
		}
	}
}

// opaqueRGB returns the stored colour channels of c without applying its
// alpha. Premultiplied colours are taken as stored.
func opaqueRGB(c color.Color) (r, g, b uint8) {
	switch c := c.(type) {
	case color.NRGBA:
		return c.R, c.G, c.B
	case color.NRGBA64:
		return uint8(c.R >> 8), uint8(c.G >> 8), uint8(c.B >> 8)
	case color.NYCbCrA:
		return color.YCbCrToRGB(c.Y, c.Cb, c.Cr)
	case color.YCbCr:
		return color.YCbCrToRGB(c.Y, c.Cb, c.Cr)
	case color.Gray:
		return c.Y, c.Y, c.Y
	default:
		r32, g32, b32, _ := c.RGBA()
		return uint8(r32 >> 8), uint8(g32 >> 8), uint8(b32 >> 8)
	}
}
