/*
Package preview renders a channel as a small-palette PNG so it can be checked
by eye before a stream is handed to the consumer.

Raw channels rarely use the full 16-bit range so each one is stretched
between its own darkest and brightest samples before being reduced to a
palette of gray levels.
*/
package preview

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/ericpauley/go-quantize/quantize"
	"golang.org/x/image/draw"
)

const (
	// DefaultColors is the palette size used when none is given
	DefaultColors = 16

	maxColors = 256
)

var errBadColors = errors.New("preview: palette must have between 2 and 256 colors")

// Sampler is the read-only view of a channel needed to render it.
type Sampler interface {
	Width() int
	Height() int
	Pixel(x, y int) int
}

func bounds(m Sampler) (lo, hi int) {
	lo, hi = 0xffff, 0
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			v := m.Pixel(x, y) & 0xffff
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	return
}

// stretch maps the sample range of m onto the full 16-bit range.
func stretch(m Sampler) *image.Gray16 {
	g := image.NewGray16(image.Rect(0, 0, m.Width(), m.Height()))
	lo, hi := bounds(m)
	if hi <= lo {
		return g
	}
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			v := (m.Pixel(x, y)&0xffff - lo) * 0xffff / (hi - lo)
			g.SetGray16(x, y, color.Gray16{Y: uint16(v)})
		}
	}
	return g
}

// Render returns m contrast-stretched and reduced to at most colors gray
// levels.
func Render(m Sampler, colors int) (*image.Paletted, error) {
	if colors < 2 || colors > maxColors {
		return nil, errBadColors
	}
	if m.Width() <= 0 || m.Height() <= 0 {
		return nil, errors.New("preview: image has no pixels")
	}

	g := stretch(m)
	b := g.Bounds()

	q := quantize.MedianCutQuantizer{}
	pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, colors), g))
	draw.Draw(pm, b, g, b.Min, draw.Src)

	return pm, nil
}

// Encode writes m to w as a paletted PNG.
func Encode(w io.Writer, m Sampler, colors int) error {
	pm, err := Render(m, colors)
	if err != nil {
		return err
	}
	return png.Encode(w, pm)
}
