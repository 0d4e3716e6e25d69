package raster

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Gray16 is an Image backed by an *image.Gray16.
type Gray16 struct {
	// Name identifies the image, usually the file it was read from
	Name string

	m *image.Gray16
}

// NewGray16 wraps m, which is used directly rather than copied. The image is
// re-based so that its top-left pixel is (0, 0).
func NewGray16(name string, m *image.Gray16) *Gray16 {
	if m.Rect.Min != (image.Point{}) {
		dup := *m
		dup.Rect = dup.Rect.Sub(dup.Rect.Min)
		m = &dup
	}
	return &Gray16{
		Name: name,
		m:    m,
	}
}

// FromImage converts m to 16-bit grayscale.
func FromImage(name string, m image.Image) *Gray16 {
	if g, ok := m.(*image.Gray16); ok {
		return NewGray16(name, g)
	}

	b := m.Bounds()
	g := image.NewGray16(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Rect, m, b.Min, draw.Src)

	return NewGray16(name, g)
}

func (g *Gray16) String() string {
	return g.Name
}

// Width returns the number of columns.
func (g *Gray16) Width() int {
	return g.m.Rect.Dx()
}

// Height returns the number of rows.
func (g *Gray16) Height() int {
	return g.m.Rect.Dy()
}

// Pixel returns the raw sample at (x, y).
func (g *Gray16) Pixel(x, y int) int {
	return int(g.m.Gray16At(x, y).Y)
}

// Set stores the raw sample v at (x, y).
func (g *Gray16) Set(x, y int, v uint16) {
	g.m.SetGray16(x, y, color.Gray16{Y: v})
}

// Image returns the current pixel buffer.
func (g *Gray16) Image() *image.Gray16 {
	return g.m
}

// ResizeTo implements Image.
func (g *Gray16) ResizeTo(width, height int, p Policy) error {
	width, height, err := p.dimensions(g.Width(), g.Height(), width, height)
	if err != nil {
		return err
	}

	if width == g.Width() && height == g.Height() {
		return nil
	}

	dst := image.NewGray16(image.Rect(0, 0, width, height))
	p.scaler().Scale(dst, dst.Rect, g.m, g.m.Rect, draw.Src, nil)
	g.m = dst

	return nil
}
