/*
Package raster models the 16-bit grayscale images supplied as channels to a
conversion run.

An Image exposes its dimensions, a pixel accessor and an in-place resize.
Gray16 is the implementation backed by the standard library image types;
anything else able to answer the same questions can be converted.
*/
package raster

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/image/draw"
)

// Image is a single channel of 16-bit unsigned samples.
type Image interface {
	Width() int
	Height() int
	Pixel(x, y int) int
	// ResizeTo replaces the image's pixels with a resampled copy.
	ResizeTo(width, height int, p Policy) error
}

// Interpolation names a resampling method.
type Interpolation int

const (
	// None picks the nearest source pixel
	None Interpolation = iota

	// Bilinear interpolates between the four nearest source pixels
	Bilinear

	// Bicubic uses the Catmull-Rom cubic
	Bicubic
)

var interpolationNames = [...]string{
	None:     "none",
	Bilinear: "bilinear",
	Bicubic:  "bicubic",
}

func (i Interpolation) String() string {
	if i < 0 || int(i) >= len(interpolationNames) {
		return fmt.Sprintf("Interpolation(%d)", int(i))
	}
	return interpolationNames[i]
}

// ParseInterpolation returns the Interpolation with the given name, ignoring
// case.
func ParseInterpolation(s string) (Interpolation, error) {
	for i, name := range interpolationNames {
		if strings.EqualFold(s, name) {
			return Interpolation(i), nil
		}
	}
	return None, fmt.Errorf("raster: unknown interpolation %q", s)
}

// Policy controls how an image is resized.
type Policy struct {
	// Constrain derives a zero target dimension from the source aspect
	// ratio
	Constrain bool

	// Average widens the filter when downscaling so every source pixel
	// contributes to the result
	Average bool

	// Interpolation is the resampling method
	Interpolation Interpolation
}

// DefaultPolicy is "constrain average interpolation=Bilinear".
var DefaultPolicy = Policy{
	Constrain:     true,
	Average:       true,
	Interpolation: Bilinear,
}

var errBadSize = errors.New("raster: invalid target size")

func (p Policy) scaler() draw.Scaler {
	switch p.Interpolation {
	case Bicubic:
		return draw.CatmullRom
	case Bilinear:
		if p.Average {
			return draw.BiLinear
		}
		return draw.ApproxBiLinear
	default:
		return draw.NearestNeighbor
	}
}

// dimensions resolves the target size for a source of sw by sh pixels.
func (p Policy) dimensions(sw, sh, width, height int) (int, int, error) {
	if p.Constrain && sw > 0 && sh > 0 {
		switch {
		case width == 0 && height > 0:
			width = (sw*height + sh/2) / sh
			if width == 0 {
				width = 1
			}
		case height == 0 && width > 0:
			height = (sh*width + sw/2) / sw
			if height == 0 {
				height = 1
			}
		}
	}
	if width <= 0 || height <= 0 {
		return 0, 0, errBadSize
	}
	return width, height, nil
}

// Resample resizes m to width by height pixels using p.
func Resample(m Image, width, height int, p Policy) error {
	if m == nil {
		return errors.New("raster: no image")
	}
	return m.ResizeTo(width, height, p)
}
