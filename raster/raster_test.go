package raster

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestImage(width, height int, pattern func(x, y int) uint16) *Gray16 {
	m := image.NewGray16(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			m.SetGray16(x, y, color.Gray16{Y: pattern(x, y)})
		}
	}
	return NewGray16("test", m)
}

func constant(v uint16) func(int, int) uint16 {
	return func(int, int) uint16 { return v }
}

func TestResampleDimensions(t *testing.T) {
	tables := []struct {
		width, height int
	}{
		{1024, 1024},
		{512, 512},
		{2048, 1536},
		{300, 700},
		{1, 1},
		{1025, 3},
	}

	for _, p := range []Policy{DefaultPolicy, {Interpolation: Bilinear}, {Interpolation: Bicubic}, {}} {
		for _, table := range tables {
			m := newTestImage(table.width, table.height, func(x, y int) uint16 { return uint16(x ^ y) })
			require.NoError(t, Resample(m, 1024, 1024, p))
			assert.Equal(t, 1024, m.Width(), "%dx%d %+v", table.width, table.height, p)
			assert.Equal(t, 1024, m.Height(), "%dx%d %+v", table.width, table.height, p)
		}
	}
}

func TestResampleUniform(t *testing.T) {
	for _, size := range []int{4, 32, 100} {
		m := newTestImage(size, size*2, constant(4000))
		require.NoError(t, Resample(m, 17, 17, DefaultPolicy))
		for x := 0; x < m.Width(); x++ {
			for y := 0; y < m.Height(); y++ {
				assert.InDelta(t, 4000, m.Pixel(x, y), 1)
			}
		}
	}
}

func TestResampleAverage(t *testing.T) {
	// Alternating columns of 0 and 1000 collapse to their mean when every
	// source pixel contributes
	m := newTestImage(64, 64, func(x, y int) uint16 { return uint16(x%2) * 1000 })
	require.NoError(t, Resample(m, 4, 4, DefaultPolicy))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			assert.InDelta(t, 500, m.Pixel(x, y), 50)
		}
	}
}

func TestResampleSameSize(t *testing.T) {
	m := newTestImage(3, 2, func(x, y int) uint16 { return uint16(x*10 + y) })
	before := m.Image()
	require.NoError(t, Resample(m, 3, 2, DefaultPolicy))
	assert.Same(t, before, m.Image())
	assert.Equal(t, 21, m.Pixel(2, 1))
}

func TestResampleConstrain(t *testing.T) {
	m := newTestImage(200, 100, constant(1))
	require.NoError(t, m.ResizeTo(50, 0, DefaultPolicy))
	assert.Equal(t, 50, m.Width())
	assert.Equal(t, 25, m.Height())

	m = newTestImage(200, 100, constant(1))
	assert.Error(t, m.ResizeTo(50, 0, Policy{Interpolation: Bilinear}))
}

func TestResampleInvalid(t *testing.T) {
	m := newTestImage(4, 4, constant(1))
	assert.Error(t, Resample(m, 0, 0, DefaultPolicy))
	assert.Error(t, Resample(m, -1, 4, DefaultPolicy))
	assert.Error(t, Resample(nil, 4, 4, DefaultPolicy))
	assert.Equal(t, 4, m.Width())
}

func TestParseInterpolation(t *testing.T) {
	for _, i := range []Interpolation{None, Bilinear, Bicubic} {
		got, err := ParseInterpolation(i.String())
		require.NoError(t, err)
		assert.Equal(t, i, got)
	}

	got, err := ParseInterpolation("BiLinear")
	require.NoError(t, err)
	assert.Equal(t, Bilinear, got)

	_, err = ParseInterpolation("lanczos")
	assert.Error(t, err)
}

func TestFromImage(t *testing.T) {
	src := image.NewGray(image.Rect(5, 5, 7, 8))
	src.SetGray(6, 7, color.Gray{Y: 0x80})

	m := FromImage("gray8", src)
	assert.Equal(t, 2, m.Width())
	assert.Equal(t, 3, m.Height())
	assert.Equal(t, 0x8080, m.Pixel(1, 2))
	assert.Equal(t, 0, m.Pixel(0, 0))
}

func TestNewGray16Rebase(t *testing.T) {
	src := image.NewGray16(image.Rect(10, 20, 12, 22))
	src.SetGray16(11, 21, color.Gray16{Y: 9})

	m := NewGray16("offset", src)
	assert.Equal(t, 9, m.Pixel(1, 1))
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "c1.png")

	m := newTestImage(3, 2, func(x, y int) uint16 { return uint16(x*1000 + y) })
	f, err := os.Create(file)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, m.Image()))
	require.NoError(t, f.Close())

	got, err := Open(file)
	require.NoError(t, err)
	assert.Equal(t, "c1.png", got.Name)
	assert.Equal(t, 3, got.Width())
	assert.Equal(t, 2, got.Height())
	assert.Equal(t, 2001, got.Pixel(2, 1))

	_, err = Open(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a.TIF"))
	assert.True(t, Supported("b.png"))
	assert.False(t, Supported("c.raw"))
	assert.False(t, Supported("noext"))
}
