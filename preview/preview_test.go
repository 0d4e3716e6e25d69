package preview

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type grid struct {
	width, height int
	pixel         func(x, y int) int
}

func (g grid) Width() int         { return g.width }
func (g grid) Height() int        { return g.height }
func (g grid) Pixel(x, y int) int { return g.pixel(x, y) }

func TestRender(t *testing.T) {
	// A dim 12-bit ramp
	m := grid{64, 8, func(x, y int) int { return 100 + x*10 }}

	pm, err := Render(m, DefaultColors)
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 64, 8), pm.Bounds())
	assert.LessOrEqual(t, len(pm.Palette), DefaultColors)

	// The ramp is stretched so the ends land near black and white
	lo, _, _, _ := pm.At(0, 0).RGBA()
	hi, _, _, _ := pm.At(63, 0).RGBA()
	assert.Less(t, lo, uint32(0x4000))
	assert.Greater(t, hi, uint32(0xc000))
}

func TestRenderUniform(t *testing.T) {
	pm, err := Render(grid{4, 4, func(int, int) int { return 1234 }}, 4)
	require.NoError(t, err)

	r, _, _, _ := pm.At(2, 2).RGBA()
	assert.Zero(t, r)
}

func TestRenderInvalid(t *testing.T) {
	m := grid{4, 4, func(int, int) int { return 0 }}

	_, err := Render(m, 1)
	assert.Error(t, err)
	_, err = Render(m, 257)
	assert.Error(t, err)
	_, err = Render(grid{0, 4, m.pixel}, 16)
	assert.Error(t, err)
}

func TestEncode(t *testing.T) {
	m := grid{16, 16, func(x, y int) int { return x * y * 64 }}

	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, m, 8))

	got, err := png.Decode(b)
	require.NoError(t, err)
	pm, ok := got.(*image.Paletted)
	require.True(t, ok)
	assert.LessOrEqual(t, len(pm.Palette), 8)
}
