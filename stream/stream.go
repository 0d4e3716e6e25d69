/*
Package stream implements the positional 16-bit channel stream read by
volumetric imaging tools.

Each channel is written as width by height unsigned 16-bit big-endian values
with no header, length prefix or separator. Pixels are visited column by
column; every row of column 0 is written before column 1 is started. Each raw
sample is masked to 16 bits and divided by 4, so a full-range 16-bit value is
stored as a 14-bit quantity in the low bits of its 16-bit container.

Channels are concatenated in the order they are encoded, so a file holding n
channels of w by h pixels is exactly n * w * h * 2 bytes long. Changing either
the traversal order or the divisor is a breaking change for every consumer.
*/
package stream

const (
	// Mask is applied to every raw sample before quantization
	Mask = 0xffff

	// Divisor narrows a masked sample
	Divisor = 4

	// MaxValue is the largest value that can appear in a stream
	MaxValue = Mask / Divisor

	sampleBytes = 2
)

// Sampler is the read-only view of an image needed to encode it.
type Sampler interface {
	Width() int
	Height() int
	Pixel(x, y int) int
}

// Quantize narrows a raw sample. Values wider than 16 bits are masked rather
// than rejected.
func Quantize(v int) uint16 {
	return uint16((v & Mask) / Divisor)
}

// Size returns the number of bytes a channel of the given dimensions occupies
// in a stream.
func Size(width, height int) int64 {
	return int64(width) * int64(height) * sampleBytes
}
