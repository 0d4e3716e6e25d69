package stream

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
)

var errBadSize = errors.New("stream: image has no pixels")

// Encoder appends channels to an underlying writer. Writes are buffered so
// Flush must be called once the last channel has been encoded.
type Encoder struct {
	w *bufio.Writer
	n int64

	tmp [sampleBytes]byte
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		w: bufio.NewWriter(w),
	}
}

// Encode appends every pixel of m to the stream, x in the outer loop and y in
// the inner loop.
func (e *Encoder) Encode(m Sampler) error {
	width, height := m.Width(), m.Height()
	if width <= 0 || height <= 0 {
		return errBadSize
	}

	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			binary.BigEndian.PutUint16(e.tmp[:], Quantize(m.Pixel(x, y)))
			if _, err := e.w.Write(e.tmp[:]); err != nil {
				return err
			}
			e.n += sampleBytes
		}
	}

	return nil
}

// Flush writes any buffered data to the underlying writer.
func (e *Encoder) Flush() error {
	return e.w.Flush()
}

// Written returns the number of bytes accepted so far, including any still
// buffered.
func (e *Encoder) Written() int64 {
	return e.n
}

// Encode writes the single channel m to w.
func Encode(w io.Writer, m Sampler) error {
	e := NewEncoder(w)
	if err := e.Encode(m); err != nil {
		return err
	}
	return e.Flush()
}
