package stream

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the quantized values of one channel.
type Summary struct {
	Mean   float64
	StdDev float64
	Min    uint16
	Max    uint16
}

// Summarize computes statistics over the values m would contribute to a
// stream.
func Summarize(m Sampler) Summary {
	width, height := m.Width(), m.Height()
	if width <= 0 || height <= 0 {
		return Summary{}
	}

	values := make([]float64, 0, width*height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			values = append(values, float64(Quantize(m.Pixel(x, y))))
		}
	}

	mean, std := stat.MeanStdDev(values, nil)
	if len(values) == 1 {
		std = 0
	}

	return Summary{
		Mean:   mean,
		StdDev: std,
		Min:    uint16(floats.Min(values)),
		Max:    uint16(floats.Max(values)),
	}
}
