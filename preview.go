package voxstream

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bodgit/voxstream/preview"
	"github.com/bodgit/voxstream/raster"
)

// Preview resamples each channel exactly as Convert would and writes it to dir
// as channel-NN.png, reduced to the given number of gray levels. It returns
// the files written.
func (c *Converter) Preview(images []raster.Image, dir string, colors int) ([]string, error) {
	channels, err := c.channels(images)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	files := make([]string, 0, len(channels))
	for i, m := range channels {
		if err := raster.Resample(m, c.cfg.Resample.Width, c.cfg.Resample.Height, c.policy); err != nil {
			return nil, fmt.Errorf("voxstream: resampling %s: %w", channelName(m, i), err)
		}

		file := filepath.Join(dir, fmt.Sprintf("channel-%02d.png", i))
		if err := writePreview(file, m, colors); err != nil {
			return nil, err
		}
		c.logger.Printf("Wrote preview of \"%s\" to \"%s\"\n", channelName(m, i), file)

		files = append(files, file)
	}

	return files, nil
}

func writePreview(file string, m raster.Image, colors int) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := preview.Encode(w, m, colors); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}

	return f.Close()
}
