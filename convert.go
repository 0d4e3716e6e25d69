package voxstream

import (
	"bytes"
	"crypto/sha1"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/bodgit/voxstream/raster"
	"github.com/bodgit/voxstream/stream"
)

// missing reports whether m holds no image, including a nil pointer of some
// concrete type.
func missing(m raster.Image) bool {
	if m == nil {
		return true
	}
	v := reflect.ValueOf(m)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

type stringer interface {
	String() string
}

func channelName(m raster.Image, i int) string {
	if s, ok := m.(stringer); ok && s.String() != "" {
		return s.String()
	}
	return fmt.Sprintf("channel %d", i)
}

// channels applies the configured order to the discovered images, dropping
// any missing entries.
func (c *Converter) channels(images []raster.Image) ([]raster.Image, error) {
	var ordered []raster.Image
	if order := c.cfg.Channels.Order; len(order) > 0 {
		seen := make(map[int]struct{}, len(order))
		for _, i := range order {
			if i < 0 || i >= len(images) {
				return nil, fmt.Errorf("%w: index %d with %d images open", ErrChannelOrder, i, len(images))
			}
			if _, ok := seen[i]; ok {
				return nil, fmt.Errorf("%w: index %d repeated", ErrChannelOrder, i)
			}
			seen[i] = struct{}{}
			ordered = append(ordered, images[i])
		}
	} else {
		ordered = images
	}

	channels := make([]raster.Image, 0, len(ordered))
	for i, m := range ordered {
		if missing(m) {
			c.logger.Printf("No image for channel %d, skipping\n", i)
			continue
		}
		channels = append(channels, m)
	}

	if len(channels) == 0 {
		return nil, ErrNoImages
	}

	if expected := c.cfg.Channels.Expected; expected > 0 && len(channels) != expected {
		if c.cfg.Channels.Strict {
			return nil, fmt.Errorf("%w: have %d, want %d", ErrChannelCount, len(channels), expected)
		}
		c.logger.Printf("Warning: converting %d channels, consumer expects %d\n", len(channels), expected)
	}

	return channels, nil
}

// encode resamples and writes each channel to w in turn. The encoded planes
// are kept only when there is a catalogue to store them in.
func (c *Converter) encode(w io.Writer, channels []raster.Image) (*Run, error) {
	width, height := c.cfg.Resample.Width, c.cfg.Resample.Height

	run := &Run{
		Width:   width,
		Height:  height,
		Created: time.Now(),
	}

	for i, m := range channels {
		name := channelName(m, i)

		// A channel that can't be resampled can't be skipped either, every
		// later channel would shift into its position
		if err := raster.Resample(m, width, height, c.policy); err != nil {
			return nil, fmt.Errorf("voxstream: resampling %s: %w", name, err)
		}
		if m.Width() != width || m.Height() != height {
			return nil, fmt.Errorf("voxstream: %s resampled to %dx%d, want %dx%d", name, m.Width(), m.Height(), width, height)
		}

		h := sha1.New()
		writers := []io.Writer{w, h}

		var plane *bytes.Buffer
		if c.db != nil {
			plane = bytes.NewBuffer(make([]byte, 0, stream.Size(width, height)))
			writers = append(writers, plane)
		}

		e := stream.NewEncoder(io.MultiWriter(writers...))
		if err := e.Encode(m); err != nil {
			return nil, err
		}
		if err := e.Flush(); err != nil {
			return nil, err
		}

		ch := Channel{
			Position: i,
			Name:     name,
			SHA1:     fmt.Sprintf("%X", h.Sum(nil)),
			Summary:  stream.Summarize(m),
		}
		if plane != nil {
			ch.plane = plane.Bytes()
		}

		c.logger.Printf("Channel %d \"%s\": %dx%d, mean %.1f, stddev %.1f, min %d, max %d\n", i, name, width, height, ch.Mean, ch.StdDev, ch.Min, ch.Max)

		run.Channels = append(run.Channels, ch)
		run.Bytes += e.Written()
	}

	return run, nil
}

// ConvertTo resamples and encodes images to w, returning a description of
// what was written. ErrNoImages is returned if there was nothing to write.
func (c *Converter) ConvertTo(w io.Writer, images []raster.Image) (*Run, error) {
	channels, err := c.channels(images)
	if err != nil {
		return nil, err
	}
	return c.encode(w, channels)
}

// Convert resamples and encodes images to the configured output path. The
// stream is written to a temporary file alongside the output and renamed
// into place once complete, so a failed run leaves any previous output
// untouched. Having no images is not an error; nothing is written.
func (c *Converter) Convert(images []raster.Image) error {
	path := c.cfg.Output.Path

	channels, err := c.channels(images)
	if err != nil {
		if errors.Is(err, ErrNoImages) {
			c.logger.Println("No images open, nothing to convert")
			return nil
		}
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if f != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	// Each channel's encoder buffers and flushes its own writes
	run, err := c.encode(f, channels)
	if err != nil {
		return err
	}

	if err := f.Chmod(0644); err != nil {
		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	if err := os.Rename(f.Name(), path); err != nil {
		return err
	}
	f = nil

	c.logger.Printf("Wrote %d channels, %d bytes to \"%s\"\n", len(run.Channels), run.Bytes, path)

	if c.db != nil {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		run.Output = path
		if err := c.db.Record(run); err != nil {
			return err
		}
		c.logger.Printf("Recorded run %d\n", run.ID)
	}

	return nil
}
