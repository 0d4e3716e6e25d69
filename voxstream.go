/*
Package voxstream converts sets of 16-bit grayscale images into the flat
multi-channel stream read by volumetric imaging tools.

Each image is one channel. Channels are resampled to a fixed resolution,
1024 by 1024 by default, then encoded one after another in the order they
were discovered. See package stream for the byte layout.
*/
package voxstream

import (
	"errors"
	"log"

	"github.com/bodgit/voxstream/config"
	"github.com/bodgit/voxstream/raster"
)

var (
	// ErrNoImages is returned when there are no channels to convert
	ErrNoImages = errors.New("voxstream: no images open")

	// ErrChannelCount is returned in strict mode when the number of
	// channels differs from the number expected
	ErrChannelCount = errors.New("voxstream: unexpected number of channels")

	// ErrChannelOrder is returned when the channel order refers to a
	// missing or repeated channel
	ErrChannelOrder = errors.New("voxstream: invalid channel order")
)

// Converter runs conversions for a single configuration.
type Converter struct {
	cfg    *config.Config
	policy raster.Policy
	db     *Catalogue
	logger *log.Logger
}

// New returns a Converter for cfg, opening the catalogue if one is
// configured.
func New(cfg *config.Config, logger *log.Logger) (*Converter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}

	c := &Converter{
		cfg:    cfg,
		policy: policy,
		logger: logger,
	}

	if cfg.Catalogue != "" {
		if c.db, err = NewCatalogue(cfg.Catalogue); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Catalogue returns the run catalogue, or nil if none is configured.
func (c *Converter) Catalogue() *Catalogue {
	return c.db
}

// Close releases the catalogue, if any.
func (c *Converter) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}
