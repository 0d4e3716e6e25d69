package voxstream

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/bodgit/voxstream/raster"
)

type job struct {
	index int
	file  string
}

type imageSet struct {
	sync.Mutex
	images map[int]raster.Image
}

func (s *imageSet) set(i int, m raster.Image) {
	s.Lock()
	defer s.Unlock()
	s.images[i] = m
}

func (c *Converter) findImages(ctx context.Context, base string) (<-chan job, <-chan error, error) {
	out := make(chan job)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		index := 0
		// Walk visits in lexical order which gives the discovery order
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if info.Mode().IsDir() {
				if file != base {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore any hidden files, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' {
				return nil
			}

			if !info.Mode().IsRegular() || !raster.Supported(file) {
				return nil
			}

			select {
			case out <- job{index, file}:
				index++
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (c *Converter) decodeWorker(ctx context.Context, in <-chan job, set *imageSet) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for j := range in {
			m, err := raster.Open(j.file)
			if err != nil {
				errc <- err
				return
			}
			c.logger.Printf("Loaded \"%s\" as channel %d, %dx%d\n", j.file, j.index, m.Width(), m.Height())
			set.set(j.index, m)
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Load decodes every supported image in the top level of path. The images
// are returned in lexical filename order which is the order they become
// channels in.
func (c *Converter) Load(path string) ([]raster.Image, error) {
	dir, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	jobs, errc, err := c.findImages(ctx, dir)
	if err != nil {
		return nil, err
	}
	errcList = append(errcList, errc)

	set := &imageSet{
		images: make(map[int]raster.Image),
	}

	for i := 0; i < runtime.NumCPU(); i++ {
		errc, err := c.decodeWorker(ctx, jobs, set)
		if err != nil {
			return nil, err
		}
		errcList = append(errcList, errc)
	}

	if err := waitForPipeline(errcList...); err != nil {
		return nil, err
	}

	images := make([]raster.Image, len(set.images))
	for i, m := range set.images {
		images[i] = m
	}

	if len(images) == 0 {
		c.logger.Printf("No images found in \"%s\"\n", dir)
	}

	return images, nil
}
