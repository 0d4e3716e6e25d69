package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bodgit/voxstream/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func runLoadConfig(t *testing.T, args ...string) *config.Config {
	t.Helper()

	file := filepath.Join(t.TempDir(), "voxstream.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
output:
  path: stack.raw
resample:
  width: 256
  average: true
  constrain: true
`), 0644))

	var cfg *config.Config

	app := cli.NewApp()
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Value: file,
		},
	}
	app.Commands = []*cli.Command{
		{
			Name:  "convert",
			Flags: resampleFlags,
			Action: func(c *cli.Context) (err error) {
				cfg, err = loadConfig(c)
				return err
			},
		},
	}

	require.NoError(t, app.Run(append([]string{"voxstream", "convert"}, args...)))
	require.NotNil(t, cfg)

	return cfg
}

func TestLoadConfigFlags(t *testing.T) {
	cfg := runLoadConfig(t)
	assert.Equal(t, 256, cfg.Resample.Width)
	assert.True(t, cfg.Resample.Average)
	assert.True(t, cfg.Resample.Constrain)

	cfg = runLoadConfig(t, "--average=false", "--constrain=false", "--height", "128", "--interpolation", "bicubic")
	assert.False(t, cfg.Resample.Average)
	assert.False(t, cfg.Resample.Constrain)
	assert.Equal(t, 256, cfg.Resample.Width)
	assert.Equal(t, 128, cfg.Resample.Height)
	assert.Equal(t, "bicubic", cfg.Resample.Interpolation)
}
