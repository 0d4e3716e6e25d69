package main

import (
	"bufio"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/bodgit/voxstream"
	"github.com/bodgit/voxstream/config"
	"github.com/bodgit/voxstream/preview"
	"github.com/urfave/cli/v2"
)

const defaultConfig = "voxstream.yaml"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

// loadConfig reads the configuration file and applies any flags given on the
// command line on top.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("output") {
		cfg.Output.Path = c.String("output")
	}
	if c.IsSet("width") {
		cfg.Resample.Width = c.Int("width")
	}
	if c.IsSet("height") {
		cfg.Resample.Height = c.Int("height")
	}
	if c.IsSet("interpolation") {
		cfg.Resample.Interpolation = c.String("interpolation")
	}
	if c.IsSet("average") {
		cfg.Resample.Average = c.Bool("average")
	}
	if c.IsSet("constrain") {
		cfg.Resample.Constrain = c.Bool("constrain")
	}
	if c.IsSet("order") {
		cfg.Channels.Order = c.IntSlice("order")
	}
	if c.IsSet("strict") {
		cfg.Channels.Strict = c.Bool("strict")
	}
	if db := c.String("db"); db != "" {
		cfg.Catalogue = db
	}

	return cfg, nil
}

func newConverter(c *cli.Context) (*voxstream.Converter, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	return voxstream.New(cfg, newLogger(c))
}

func openCatalogue(c *cli.Context) (*voxstream.Catalogue, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if db := c.String("db"); db != "" {
		cfg.Catalogue = db
	}
	if cfg.Catalogue == "" {
		return nil, fmt.Errorf("no catalogue configured")
	}
	return voxstream.NewCatalogue(cfg.Catalogue)
}

var resampleFlags = []cli.Flag{
	&cli.IntFlag{
		Name:  "width",
		Value: config.DefaultWidth,
		Usage: "resampled width",
	},
	&cli.IntFlag{
		Name:  "height",
		Value: config.DefaultHeight,
		Usage: "resampled height",
	},
	&cli.StringFlag{
		Name:  "interpolation",
		Value: "bilinear",
		Usage: "resampling method; none, bilinear or bicubic",
	},
	&cli.BoolFlag{
		Name:  "average",
		Value: true,
		Usage: "average source pixels when downscaling",
	},
	&cli.BoolFlag{
		Name:  "constrain",
		Value: true,
		Usage: "derive a zero width or height from the aspect ratio",
	},
	&cli.IntSliceFlag{
		Name:  "order",
		Usage: "channel order as indices into the sorted image files",
	},
	&cli.BoolFlag{
		Name:  "strict",
		Usage: "fail unless the expected number of channels is found",
	},
}

func main() {
	app := cli.NewApp()

	app.Name = "voxstream"
	app.Usage = "Multi-channel raw stream converter"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			EnvVars: []string{"VOXSTREAM_CONFIG"},
			Value:   filepath.Join(cwd, defaultConfig),
			Usage:   "path to configuration file",
		},
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"VOXSTREAM_DB"},
			Usage:   "path to run catalogue",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "convert",
			Usage:       "Convert a directory of images to a raw stream",
			Description: "Each image in DIRECTORY becomes one channel, in filename order.",
			ArgsUsage:   "DIRECTORY",
			Flags: append([]cli.Flag{
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Usage:   "path to output stream",
				},
			}, resampleFlags...),
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				v, err := newConverter(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer v.Close()

				images, err := v.Load(c.Args().First())
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				if err := v.Convert(images); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "preview",
			Usage:       "Write a PNG preview of each channel",
			Description: "",
			ArgsUsage:   "DIRECTORY OUTPUT",
			Flags: append([]cli.Flag{
				&cli.IntFlag{
					Name:  "colors",
					Value: preview.DefaultColors,
					Usage: "number of gray levels",
				},
			}, resampleFlags...),
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				cfg, err := loadConfig(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				// Previews never write the stream
				if cfg.Output.Path == "" {
					cfg.Output.Path = os.DevNull
				}

				v, err := voxstream.New(cfg, newLogger(c))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer v.Close()

				images, err := v.Load(c.Args().Get(0))
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				files, err := v.Preview(images, c.Args().Get(1), c.Int("colors"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				for _, file := range files {
					fmt.Println(file)
				}

				return nil
			},
		},
		{
			Name:        "history",
			Usage:       "List runs recorded in the catalogue",
			Description: "",
			Action: func(c *cli.Context) error {
				db, err := openCatalogue(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer db.Close()

				runs, err := db.Runs()
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tCREATED\tSIZE\tCHANNELS\tBYTES\tOUTPUT")
				for _, r := range runs {
					fmt.Fprintf(w, "%d\t%s\t%dx%d\t%d\t%d\t%s\n", r.ID, r.Created.Format("2006-01-02 15:04:05"), r.Width, r.Height, len(r.Channels), r.Bytes, r.Output)
					if c.Bool("verbose") {
						for _, ch := range r.Channels {
							fmt.Fprintf(w, "\t%d\t%s\t%s\tmean %.1f\tmin %d max %d\n", ch.Position, ch.Name, ch.SHA1, ch.Mean, ch.Min, ch.Max)
						}
					}
				}

				return w.Flush()
			},
		},
		{
			Name:        "export",
			Usage:       "Write the stream of a recorded run",
			Description: "",
			ArgsUsage:   "ID FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				id, err := strconv.ParseInt(c.Args().Get(0), 10, 64)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				db, err := openCatalogue(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer db.Close()

				f, err := os.Create(c.Args().Get(1))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer f.Close()

				w := bufio.NewWriter(f)
				if err := db.Export(id, w); err != nil {
					return cli.NewExitError(err, 1)
				}
				if err := w.Flush(); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "config",
			Usage:       "Write a default configuration file",
			Description: "",
			ArgsUsage:   "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				if err := config.SaveConfig(config.DefaultConfig(), c.Args().First()); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
