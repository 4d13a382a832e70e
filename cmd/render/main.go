// Command render draws a scene document to image files.
//
//	render -in scene.yaml -out out.png
//	render -sample ship -out ship.tiff -frame 3
//	render -in scene.json -out frames/out.png -frames 24
//
// With -frames the output name gets a frame number: out_0000.png, ...
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/softrender/softrender/internal/config"
	"github.com/softrender/softrender/internal/document"
	"github.com/softrender/softrender/internal/engine"
	"github.com/softrender/softrender/internal/export"
	"github.com/softrender/softrender/internal/raster"
)

type options struct {
	in     string
	out    string
	sample string
	format string
	frame  int
	frames int
	width  int
	height int
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})))

	opts, err := parseFlags(os.Args[1:], cfg, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		slog.Error("parse flags", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	paths, err := run(ctx, opts)
	if err != nil {
		slog.Error("render", "error", err)
		os.Exit(1)
	}
	for _, p := range paths {
		fmt.Println(p)
	}
}

func parseFlags(args []string, cfg *config.Config, output io.Writer) (*options, error) {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(output)

	var opts options
	fs.StringVar(&opts.in, "in", "", "scene document (.json, .yaml or .yml)")
	fs.StringVar(&opts.out, "out", "out.png", "output image path")
	fs.StringVar(&opts.sample, "sample", "", "render a built-in sample instead of -in: "+strings.Join(sampleNames(), ", "))
	fs.StringVar(&opts.format, "format", "", "png, bmp or tiff (default from -out)")
	fs.IntVar(&opts.frame, "frame", 0, "frame to render")
	fs.IntVar(&opts.frames, "frames", 0, "render this many frames as a numbered sequence")
	fs.IntVar(&opts.width, "width", cfg.RenderWidth, "image width when the document has none")
	fs.IntVar(&opts.height, "height", cfg.RenderHeight, "image height when the document has none")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if (opts.in == "") == (opts.sample == "") {
		return nil, errors.New("exactly one of -in and -sample is required")
	}
	if opts.frames < 0 {
		return nil, fmt.Errorf("-frames must not be negative, got %d", opts.frames)
	}
	return &opts, nil
}

func run(ctx context.Context, opts *options) ([]string, error) {
	format, err := outputFormat(opts)
	if err != nil {
		return nil, err
	}

	doc, err := loadDocument(opts)
	if err != nil {
		return nil, err
	}

	eng := engine.NewEngine()
	eng.SetDefaultSize(opts.width, opts.height)
	if err := eng.SetDocument(doc); err != nil {
		return nil, err
	}

	if dir := filepath.Dir(opts.out); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}

	if opts.frames > 0 {
		ext := filepath.Ext(opts.out)
		stem := strings.TrimSuffix(filepath.Base(opts.out), ext)
		pattern := strings.ReplaceAll(stem, "%", "%%") + "_%04d" + ext
		return export.RenderFrames(ctx, eng, filepath.Dir(opts.out), pattern, format, opts.frames)
	}

	img, err := eng.RenderFrame(ctx, opts.frame)
	if err != nil {
		return nil, err
	}
	f, err := os.Create(opts.out)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	if err := img.Encode(f, format); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close output: %w", err)
	}
	return []string{opts.out}, nil
}

func outputFormat(opts *options) (raster.Format, error) {
	if opts.format != "" {
		return raster.ParseFormat(opts.format)
	}
	return raster.FormatForPath(opts.out)
}

func loadDocument(opts *options) (*document.Document, error) {
	if opts.sample != "" {
		sample, ok := document.Samples[opts.sample]
		if !ok {
			return nil, fmt.Errorf("unknown sample %q (have %s)", opts.sample, strings.Join(sampleNames(), ", "))
		}
		return sample(), nil
	}

	data, err := os.ReadFile(opts.in)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return document.Parse(data, document.FormatForPath(opts.in))
}

func sampleNames() []string {
	names := make([]string, 0, len(document.Samples))
	for name := range document.Samples {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
