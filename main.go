package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/gpu"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// options holds the parsed command line
type options struct {
	scene   string
	width   int
	height  int
	samples int
	depth   int
	workers int
	backend string
	device  string
	seed    int64
	format  string
	out     string
}

func main() {
	opts := options{}
	flag.StringVar(&opts.scene, "scene", "default", "Scene name or path to a .json scene file")
	flag.IntVar(&opts.width, "width", 0, "Image width (0 = scene default)")
	flag.IntVar(&opts.height, "height", 0, "Image height (0 = scene default)")
	flag.IntVar(&opts.samples, "samples", 0, "Samples per pixel (0 = scene default)")
	flag.IntVar(&opts.depth, "depth", -1, "Maximum bounces (-1 = scene default)")
	flag.IntVar(&opts.workers, "workers", 0, "CPU worker goroutines (0 = one per CPU)")
	flag.StringVar(&opts.backend, "backend", "cpu", "Render backend: 'cpu' or 'gpu'")
	flag.StringVar(&opts.device, "device", gpu.SoftwareDeviceName, "Compute device for the gpu backend")
	flag.Int64Var(&opts.seed, "seed", 0, "Random seed (0 = seed from the clock)")
	flag.StringVar(&opts.format, "format", "ppm", "Output format: 'ppm' or 'png'")
	flag.StringVar(&opts.out, "out", "", "Output file, '-' for stdout (default output/<scene>/render_<timestamp>.<format>)")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		printHelp()
		return
	}

	if err := run(context.Background(), opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("Sphere Path Tracer")
	fmt.Println("Usage: pathtracer [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Available scenes:")
	for _, info := range scene.ListScenes() {
		fmt.Printf("  %-12s %s\n", info.ID, info.Description)
	}
	fmt.Println("  <file>.json  Scene loaded from a JSON file")
}

func run(ctx context.Context, opts options) error {
	if opts.format != "ppm" && opts.format != "png" {
		return fmt.Errorf("unknown format %q", opts.format)
	}

	// Image bytes may go to stdout, so logging is silenced there
	var logger core.Logger = renderer.NewDefaultLogger()
	if opts.out == "-" {
		logger = renderer.NewNopLogger()
	}

	s, err := createScene(opts.scene, opts.seed)
	if err != nil {
		return err
	}
	applyOverrides(s, opts)

	backend, err := selectBackend(opts, logger)
	if err != nil {
		return err
	}

	logger.Printf("Rendering scene %q on %s backend...\n", opts.scene, backend.Name())
	pb, stats, err := backend.Render(ctx, s)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	logger.Printf("%v (%.0f samples/s)\n", stats, stats.SamplesPerSecond())

	if opts.out == "-" {
		return writeImage(os.Stdout, pb, opts.format)
	}

	filename := opts.out
	if filename == "" {
		filename = defaultOutputPath(opts.scene, opts.format, time.Now())
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := writeAndClose(file, pb, opts.format); err != nil {
		return err
	}
	logger.Printf("Render saved as %s\n", filename)
	return nil
}

// writeAndClose encodes pb to wc and closes it. A failed close means the image
// may not have reached disk, so it is reported like a failed write.
func writeAndClose(wc io.WriteCloser, pb *renderer.PixelBuffer, format string) error {
	if err := writeImage(wc, pb, format); err != nil {
		wc.Close()
		return err
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	return nil
}

// createScene resolves a built-in scene name or a JSON scene path
func createScene(name string, seed int64) (*scene.Scene, error) {
	if name == "" {
		return nil, errors.New("scene name is empty")
	}
	return scene.NewByName(name, seed)
}

// applyOverrides replaces scene sampling defaults with any values given on the
// command line, keeping the camera aspect ratio in step with the image
func applyOverrides(s *scene.Scene, opts options) {
	config := s.SamplingConfig
	if opts.width > 0 {
		config.Width = opts.width
	}
	if opts.height > 0 {
		config.Height = opts.height
	}
	if opts.samples > 0 {
		config.SamplesPerPixel = opts.samples
	}
	if opts.depth >= 0 {
		config.MaxDepth = opts.depth
	}
	s.SamplingConfig = config

	if config.Width > 0 && config.Height > 0 {
		camera := s.CameraConfig
		camera.AspectRatio = float64(config.Width) / float64(config.Height)
		s.SetCamera(camera)
	}
}

func selectBackend(opts options, logger core.Logger) (renderer.Backend, error) {
	switch opts.backend {
	case "cpu":
		return renderer.NewCPUBackend(renderer.ParallelConfig{NumWorkers: opts.workers, Seed: opts.seed}, logger), nil
	case "gpu":
		return gpu.NewBackend(opts.device, opts.seed, logger), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", opts.backend)
	}
}

func writeImage(w io.Writer, pb *renderer.PixelBuffer, format string) error {
	if format == "png" {
		return pb.WritePNG(w)
	}
	return pb.WritePPM(w)
}

func defaultOutputPath(sceneName, format string, now time.Time) string {
	dir := strings.TrimSuffix(filepath.Base(sceneName), filepath.Ext(sceneName))
	return filepath.Join("output", dir, fmt.Sprintf("render_%s.%s", now.Format("20060102_150405"), format))
}
