package renderer

import (
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

var (
	// ErrWorkerPanic is returned when a render worker panics. The whole render fails.
	ErrWorkerPanic = errors.New("render worker panicked")
	// ErrInvalidConfig is returned for unusable image or sampling settings
	ErrInvalidConfig = errors.New("invalid render configuration")
)

// ParallelConfig controls the CPU worker pool
type ParallelConfig struct {
	NumWorkers int   // Goroutines to use; <= 0 means runtime.NumCPU()
	Seed       int64 // Render seed; 0 means seed from the clock
}

// DefaultParallelConfig returns one worker per CPU and an unseeded render
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{
		NumWorkers: runtime.NumCPU(),
	}
}

// RowRange is the half-open row interval [Start, End) assigned to one worker
type RowRange struct {
	Start int
	End   int
}

// PartitionRows splits height rows into at most workers contiguous ranges whose
// sizes differ by at most one. The ranges cover every row exactly once.
func PartitionRows(height, workers int) []RowRange {
	if height <= 0 {
		return nil
	}
	if workers <= 0 {
		workers = 1
	}
	workers = min(workers, height)

	ranges := make([]RowRange, 0, workers)
	base, extra := height/workers, height%workers
	start := 0
	for i := 0; i < workers; i++ {
		size := base
		if i < extra {
			size++
		}
		ranges = append(ranges, RowRange{Start: start, End: start + size})
		start += size
	}
	return ranges
}

// RowBlock is a worker's finished rows, tagged with their range
type RowBlock struct {
	WorkerID int
	Rows     RowRange
	Pix      []uint8 // RGB triples for Rows, row-major
	Err      error
}

// WorkerPool renders an image by giving each goroutine a contiguous block of rows
type WorkerPool struct {
	kernel Kernel
	config ParallelConfig
	logger core.Logger
}

// Worker renders one row range with its own random generator
type Worker struct {
	ID     int
	rows   RowRange
	kernel Kernel
	seed   int64
	result chan<- RowBlock
}

// NewWorkerPool creates a worker pool over a snapshot of s
func NewWorkerPool(s *scene.Scene, config ParallelConfig, logger core.Logger) *WorkerPool {
	if config.NumWorkers <= 0 {
		config.NumWorkers = runtime.NumCPU()
	}
	if logger == nil {
		logger = NewNopLogger()
	}
	return &WorkerPool{
		kernel: NewKernel(s),
		config: config,
		logger: logger,
	}
}

func (k Kernel) validate() error {
	switch {
	case k.Width <= 0 || k.Height <= 0:
		return fmt.Errorf("%w: image size %dx%d", ErrInvalidConfig, k.Width, k.Height)
	case k.SamplesPerPixel <= 0:
		return fmt.Errorf("%w: samples per pixel %d", ErrInvalidConfig, k.SamplesPerPixel)
	case k.Camera == nil:
		return fmt.Errorf("%w: scene has no camera", ErrInvalidConfig)
	}
	return nil
}

// Render runs every worker to completion and assembles their rows in order.
// It blocks until all workers have reported. If any worker fails the render
// fails and no partial image is returned.
func (wp *WorkerPool) Render() (*PixelBuffer, RenderStats, error) {
	k := wp.kernel
	if err := k.validate(); err != nil {
		return nil, RenderStats{}, err
	}

	start := time.Now()
	seed := resolveSeed(wp.config.Seed)
	ranges := PartitionRows(k.Height, wp.config.NumWorkers)

	wp.logger.Printf("Rendering %dx%d at %d samples/pixel using %d workers (seed %d)...\n",
		k.Width, k.Height, k.SamplesPerPixel, len(ranges), seed)

	results := make([]chan RowBlock, len(ranges))
	for i, rows := range ranges {
		results[i] = make(chan RowBlock, 1)
		w := &Worker{ID: i, rows: rows, kernel: k, seed: seed, result: results[i]}
		go w.run()
	}

	blocks := make([]RowBlock, 0, len(ranges))
	var errs []error
	for _, ch := range results {
		block := <-ch
		if block.Err != nil {
			errs = append(errs, block.Err)
			continue
		}
		blocks = append(blocks, block)
	}
	if len(errs) > 0 {
		return nil, RenderStats{}, errors.Join(errs...)
	}

	// Blocks are placed by their row tag, not by arrival
	sort.Slice(blocks, func(i, j int) bool {
		return blocks[i].Rows.Start < blocks[j].Rows.Start
	})

	pb := &PixelBuffer{Width: k.Width, Height: k.Height, Pix: make([]uint8, 0, k.Width*k.Height*3)}
	for _, block := range blocks {
		pb.Pix = append(pb.Pix, block.Pix...)
	}

	stats := NewRenderStats("cpu", k.Width, k.Height, k.SamplesPerPixel)
	stats.Workers = len(ranges)
	stats.Seed = seed
	stats.Duration = time.Since(start)

	wp.logger.Printf("Render completed in %v\n", stats.Duration)
	return pb, stats, nil
}

// run renders the worker's rows and sends exactly one RowBlock
func (w *Worker) run() {
	block := RowBlock{WorkerID: w.ID, Rows: w.rows}
	defer func() {
		if r := recover(); r != nil {
			block.Pix = nil
			block.Err = fmt.Errorf("%w: worker %d rows [%d, %d): %v", ErrWorkerPanic, w.ID, w.rows.Start, w.rows.End, r)
		}
		w.result <- block
	}()

	source := rand.NewSource(0)
	sampler := core.NewRandomSampler(rand.New(source))
	k := w.kernel

	block.Pix = make([]uint8, 0, (w.rows.End-w.rows.Start)*k.Width*3)
	for row := w.rows.Start; row < w.rows.End; row++ {
		source.Seed(DeriveSeed(w.seed, row))
		for x := 0; x < k.Width; x++ {
			rgb := ToRGB8(k.SamplePixel(x, row, sampler), k.SamplesPerPixel)
			block.Pix = append(block.Pix, rgb[0], rgb[1], rgb[2])
		}
	}
}
