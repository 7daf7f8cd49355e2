package gpu

import (
	"context"
	"errors"
	"fmt"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

var (
	// ErrDeviceInit is returned when a compute device cannot be acquired or
	// set up. It is fatal; there is no fallback to the CPU.
	ErrDeviceInit = errors.New("gpu device initialization failed")
	// ErrPendingDispatch is returned when output is read before every
	// dispatched batch has been waited on
	ErrPendingDispatch = errors.New("gpu output read before dispatch completed")
)

// Device is the set of primitives a compute backend provides. The device
// owns instance selection, kernel compilation and buffer allocation.
type Device interface {
	// Upload writes the config and scene buffers and allocates an output
	// buffer of outputWords channel values. It is called once per render.
	Upload(config, spheres []byte, outputWords int) error
	// Dispatch submits one batch and returns a fence that signals its completion
	Dispatch(batch Batch) (Fence, error)
	// ReadOutput copies back the whole output buffer
	ReadOutput() ([]uint32, error)
	Close() error
}

// Fence signals completion of a dispatched batch
type Fence interface {
	Wait() error
}

// Renderer drives a Device: one upload, sequential batches, one read back
type Renderer struct {
	device Device
	budget int
	logger core.Logger
}

// NewRenderer creates a renderer with the default dispatch budget
func NewRenderer(device Device, logger core.Logger) *Renderer {
	return &Renderer{
		device: device,
		budget: DefaultDispatchBudget,
		logger: logger,
	}
}

// SetDispatchBudget overrides DefaultDispatchBudget
func (r *Renderer) SetDispatchBudget(budget int) {
	r.budget = budget
}

// Render uploads config and spheres, then dispatches the image in batches.
// Each batch's fence is waited on before the next is submitted; batches never
// overlap. The context is checked between batches only. The result holds three
// channel values per pixel in pixel-major order.
func (r *Renderer) Render(ctx context.Context, config Config, spheres []Sphere) ([]uint32, error) {
	if int(config.NumSpheres) != len(spheres) {
		return nil, fmt.Errorf("%w: config declares %d spheres, got %d", ErrLayout, config.NumSpheres, len(spheres))
	}

	totalPixels := int(config.Width) * int(config.Height)
	outputWords := totalPixels * 3

	if err := r.device.Upload(config.Marshal(), MarshalSpheres(spheres), outputWords); err != nil {
		return nil, fmt.Errorf("%w: upload: %w", ErrDeviceInit, err)
	}

	batches := PlanBatches(totalPixels, int(config.SampleCount), int(config.MaxBounces), r.budget)
	r.logger.Printf("GPU render [%d x %d] -> %d pixels, %d samples, %d bounces, %d pixels/dispatch, %d batches\n",
		config.Width, config.Height, totalPixels, config.SampleCount, config.MaxBounces,
		PixelsPerDispatch(int(config.SampleCount), int(config.MaxBounces), r.budget), len(batches))

	// TODO: double-buffer so the next batch is recorded while the current one runs
	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("render cancelled before batch %d: %w", i, err)
		}
		fence, err := r.device.Dispatch(batch)
		if err != nil {
			return nil, fmt.Errorf("dispatch batch %d: %w", i, err)
		}
		if err := fence.Wait(); err != nil {
			return nil, fmt.Errorf("wait batch %d: %w", i, err)
		}
	}

	output, err := r.device.ReadOutput()
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}
	if len(output) != outputWords {
		return nil, fmt.Errorf("%w: output has %d values, want %d", ErrLayout, len(output), outputWords)
	}

	r.logger.Printf("GPU render finished\n")
	return output, nil
}
