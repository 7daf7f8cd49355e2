package gpu

import (
	"context"
	"fmt"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// SoftwareDeviceName selects the host SoftwareDevice
const SoftwareDeviceName = "software"

// OpenDevice returns the named compute device. Unknown names fail with
// ErrDeviceInit rather than falling back to another device.
func OpenDevice(name string) (Device, error) {
	switch name {
	case SoftwareDeviceName, "":
		return NewSoftwareDevice(), nil
	default:
		return nil, fmt.Errorf("%w: no compute device %q", ErrDeviceInit, name)
	}
}

// Backend adapts the batched dispatcher to renderer.Backend
type Backend struct {
	DeviceName string
	Budget     int
	Seed       int64 // 0 means seed from the clock
	Logger     core.Logger

	open func(name string) (Device, error)
}

// NewBackend creates a backend on the named device
func NewBackend(deviceName string, seed int64, logger core.Logger) *Backend {
	if logger == nil {
		logger = renderer.NewNopLogger()
	}
	return &Backend{
		DeviceName: deviceName,
		Budget:     DefaultDispatchBudget,
		Seed:       seed,
		Logger:     logger,
		open:       OpenDevice,
	}
}

func (b *Backend) Name() string { return "gpu" }

// Render packs a snapshot of s, renders it on the device and converts the
// channel buffer to a PixelBuffer
func (b *Backend) Render(ctx context.Context, s *scene.Scene) (*renderer.PixelBuffer, renderer.RenderStats, error) {
	snapshot := s.Snapshot()
	sc := snapshot.SamplingConfig
	if sc.Width <= 0 || sc.Height <= 0 || sc.SamplesPerPixel <= 0 || sc.MaxDepth < 0 {
		return nil, renderer.RenderStats{}, fmt.Errorf("%w: %dx%d, %d samples, depth %d",
			renderer.ErrInvalidConfig, sc.Width, sc.Height, sc.SamplesPerPixel, sc.MaxDepth)
	}
	if snapshot.Camera == nil {
		return nil, renderer.RenderStats{}, fmt.Errorf("%w: scene has no camera", renderer.ErrInvalidConfig)
	}
	for i, sphere := range snapshot.Spheres {
		if sphere.Material == nil {
			return nil, renderer.RenderStats{}, fmt.Errorf("%w: sphere %d has no material", renderer.ErrInvalidConfig, i)
		}
	}

	device, err := b.open(b.DeviceName)
	if err != nil {
		return nil, renderer.RenderStats{}, err
	}
	defer device.Close()

	start := time.Now()
	seed := b.Seed
	if seed == 0 {
		if seed = start.UnixNano(); seed == 0 {
			seed = 1
		}
	}

	r := NewRenderer(device, b.Logger)
	r.SetDispatchBudget(b.Budget)

	channels, err := r.Render(ctx, NewConfig(snapshot, seed), PackSpheres(snapshot.Spheres))
	if err != nil {
		return nil, renderer.RenderStats{}, err
	}

	pb, err := renderer.NewPixelBufferFromChannels(sc.Width, sc.Height, channels)
	if err != nil {
		return nil, renderer.RenderStats{}, err
	}

	stats := renderer.NewRenderStats(b.Name(), sc.Width, sc.Height, sc.SamplesPerPixel)
	stats.Workers = len(PlanBatches(sc.Width*sc.Height, sc.SamplesPerPixel, sc.MaxDepth, b.Budget))
	stats.Seed = seed
	stats.Duration = time.Since(start)
	return pb, stats, nil
}
