package renderer

import (
	"context"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// Backend renders a whole scene to a pixel buffer. Implementations share the
// same contract: the same scene and settings give statistically equivalent images.
type Backend interface {
	Name() string
	Render(ctx context.Context, s *scene.Scene) (*PixelBuffer, RenderStats, error)
}

// CPUBackend renders on a goroutine-per-row-range worker pool
type CPUBackend struct {
	Config ParallelConfig
	Logger core.Logger
}

// NewCPUBackend creates a CPU backend
func NewCPUBackend(config ParallelConfig, logger core.Logger) *CPUBackend {
	return &CPUBackend{Config: config, Logger: logger}
}

func (b *CPUBackend) Name() string { return "cpu" }

// Render renders s. Workers are not cancellable once started, so ctx is only
// checked before the render begins.
func (b *CPUBackend) Render(ctx context.Context, s *scene.Scene) (*PixelBuffer, RenderStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, RenderStats{}, err
	}
	return NewWorkerPool(s, b.Config, b.Logger).Render()
}
