package renderer

import (
	"fmt"
	"time"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	Backend        string        // Backend that produced the image
	Width          int           // Image width
	Height         int           // Image height
	TotalPixels    int           // Total number of pixels rendered
	TotalSamples   int           // Total number of camera rays traced
	AverageSamples float64       // Average samples per pixel
	Workers        int           // Goroutines used (CPU) or batches dispatched (GPU)
	Seed           int64         // Seed actually used, after resolving 0 to a clock seed
	Duration       time.Duration // Wall time of the render
}

// NewRenderStats fills in the pixel and sample totals for a width x height render
func NewRenderStats(backend string, width, height, samplesPerPixel int) RenderStats {
	pixels := width * height
	return RenderStats{
		Backend:        backend,
		Width:          width,
		Height:         height,
		TotalPixels:    pixels,
		TotalSamples:   pixels * samplesPerPixel,
		AverageSamples: float64(samplesPerPixel),
	}
}

// SamplesPerSecond returns the camera ray throughput of the render
func (rs RenderStats) SamplesPerSecond() float64 {
	if rs.Duration <= 0 {
		return 0
	}
	return float64(rs.TotalSamples) / rs.Duration.Seconds()
}

func (rs RenderStats) String() string {
	return fmt.Sprintf("%s: %dx%d, %d samples (%.0f/px), %d workers, seed %d, %v",
		rs.Backend, rs.Width, rs.Height, rs.TotalSamples, rs.AverageSamples, rs.Workers, rs.Seed, rs.Duration.Round(time.Millisecond))
}
