package gpu

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

func TestOpenDevice(t *testing.T) {
	for _, name := range []string{"", SoftwareDeviceName} {
		device, err := OpenDevice(name)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", name, err)
			continue
		}
		device.Close()
	}

	if _, err := OpenDevice("vulkan"); !errors.Is(err, ErrDeviceInit) {
		t.Errorf("Expected ErrDeviceInit for unknown device, got %v", err)
	}
}

func TestBackend_DeviceInitFailureIsFatal(t *testing.T) {
	backend := NewBackend("vulkan", 1, nil)
	pb, _, err := backend.Render(context.Background(), smallScene(4, 3, 1, 1))
	if !errors.Is(err, ErrDeviceInit) {
		t.Fatalf("Expected ErrDeviceInit, got %v", err)
	}
	if pb != nil {
		t.Error("Expected no image when the device cannot be opened")
	}
}

func TestBackend_InvalidConfig(t *testing.T) {
	_, _, err := NewBackend(SoftwareDeviceName, 1, nil).Render(context.Background(), smallScene(0, 3, 1, 1))
	if !errors.Is(err, renderer.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestBackend_MissingCamera(t *testing.T) {
	s := &scene.Scene{SamplingConfig: scene.SamplingConfig{Width: 4, Height: 3, SamplesPerPixel: 1, MaxDepth: 1}}
	if _, _, err := NewBackend(SoftwareDeviceName, 1, nil).Render(context.Background(), s); !errors.Is(err, renderer.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestBackend_MissingMaterial(t *testing.T) {
	s := smallScene(4, 3, 1, 1)
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, -3), 0.5, nil))
	if _, _, err := NewBackend(SoftwareDeviceName, 1, nil).Render(context.Background(), s); !errors.Is(err, renderer.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestBackend_RenderStats(t *testing.T) {
	backend := NewBackend(SoftwareDeviceName, 5, nil)
	backend.Budget = 4 * 3 * 2 // four pixels per dispatch at 3 samples and 2 bounces

	pb, stats, err := backend.Render(context.Background(), smallScene(4, 3, 3, 2))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if pb.Width != 4 || pb.Height != 3 {
		t.Errorf("Expected 4x3, got %dx%d", pb.Width, pb.Height)
	}
	if stats.Backend != "gpu" || stats.Seed != 5 {
		t.Errorf("Unexpected stats %+v", stats)
	}
	if stats.Workers != 3 {
		t.Errorf("Expected 3 batches, got %d", stats.Workers)
	}
}

func TestBackend_SeededReproducible(t *testing.T) {
	s := smallScene(5, 4, 2, 4)
	first, _, err := NewBackend(SoftwareDeviceName, 11, nil).Render(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := NewBackend(SoftwareDeviceName, 11, nil).Render(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
	for i := range first.Pix {
		if first.Pix[i] != second.Pix[i] {
			t.Fatalf("Channel %d differs between seeded renders", i)
		}
	}

	_, stats, err := NewBackend(SoftwareDeviceName, 0, nil).Render(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Seed == 0 {
		t.Error("Expected a clock seed for an unseeded render")
	}
}

func TestBackend_SeedsBeyond32BitsStayDistinct(t *testing.T) {
	s := smallScene(8, 6, 1, 3)

	low, lowStats, err := NewBackend(SoftwareDeviceName, 1, nil).Render(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
	high, highStats, err := NewBackend(SoftwareDeviceName, 1<<32+1, nil).Render(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
	if lowStats.Seed != 1 || highStats.Seed != 1<<32+1 {
		t.Errorf("Expected reported seeds 1 and %d, got %d and %d", int64(1<<32+1), lowStats.Seed, highStats.Seed)
	}

	identical := true
	for i := range low.Pix {
		if low.Pix[i] != high.Pix[i] {
			identical = false
			break
		}
	}
	if identical {
		t.Error("Seeds that differ only above bit 31 rendered the same image")
	}

	_, stats, err := NewBackend(SoftwareDeviceName, 1<<32, nil).Render(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Seed != 1<<32 {
		t.Errorf("Expected reported seed %d, got %d", int64(1<<32), stats.Seed)
	}
}

func TestBackend_DepthZeroIsBlack(t *testing.T) {
	pb, _, err := NewBackend(SoftwareDeviceName, 3, nil).Render(context.Background(), smallScene(6, 4, 2, 0))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for i, v := range pb.Pix {
		if v != 0 {
			t.Fatalf("Expected all black with depth 0, channel %d is %d", i, v)
		}
	}
}

func TestBackend_StatisticallyEquivalentToCPU(t *testing.T) {
	s := scene.NewDefaultScene()
	config := s.CameraConfig
	config.AspectRatio = 8.0 / 6.0
	s.SetCamera(config)
	s.SamplingConfig = scene.SamplingConfig{Width: 8, Height: 6, SamplesPerPixel: 200, MaxDepth: 10}

	gpuImage, _, err := NewBackend(SoftwareDeviceName, 1, nil).Render(context.Background(), s)
	if err != nil {
		t.Fatalf("GPU render failed: %v", err)
	}
	cpuImage, _, err := renderer.NewCPUBackend(renderer.ParallelConfig{NumWorkers: 3, Seed: 2}, nil).Render(context.Background(), s)
	if err != nil {
		t.Fatalf("CPU render failed: %v", err)
	}

	var totalDiff float64
	maxDiff := 0.0
	for i := range cpuImage.Pix {
		d := math.Abs(float64(gpuImage.Pix[i]) - float64(cpuImage.Pix[i]))
		totalDiff += d
		maxDiff = math.Max(maxDiff, d)
	}
	if mean := totalDiff / float64(len(cpuImage.Pix)); mean > 8 {
		t.Errorf("Mean channel difference %.2f exceeds tolerance", mean)
	}
	if maxDiff > 48 {
		t.Errorf("Max channel difference %.0f exceeds tolerance", maxDiff)
	}
}
