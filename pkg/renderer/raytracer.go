package renderer

import (
	"math/rand"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// Kernel computes single pixels. It holds no mutable state and is shared
// read-only by every worker.
type Kernel struct {
	Camera          *geometry.Camera
	World           integrator.World
	Integrator      integrator.Integrator
	Width           int
	Height          int
	SamplesPerPixel int
}

// NewKernel builds a kernel over a snapshot of s, so later edits to s do not
// reach a render in progress
func NewKernel(s *scene.Scene) Kernel {
	snapshot := s.Snapshot()
	config := snapshot.SamplingConfig
	return Kernel{
		Camera:          snapshot.Camera,
		World:           snapshot,
		Integrator:      integrator.NewPathTracingIntegrator(config.MaxDepth),
		Width:           config.Width,
		Height:          config.Height,
		SamplesPerPixel: config.SamplesPerPixel,
	}
}

// SamplePixel traces SamplesPerPixel jittered rays through pixel (x, row) and
// returns the summed linear radiance. Row 0 is the top of the image.
func (k Kernel) SamplePixel(x, row int, sampler core.Sampler) core.Vec3 {
	j := k.Height - 1 - row
	var sum core.Vec3
	for n := 0; n < k.SamplesPerPixel; n++ {
		s := (float64(x) + sampler.Get1D()) / float64(k.Width)
		t := (float64(j) + sampler.Get1D()) / float64(k.Height)
		ray := k.Camera.GetRay(s, t, sampler)
		sum = sum.Add(k.Integrator.RayColor(ray, k.World, sampler))
	}
	return sum
}

// ToRGB8 averages a summed radiance over samples, applies gamma 2 and
// quantizes each channel to 8 bits
func ToRGB8(sum core.Vec3, samples int) [3]uint8 {
	if samples <= 0 {
		return [3]uint8{}
	}
	c := sum.Divide(float64(samples)).Sqrt().Clamp(0.0, 0.999)
	return [3]uint8{
		uint8(256 * c.X),
		uint8(256 * c.Y),
		uint8(256 * c.Z),
	}
}

// DeriveSeed mixes a render seed with a stream index (a row or a pixel) into
// an independent generator seed, so results do not depend on how work is split
func DeriveSeed(seed int64, index int) int64 {
	z := uint64(seed) + uint64(index+1)*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return int64(z ^ (z >> 31))
}

// resolveSeed maps the "unseeded" value 0 to a clock seed
func resolveSeed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	if seed = time.Now().UnixNano(); seed == 0 {
		seed = 1
	}
	return seed
}

// Raytracer is the single-threaded reference renderer. It produces exactly the
// image a WorkerPool produces for the same scene and seed.
type Raytracer struct {
	kernel Kernel
	seed   int64
}

// NewRaytracer creates a raytracer over a snapshot of s. A zero seed is
// replaced by a clock seed.
func NewRaytracer(s *scene.Scene, seed int64) *Raytracer {
	return &Raytracer{
		kernel: NewKernel(s),
		seed:   resolveSeed(seed),
	}
}

// Seed returns the seed in use
func (rt *Raytracer) Seed() int64 {
	return rt.seed
}

// RenderPass renders every row in order on the calling goroutine
func (rt *Raytracer) RenderPass() *PixelBuffer {
	k := rt.kernel
	pb := NewPixelBuffer(k.Width, k.Height)
	source := rand.NewSource(0)
	sampler := core.NewRandomSampler(rand.New(source))

	for row := 0; row < k.Height; row++ {
		source.Seed(DeriveSeed(rt.seed, row))
		for x := 0; x < k.Width; x++ {
			pb.Set(x, row, ToRGB8(k.SamplePixel(x, row, sampler), k.SamplesPerPixel))
		}
	}

	return pb
}
