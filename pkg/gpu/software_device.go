package gpu

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

var errNotUploaded = errors.New("buffers not uploaded")

// SoftwareDevice is a host implementation of Device. It decodes the packed
// buffers and runs each dispatch on its own goroutine, one generator stream per
// pixel, so it exercises the same fence protocol as a real device.
type SoftwareDevice struct {
	mu       sync.Mutex
	kernel   renderer.Kernel
	seed     int64
	output   []uint32
	pending  int
	uploaded bool
	closed   bool
}

// NewSoftwareDevice creates an empty device
func NewSoftwareDevice() *SoftwareDevice {
	return &SoftwareDevice{}
}

func (d *SoftwareDevice) Upload(configBuf, sphereBuf []byte, outputWords int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return errors.New("device closed")
	}
	if d.uploaded {
		return errors.New("buffers already uploaded")
	}

	config, err := UnmarshalConfig(configBuf)
	if err != nil {
		return err
	}
	packed, err := UnmarshalSpheres(sphereBuf)
	if err != nil {
		return err
	}
	if len(packed) != int(config.NumSpheres) {
		return fmt.Errorf("%w: %d spheres uploaded, config declares %d", ErrLayout, len(packed), config.NumSpheres)
	}
	if want := int(config.Width) * int(config.Height) * 3; outputWords != want {
		return fmt.Errorf("%w: output of %d values, want %d", ErrLayout, outputWords, want)
	}

	world := &scene.Scene{Spheres: make([]*geometry.Sphere, len(packed))}
	for i, p := range packed {
		if world.Spheres[i], err = p.toGeometry(); err != nil {
			return fmt.Errorf("sphere %d: %w", i, err)
		}
	}

	d.kernel = renderer.Kernel{
		Camera:          config.Camera.toGeometry(),
		World:           world,
		Integrator:      integrator.NewPathTracingIntegrator(int(config.MaxBounces)),
		Width:           int(config.Width),
		Height:          int(config.Height),
		SamplesPerPixel: int(config.SampleCount),
	}
	d.seed = int64(config.Seed)
	d.output = make([]uint32, outputWords)
	d.uploaded = true
	return nil
}

func (d *SoftwareDevice) Dispatch(batch Batch) (Fence, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.uploaded || d.closed {
		return nil, errNotUploaded
	}
	total := d.kernel.Width * d.kernel.Height
	if batch.StartPixel < 0 || batch.NumPixels <= 0 || batch.StartPixel+batch.NumPixels > total {
		return nil, fmt.Errorf("batch [%d, +%d) outside %d pixels", batch.StartPixel, batch.NumPixels, total)
	}

	d.pending++
	f := &softwareFence{device: d, done: make(chan struct{})}
	go d.run(batch, d.kernel, d.output, f)
	return f, nil
}

// run writes only the batch's own pixels of output
func (d *SoftwareDevice) run(batch Batch, k renderer.Kernel, output []uint32, f *softwareFence) {
	defer close(f.done)
	defer func() {
		if r := recover(); r != nil {
			f.err = fmt.Errorf("dispatch at pixel %d panicked: %v", batch.StartPixel, r)
		}
	}()

	source := rand.NewSource(0)
	sampler := core.NewRandomSampler(rand.New(source))

	for p := batch.StartPixel; p < batch.StartPixel+batch.NumPixels; p++ {
		source.Seed(renderer.DeriveSeed(d.seed, p))
		rgb := renderer.ToRGB8(k.SamplePixel(p%k.Width, p/k.Width, sampler), k.SamplesPerPixel)
		output[p*3] = uint32(rgb[0])
		output[p*3+1] = uint32(rgb[1])
		output[p*3+2] = uint32(rgb[2])
	}
}

func (d *SoftwareDevice) ReadOutput() ([]uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.uploaded || d.closed {
		return nil, errNotUploaded
	}
	if d.pending > 0 {
		return nil, fmt.Errorf("%w: %d batches outstanding", ErrPendingDispatch, d.pending)
	}
	out := make([]uint32, len(d.output))
	copy(out, d.output)
	return out, nil
}

func (d *SoftwareDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.output = nil
	return nil
}

type softwareFence struct {
	device *SoftwareDevice
	done   chan struct{}
	err    error
	waited bool
}

func (f *softwareFence) Wait() error {
	<-f.done

	f.device.mu.Lock()
	defer f.device.mu.Unlock()
	if !f.waited {
		f.waited = true
		f.device.pending--
	}
	return f.err
}
