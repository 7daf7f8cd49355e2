package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// Buffer sizes in bytes. vec3 fields occupy 16 bytes (std430 alignment).
const (
	CameraSize   = 128
	ConfigSize   = 32 + CameraSize
	SphereSize   = 48
	cameraOffset = 32
)

// ErrLayout is returned when a packed buffer has the wrong size or contents
var ErrLayout = errors.New("invalid gpu buffer layout")

// Camera is the packed camera block. Layout (offsets in bytes):
//
//	  0 origin            vec3 + pad
//	 16 lower_left_corner vec3 + pad
//	 32 horizontal        vec3 + pad
//	 48 vertical          vec3 + pad
//	 64 u                 vec3 + pad
//	 80 v                 vec3 + pad
//	 96 w                 vec3 + pad
//	112 lens_radius       f32, then 12 bytes pad
type Camera struct {
	Origin          [3]float32
	LowerLeftCorner [3]float32
	Horizontal      [3]float32
	Vertical        [3]float32
	U               [3]float32
	V               [3]float32
	W               [3]float32
	LensRadius      float32
}

// Config is the packed render configuration. Layout (offsets in bytes):
//
//	 0 num_spheres  u32
//	 4 sample_count u32
//	 8 max_bounces  u32
//	12 width        u32
//	16 height       u32
//	20 seed_lo      u32
//	24 seed_hi      u32
//	28 pad          4 bytes
//	32 camera       Camera
type Config struct {
	NumSpheres  uint32
	SampleCount uint32
	MaxBounces  uint32
	Width       uint32
	Height      uint32
	Seed        uint64 // split into two u32 words
	Camera      Camera
}

// Sphere is one packed sphere record. Layout (offsets in bytes):
//
//	 0 radius     f32
//	 4 mat_type   u32 (material.Kind)
//	 8 fuzz_or_ir f32 (metal fuzz or dielectric index)
//	12 pad
//	16 albedo     vec3 + pad
//	32 center     vec3 + pad
type Sphere struct {
	Radius       float32
	MaterialType uint32
	FuzzOrIR     float32
	Albedo       [3]float32
	Center       [3]float32
}

// NewConfig packs the sampling settings and camera of s. Every bit of seed
// is kept, so the device sees the same seed the caller reports.
func NewConfig(s *scene.Scene, seed int64) Config {
	c := s.Camera
	return Config{
		NumSpheres:  uint32(len(s.Spheres)),
		SampleCount: uint32(s.SamplingConfig.SamplesPerPixel),
		MaxBounces:  uint32(s.SamplingConfig.MaxDepth),
		Width:       uint32(s.SamplingConfig.Width),
		Height:      uint32(s.SamplingConfig.Height),
		Seed:        uint64(seed),
		Camera: Camera{
			Origin:          toF32(c.Origin),
			LowerLeftCorner: toF32(c.LowerLeftCorner),
			Horizontal:      toF32(c.Horizontal),
			Vertical:        toF32(c.Vertical),
			U:               toF32(c.U),
			V:               toF32(c.V),
			W:               toF32(c.W),
			LensRadius:      float32(c.LensRadius),
		},
	}
}

// PackSpheres flattens spheres and their materials into packed records
func PackSpheres(spheres []*geometry.Sphere) []Sphere {
	packed := make([]Sphere, len(spheres))
	for i, s := range spheres {
		p := Sphere{
			Radius:       float32(s.Radius),
			MaterialType: uint32(s.Material.Kind),
			Albedo:       toF32(s.Material.Albedo),
			Center:       toF32(s.Center),
		}
		switch s.Material.Kind {
		case material.KindMetal:
			p.FuzzOrIR = float32(s.Material.Fuzz)
		case material.KindDielectric:
			p.FuzzOrIR = float32(s.Material.RefractiveIndex)
		}
		packed[i] = p
	}
	return packed
}

// Marshal serializes the config for upload
func (c *Config) Marshal() []byte {
	buf := make([]byte, ConfigSize)
	le := binary.LittleEndian
	le.PutUint32(buf[0:], c.NumSpheres)
	le.PutUint32(buf[4:], c.SampleCount)
	le.PutUint32(buf[8:], c.MaxBounces)
	le.PutUint32(buf[12:], c.Width)
	le.PutUint32(buf[16:], c.Height)
	le.PutUint32(buf[20:], uint32(c.Seed))
	le.PutUint32(buf[24:], uint32(c.Seed>>32))

	cam := buf[cameraOffset:]
	for i, v := range c.Camera.vectors() {
		putVec3(cam[i*16:], *v)
	}
	le.PutUint32(cam[112:], math.Float32bits(c.Camera.LensRadius))
	return buf
}

// UnmarshalConfig decodes a buffer produced by Config.Marshal
func UnmarshalConfig(buf []byte) (Config, error) {
	if len(buf) != ConfigSize {
		return Config{}, fmt.Errorf("%w: config is %d bytes, want %d", ErrLayout, len(buf), ConfigSize)
	}
	le := binary.LittleEndian
	c := Config{
		NumSpheres:  le.Uint32(buf[0:]),
		SampleCount: le.Uint32(buf[4:]),
		MaxBounces:  le.Uint32(buf[8:]),
		Width:       le.Uint32(buf[12:]),
		Height:      le.Uint32(buf[16:]),
		Seed:        uint64(le.Uint32(buf[20:])) | uint64(le.Uint32(buf[24:]))<<32,
	}

	cam := buf[cameraOffset:]
	for i, v := range c.Camera.vectors() {
		*v = getVec3(cam[i*16:])
	}
	c.Camera.LensRadius = math.Float32frombits(le.Uint32(cam[112:]))
	return c, nil
}

// MarshalSpheres serializes sphere records back to back
func MarshalSpheres(spheres []Sphere) []byte {
	buf := make([]byte, len(spheres)*SphereSize)
	le := binary.LittleEndian
	for i, s := range spheres {
		b := buf[i*SphereSize:]
		le.PutUint32(b[0:], math.Float32bits(s.Radius))
		le.PutUint32(b[4:], s.MaterialType)
		le.PutUint32(b[8:], math.Float32bits(s.FuzzOrIR))
		putVec3(b[16:], s.Albedo)
		putVec3(b[32:], s.Center)
	}
	return buf
}

// UnmarshalSpheres decodes a buffer produced by MarshalSpheres
func UnmarshalSpheres(buf []byte) ([]Sphere, error) {
	if len(buf)%SphereSize != 0 {
		return nil, fmt.Errorf("%w: sphere buffer is %d bytes, not a multiple of %d", ErrLayout, len(buf), SphereSize)
	}
	le := binary.LittleEndian
	spheres := make([]Sphere, len(buf)/SphereSize)
	for i := range spheres {
		b := buf[i*SphereSize:]
		spheres[i] = Sphere{
			Radius:       math.Float32frombits(le.Uint32(b[0:])),
			MaterialType: le.Uint32(b[4:]),
			FuzzOrIR:     math.Float32frombits(le.Uint32(b[8:])),
			Albedo:       getVec3(b[16:]),
			Center:       getVec3(b[32:]),
		}
	}
	return spheres, nil
}

// toGeometry rebuilds a camera from the packed block
func (c Camera) toGeometry() *geometry.Camera {
	return &geometry.Camera{
		Origin:          toVec3(c.Origin),
		LowerLeftCorner: toVec3(c.LowerLeftCorner),
		Horizontal:      toVec3(c.Horizontal),
		Vertical:        toVec3(c.Vertical),
		U:               toVec3(c.U),
		V:               toVec3(c.V),
		W:               toVec3(c.W),
		LensRadius:      float64(c.LensRadius),
	}
}

// toGeometry rebuilds a sphere with its own material from the packed record
func (s Sphere) toGeometry() (*geometry.Sphere, error) {
	var m *material.Material
	switch material.Kind(s.MaterialType) {
	case material.KindLambertian:
		m = material.NewLambertian(toVec3(s.Albedo))
	case material.KindMetal:
		m = material.NewMetal(toVec3(s.Albedo), float64(s.FuzzOrIR))
	case material.KindDielectric:
		m = material.NewDielectric(float64(s.FuzzOrIR))
	default:
		return nil, fmt.Errorf("%w: unknown material type %d", ErrLayout, s.MaterialType)
	}
	return geometry.NewSphere(toVec3(s.Center), float64(s.Radius), m), nil
}

func (c *Camera) vectors() []*[3]float32 {
	return []*[3]float32{&c.Origin, &c.LowerLeftCorner, &c.Horizontal, &c.Vertical, &c.U, &c.V, &c.W}
}

func putVec3(b []byte, v [3]float32) {
	for i := 0; i < 3; i++ {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v[i]))
	}
	binary.LittleEndian.PutUint32(b[12:], 0) // pad
}

func getVec3(b []byte) [3]float32 {
	var v [3]float32
	for i := 0; i < 3; i++ {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}

func toF32(v core.Vec3) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

func toVec3(v [3]float32) core.Vec3 {
	return core.NewVec3(float64(v[0]), float64(v[1]), float64(v[2]))
}
