package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

// ErrUnknownMaterial is returned when a sphere references an undeclared material
var ErrUnknownMaterial = errors.New("unknown material")

type CameraCfg struct {
	LookFrom      [3]float64 `json:"lookFrom"`
	LookAt        [3]float64 `json:"lookAt"`
	Up            [3]float64 `json:"up,omitempty"` // defaults to +Y
	VFov          float64    `json:"vfov"`
	Aperture      float64    `json:"aperture,omitempty"`
	FocusDistance float64    `json:"focusDistance,omitempty"` // 0 = distance to lookAt
}

type MaterialCfg struct {
	Type            string     `json:"type"` // "lambertian", "metal" or "dielectric"
	Albedo          [3]float64 `json:"albedo,omitempty"`
	Fuzz            float64    `json:"fuzz,omitempty"`
	RefractiveIndex float64    `json:"refractiveIndex,omitempty"`
}

type SphereCfg struct {
	Center   [3]float64 `json:"center"`
	Radius   float64    `json:"radius"` // negative for hollow shells
	Material string     `json:"material"`
}

// FileConfig is the on-disk JSON description of a scene.
// Materials are declared once by name and shared by every sphere that references them.
type FileConfig struct {
	Width           int                    `json:"width,omitempty"`
	Height          int                    `json:"height,omitempty"`
	SamplesPerPixel int                    `json:"samplesPerPixel,omitempty"`
	MaxDepth        *int                   `json:"maxDepth,omitempty"` // absent means the default; 0 renders black
	Camera          CameraCfg              `json:"camera"`
	Materials       map[string]MaterialCfg `json:"materials"`
	Spheres         []SphereCfg            `json:"spheres"`
}

// LoadConfig reads and parses a JSON scene file
func LoadConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene config %s: %w", path, err)
	}
	config, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// ParseConfig parses a JSON scene description and fills in defaults
func ParseConfig(data []byte) (*FileConfig, error) {
	var config FileConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse scene config: %w", err)
	}

	defaults := DefaultSamplingConfig()
	if config.Width <= 0 {
		config.Width = defaults.Width
	}
	if config.Height <= 0 {
		config.Height = defaults.Height
	}
	if config.SamplesPerPixel <= 0 {
		config.SamplesPerPixel = defaults.SamplesPerPixel
	}
	if config.MaxDepth == nil {
		depth := defaults.MaxDepth
		config.MaxDepth = &depth
	}
	if *config.MaxDepth < 0 {
		return nil, fmt.Errorf("maxDepth must not be negative, got %d", *config.MaxDepth)
	}
	if config.Camera.Up == [3]float64{} {
		config.Camera.Up = [3]float64{0, 1, 0}
	}
	if config.Camera.VFov <= 0 {
		config.Camera.VFov = 90
	}
	return &config, nil
}

// Build constructs a scene from the configuration
func (c *FileConfig) Build() (*Scene, error) {
	// Build materials in name order so errors are reported deterministically
	names := make([]string, 0, len(c.Materials))
	for name := range c.Materials {
		names = append(names, name)
	}
	sort.Strings(names)

	materials := make(map[string]*material.Material, len(c.Materials))
	for _, name := range names {
		m, err := c.Materials[name].build()
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		materials[name] = m
	}

	cameraConfig := geometry.CameraConfig{
		Center:        vec(c.Camera.LookFrom),
		LookAt:        vec(c.Camera.LookAt),
		Up:            vec(c.Camera.Up),
		VFov:          c.Camera.VFov,
		AspectRatio:   float64(c.Width) / float64(c.Height),
		Aperture:      c.Camera.Aperture,
		FocusDistance: c.Camera.FocusDistance,
	}

	maxDepth := DefaultSamplingConfig().MaxDepth
	if c.MaxDepth != nil {
		maxDepth = *c.MaxDepth
	}

	s := NewScene(cameraConfig, SamplingConfig{
		Width:           c.Width,
		Height:          c.Height,
		SamplesPerPixel: c.SamplesPerPixel,
		MaxDepth:        maxDepth,
	})

	for i, sc := range c.Spheres {
		m, ok := materials[sc.Material]
		if !ok {
			return nil, fmt.Errorf("sphere %d: %w %q", i, ErrUnknownMaterial, sc.Material)
		}
		if sc.Radius == 0 {
			return nil, fmt.Errorf("sphere %d: radius must be non-zero", i)
		}
		s.Add(geometry.NewSphere(vec(sc.Center), sc.Radius, m))
	}

	return s, nil
}

func (m MaterialCfg) build() (*material.Material, error) {
	switch m.Type {
	case "lambertian":
		return material.NewLambertian(vec(m.Albedo)), nil
	case "metal":
		return material.NewMetal(vec(m.Albedo), m.Fuzz), nil
	case "dielectric":
		if m.RefractiveIndex <= 0 {
			return nil, fmt.Errorf("refractiveIndex must be positive, got %g", m.RefractiveIndex)
		}
		return material.NewDielectric(m.RefractiveIndex), nil
	default:
		return nil, fmt.Errorf("unsupported material type %q", m.Type)
	}
}

func vec(a [3]float64) core.Vec3 {
	return core.NewVec3(a[0], a[1], a[2])
}
