package scene

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Camera         *geometry.Camera
	CameraConfig   geometry.CameraConfig
	Spheres        []*geometry.Sphere // Objects in the scene, scanned linearly
	SamplingConfig SamplingConfig
}

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width           int // Image width
	Height          int // Image height
	SamplesPerPixel int // Number of rays per pixel
	MaxDepth        int // Maximum ray bounce depth
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:           400,
		Height:          225,
		SamplesPerPixel: 100,
		MaxDepth:        50,
	}
}

// NewScene creates an empty scene viewed through the given camera
func NewScene(cameraConfig geometry.CameraConfig, samplingConfig SamplingConfig) *Scene {
	return &Scene{
		Camera:         geometry.NewCamera(cameraConfig),
		CameraConfig:   cameraConfig,
		Spheres:        make([]*geometry.Sphere, 0),
		SamplingConfig: samplingConfig,
	}
}

// Add appends a sphere to the scene
func (s *Scene) Add(sphere *geometry.Sphere) {
	s.Spheres = append(s.Spheres, sphere)
}

// Clear removes every sphere from the scene
func (s *Scene) Clear() {
	s.Spheres = s.Spheres[:0:0]
}

// Hit finds the closest intersection in (tMin, tMax) across all spheres.
// tMax narrows to the best hit so far as the spheres are scanned.
func (s *Scene) Hit(ray core.Ray, tMin, tMax float64) (material.HitRecord, bool) {
	var closestHit material.HitRecord
	closestSoFar := tMax
	hitAnything := false

	for _, sphere := range s.Spheres {
		if hit, isHit := sphere.Hit(ray, tMin, closestSoFar); isHit {
			hitAnything = true
			closestSoFar = hit.T
			closestHit = hit
		}
	}

	return closestHit, hitAnything
}

// SetCamera replaces the camera, rebuilding it from the new configuration
func (s *Scene) SetCamera(config geometry.CameraConfig) {
	s.CameraConfig = config
	s.Camera = geometry.NewCamera(config)
}

// Snapshot returns a copy of the scene whose sphere list cannot be changed by
// later Add or Clear calls. Renderers share the snapshot read-only across goroutines.
// A scene without a camera yields a snapshot without one.
func (s *Scene) Snapshot() *Scene {
	spheres := make([]*geometry.Sphere, len(s.Spheres))
	for i, sphere := range s.Spheres {
		copied := *sphere
		spheres[i] = &copied
	}
	var camera *geometry.Camera
	if s.Camera != nil {
		copied := *s.Camera
		camera = &copied
	}
	return &Scene{
		Camera:         camera,
		CameraConfig:   s.CameraConfig,
		Spheres:        spheres,
		SamplingConfig: s.SamplingConfig,
	}
}

// GetPrimitiveCount returns the total number of primitive objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	return len(s.Spheres)
}
