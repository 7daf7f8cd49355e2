package scene

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

// NewDefaultScene creates the two-sphere scene: a small diffuse sphere resting
// on a large diffuse ground sphere
func NewDefaultScene(cameraOverrides ...geometry.CameraConfig) *Scene {
	cameraConfig := geometry.CameraConfig{
		Center:        core.NewVec3(0, 0, 0),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          90.0,
		AspectRatio:   16.0 / 9.0,
		Aperture:      0.0,
		FocusDistance: 1.0,
	}
	if len(cameraOverrides) > 0 {
		cameraConfig = cameraOverrides[0]
	}

	s := NewScene(cameraConfig, DefaultSamplingConfig())

	ground := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))
	center := material.NewLambertian(core.NewVec3(0.7, 0.3, 0.3))

	s.Add(geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, ground))
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, center))

	return s
}

// NewMaterialsScene creates a row of spheres showing every material:
// a hollow glass shell, a diffuse center and a fuzzy metal
func NewMaterialsScene(cameraOverrides ...geometry.CameraConfig) *Scene {
	cameraConfig := geometry.CameraConfig{
		Center:        core.NewVec3(-2, 2, 1),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          30.0,
		AspectRatio:   16.0 / 9.0,
		Aperture:      0.1,
		FocusDistance: 0.0, // Auto-calculate focus distance
	}
	if len(cameraOverrides) > 0 {
		cameraConfig = cameraOverrides[0]
	}

	s := NewScene(cameraConfig, DefaultSamplingConfig())

	ground := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))
	center := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	glass := material.NewDielectric(1.5)
	gold := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.0)

	s.Add(geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, ground))
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, center))

	// Hollow glass: the inner sphere shares the material and flips the normal
	s.Add(geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.5, glass))
	s.Add(geometry.NewSphere(core.NewVec3(-1, 0, -1), -0.45, glass))

	s.Add(geometry.NewSphere(core.NewVec3(1, 0, -1), 0.5, gold))

	return s
}
