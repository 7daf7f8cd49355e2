package integrator

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

// ShadowAcneEpsilon is the minimum hit distance for secondary rays, so a
// scattered ray does not re-hit the surface it left
const ShadowAcneEpsilon = 0.001

// World is anything rays can be traced against
type World interface {
	Hit(ray core.Ray, tMin, tMax float64) (material.HitRecord, bool)
}

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor returns the linear radiance arriving along ray
	RayColor(ray core.Ray, world World, sampler core.Sampler) core.Vec3
}

var (
	skyWhite = core.NewVec3(1.0, 1.0, 1.0)
	skyBlue  = core.NewVec3(0.5, 0.7, 0.9)
)

// Background returns the sky gradient seen by a ray that escapes the scene:
// white at the horizon blending to blue overhead
func Background(ray core.Ray) core.Vec3 {
	unit := ray.Direction.Normalize()
	t := 0.5 * (unit.Y + 1.0)
	return skyWhite.Lerp(skyBlue, t)
}
