package material

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// scatterLambertian bounces the ray towards normal + a random unit vector,
// a cosine-weighted approximation of diffuse reflection. It never absorbs.
func scatterLambertian(m *Material, rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	scatterDirection := hit.Normal.Add(core.RandomUnitVector(sampler))

	// The random vector can cancel the normal almost exactly
	if scatterDirection.IsNearZero() {
		scatterDirection = hit.Normal
	}

	return ScatterResult{
		Incoming:    rayIn,
		Scattered:   core.NewRay(hit.Point, scatterDirection),
		Attenuation: m.Albedo,
	}, true
}
