package material

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// scatterMetal reflects the ray specularly and perturbs it by Fuzz.
// The ray is absorbed when the unperturbed reflection points into the surface.
func scatterMetal(m *Material, rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	// Calculate perfect reflection direction
	reflected := rayIn.Direction.Normalize().Reflect(hit.Normal)

	// Absorption is decided by the mirror direction, before fuzz is applied
	scatters := reflected.Dot(hit.Normal) > 0

	// Add fuzziness by perturbing the reflection direction
	if m.Fuzz > 0 {
		reflected = reflected.Add(core.RandomInUnitSphere(sampler).Multiply(m.Fuzz))
	}

	scattered := core.NewRay(hit.Point, reflected)

	return ScatterResult{
		Incoming:    rayIn,
		Scattered:   scattered,
		Attenuation: m.Albedo,
	}, scatters
}
