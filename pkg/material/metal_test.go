package material

import (
	"math/rand"
	"testing"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

func TestNewMetal_FuzzClamp(t *testing.T) {
	tests := []struct {
		name         string
		inputFuzz    float64
		expectedFuzz float64
	}{
		{"Valid fuzz 0.0", 0.0, 0.0},
		{"Valid fuzz 0.5", 0.5, 0.5},
		{"Valid fuzz 1.0", 1.0, 1.0},
		{"Clamp above 1.0", 1.5, 1.0},
		{"Clamp below 0.0", -0.5, 0.0},
	}

	albedo := core.NewVec3(0.8, 0.8, 0.8)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metal := NewMetal(albedo, tt.inputFuzz)
			if metal.Fuzz != tt.expectedFuzz {
				t.Errorf("Expected fuzz %f, got %f", tt.expectedFuzz, metal.Fuzz)
			}
			if metal.Kind != KindMetal {
				t.Errorf("Expected kind %v, got %v", KindMetal, metal.Kind)
			}
		})
	}
}

func TestMetal_PerfectReflection(t *testing.T) {
	albedo := core.NewVec3(0.9, 0.9, 0.9)
	metal := NewMetal(albedo, 0.0)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	// Ray hitting surface at 45 degrees
	rayIn := core.NewRay(core.NewVec3(0, 1, 1), core.NewVec3(0, -1, -1))
	hit := HitRecord{
		Point:     core.NewVec3(0, 0, 0),
		Normal:    core.NewVec3(0, 0, 1),
		FrontFace: true,
	}

	scatter, didScatter := metal.Scatter(rayIn, hit, sampler)
	if !didScatter {
		t.Fatal("Metal should scatter")
	}

	// For perfect reflection: incident (0, -1, -1) normalized reflects to (0, -0.707, 0.707)
	expected := core.NewVec3(0, -1, 1).Normalize()
	actual := scatter.Scattered.Direction

	tolerance := 1e-10
	if actual.Subtract(expected).Length() > tolerance {
		t.Errorf("Perfect reflection failed: expected %v, got %v", expected, actual)
	}

	if !scatter.Attenuation.Equals(albedo) {
		t.Errorf("Attenuation should equal albedo: expected %v, got %v", albedo, scatter.Attenuation)
	}
}

func TestMetal_MirrorAlignedRayReturnsBack(t *testing.T) {
	metal := NewMetal(core.NewVec3(1, 1, 1), 0.0)
	rayIn := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -2))
	hit := HitRecord{Point: core.NewVec3(0, 0, 0), Normal: core.NewVec3(0, 0, 1), FrontFace: true}

	scatter, didScatter := metal.Scatter(rayIn, hit, fixedSampler{})
	if !didScatter {
		t.Fatal("Metal should scatter")
	}
	if !scatter.Scattered.Direction.Equals(core.NewVec3(0, 0, 1)) {
		t.Errorf("Expected (0, 0, 1), got %v", scatter.Scattered.Direction)
	}
}

func TestMetal_FuzzyReflectionStaysNearMirror(t *testing.T) {
	metal := NewMetal(core.NewVec3(0.8, 0.8, 0.8), 0.3)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	rayIn := core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1))
	hit := HitRecord{Point: core.NewVec3(0, 0, 0), Normal: core.NewVec3(0, 0, 1), FrontFace: true}
	mirror := core.NewVec3(0, 0, 1)

	for i := 0; i < 500; i++ {
		scatter, didScatter := metal.Scatter(rayIn, hit, sampler)
		if !didScatter {
			t.Fatal("Head-on fuzzy reflection should never be absorbed")
		}
		if d := scatter.Scattered.Direction.Subtract(mirror).Length(); d > 0.3 {
			t.Fatalf("Perturbation %f exceeds fuzz radius", d)
		}
	}
}

func TestMetal_FuzzDoesNotCauseAbsorption(t *testing.T) {
	metal := NewMetal(core.NewVec3(0.8, 0.8, 0.8), 1.0)

	// Grazing ray about 11 degrees above the surface; the mirror direction
	// stays above it, so every fuzzed reflection scatters
	rayIn := core.NewRay(core.NewVec3(-1, 0, 0.2), core.NewVec3(1, 0, -0.2))
	hit := HitRecord{Point: core.NewVec3(0, 0, 0), Normal: core.NewVec3(0, 0, 1), FrontFace: true}

	// Perturbation (0, 0, -0.9) drives the fuzzed direction below the surface
	scatter, didScatter := metal.Scatter(rayIn, hit, fixedSampler{sample: core.NewVec3(0.5, 0.5, 0.05)})
	if !didScatter {
		t.Fatal("Expected the metal to scatter when only the fuzz points below the surface")
	}
	if scatter.Scattered.Direction.Z >= 0 {
		t.Errorf("Expected the fuzzed direction to point below the surface, got %v", scatter.Scattered.Direction)
	}

	sampler := core.NewRandomSampler(rand.New(rand.NewSource(7)))
	for i := 0; i < 10000; i++ {
		if _, didScatter := metal.Scatter(rayIn, hit, sampler); !didScatter {
			t.Fatalf("Sample %d absorbed a reflection whose mirror direction is above the surface", i)
		}
	}
}

func TestMetal_AbsorbsWhenMirrorDirectionIsBelowSurface(t *testing.T) {
	metal := NewMetal(core.NewVec3(0.8, 0.8, 0.8), 0.0)

	// A ray arriving from behind the normal reflects into the surface
	rayIn := core.NewRay(core.NewVec3(-1, 0, -1), core.NewVec3(1, 0, 1))
	hit := HitRecord{Point: core.NewVec3(0, 0, 0), Normal: core.NewVec3(0, 0, 1), FrontFace: true}

	if _, didScatter := metal.Scatter(rayIn, hit, fixedSampler{}); didScatter {
		t.Error("Expected the metal to absorb a reflection pointing into the surface")
	}
}
