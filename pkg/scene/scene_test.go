package scene

import (
	"math"
	"testing"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

func newTestScene() *Scene {
	return NewScene(geometry.CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90,
		AspectRatio: 1,
	}, DefaultSamplingConfig())
}

func TestScene_AddAndClear(t *testing.T) {
	s := newTestScene()
	if s.GetPrimitiveCount() != 0 {
		t.Fatalf("Expected empty scene, got %d spheres", s.GetPrimitiveCount())
	}

	grey := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, grey))
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, -3), 0.5, grey))
	if s.GetPrimitiveCount() != 2 {
		t.Errorf("Expected 2 spheres, got %d", s.GetPrimitiveCount())
	}

	s.Clear()
	if s.GetPrimitiveCount() != 0 {
		t.Errorf("Expected 0 spheres after Clear, got %d", s.GetPrimitiveCount())
	}

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	if _, hit := s.Hit(ray, 0.001, math.Inf(1)); hit {
		t.Error("Expected cleared scene to report no hit")
	}
}

func TestScene_HitReturnsClosest(t *testing.T) {
	near := material.NewLambertian(core.NewVec3(1, 0, 0))
	far := material.NewLambertian(core.NewVec3(0, 0, 1))

	tests := []struct {
		name  string
		order []*geometry.Sphere
	}{
		{"near first", []*geometry.Sphere{
			geometry.NewSphere(core.NewVec3(0, 0, -2), 0.5, near),
			geometry.NewSphere(core.NewVec3(0, 0, -5), 0.5, far),
		}},
		{"far first", []*geometry.Sphere{
			geometry.NewSphere(core.NewVec3(0, 0, -5), 0.5, far),
			geometry.NewSphere(core.NewVec3(0, 0, -2), 0.5, near),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScene()
			for _, sphere := range tt.order {
				s.Add(sphere)
			}

			ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
			hit, ok := s.Hit(ray, 0.001, math.Inf(1))
			if !ok {
				t.Fatal("Expected hit")
			}
			if math.Abs(hit.T-1.5) > 1e-9 {
				t.Errorf("Expected t=1.5, got %v", hit.T)
			}
			if hit.Material != near {
				t.Error("Expected closest sphere's material")
			}
		})
	}
}

func TestScene_HitRespectsTMax(t *testing.T) {
	s := newTestScene()
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, -5), 0.5, material.NewMetal(core.NewVec3(1, 1, 1), 0)))

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	if _, hit := s.Hit(ray, 0.001, 4.0); hit {
		t.Error("Expected no hit beyond tMax")
	}
}

func TestScene_SnapshotIsolation(t *testing.T) {
	s := newTestScene()
	grey := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, grey))

	snapshot := s.Snapshot()

	s.Add(geometry.NewSphere(core.NewVec3(0, 0, -3), 0.5, grey))
	s.Spheres[0].Radius = 2.0
	s.SetCamera(geometry.CameraConfig{
		Center:      core.NewVec3(5, 5, 5),
		LookAt:      core.NewVec3(0, 0, 0),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        45,
		AspectRatio: 1,
	})

	if snapshot.GetPrimitiveCount() != 1 {
		t.Errorf("Expected snapshot to keep 1 sphere, got %d", snapshot.GetPrimitiveCount())
	}
	if snapshot.Spheres[0].Radius != 0.5 {
		t.Errorf("Expected snapshot radius 0.5, got %v", snapshot.Spheres[0].Radius)
	}
	if !snapshot.Camera.Origin.Equals(core.NewVec3(0, 0, 0)) {
		t.Errorf("Expected snapshot camera at origin, got %v", snapshot.Camera.Origin)
	}
	if snapshot.Spheres[0].Material != grey {
		t.Error("Expected snapshot to share material handles")
	}
}

func TestScene_SnapshotWithoutCamera(t *testing.T) {
	s := &Scene{}
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))))

	snapshot := s.Snapshot()
	if snapshot.Camera != nil {
		t.Errorf("Expected no camera in the snapshot, got %+v", snapshot.Camera)
	}
	if len(snapshot.Spheres) != 1 {
		t.Errorf("Expected 1 sphere, got %d", len(snapshot.Spheres))
	}
}

func TestBuiltinScenes_Contents(t *testing.T) {
	tests := []struct {
		name     string
		scene    *Scene
		expected int
	}{
		{"default", NewDefaultScene(), 2},
		{"materials", NewMaterialsScene(), 5},
		{"spheregrid", NewSphereGridScene(), 101},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.scene.GetPrimitiveCount() != tt.expected {
				t.Errorf("Expected %d spheres, got %d", tt.expected, tt.scene.GetPrimitiveCount())
			}
			if tt.scene.Camera == nil {
				t.Error("Expected camera to be set")
			}
		})
	}
}

func TestMaterialsScene_HollowGlassSharesMaterial(t *testing.T) {
	s := NewMaterialsScene()

	var glass []*geometry.Sphere
	for _, sphere := range s.Spheres {
		if sphere.Material.Kind == material.KindDielectric {
			glass = append(glass, sphere)
		}
	}
	if len(glass) != 2 {
		t.Fatalf("Expected 2 glass spheres, got %d", len(glass))
	}
	if glass[0].Material != glass[1].Material {
		t.Error("Expected shell spheres to share one material")
	}
	if glass[1].Radius >= 0 {
		t.Errorf("Expected inner shell to have negative radius, got %v", glass[1].Radius)
	}
}

func TestRandomScene_Deterministic(t *testing.T) {
	a := NewRandomScene(42)
	b := NewRandomScene(42)

	if a.GetPrimitiveCount() != b.GetPrimitiveCount() {
		t.Fatalf("Expected equal sphere counts, got %d and %d", a.GetPrimitiveCount(), b.GetPrimitiveCount())
	}
	for i := range a.Spheres {
		if !a.Spheres[i].Center.Equals(b.Spheres[i].Center) {
			t.Fatalf("Sphere %d differs: %v vs %v", i, a.Spheres[i].Center, b.Spheres[i].Center)
		}
		if a.Spheres[i].Material.Kind != b.Spheres[i].Material.Kind {
			t.Fatalf("Sphere %d material kind differs", i)
		}
	}

	// 1 ground + at most 22*22 small + 3 feature spheres
	if n := a.GetPrimitiveCount(); n < 4 || n > 1+22*22+3 {
		t.Errorf("Unexpected sphere count %d", n)
	}
}

func TestOklchToRGB_InRange(t *testing.T) {
	for hue := 0.0; hue < 360; hue += 30 {
		c := oklchToRGB(0.65, 0.25, hue)
		if c.X < 0 || c.X > 1 || c.Y < 0 || c.Y > 1 || c.Z < 0 || c.Z > 1 {
			t.Errorf("Hue %v produced out of range color %v", hue, c)
		}
	}
}
