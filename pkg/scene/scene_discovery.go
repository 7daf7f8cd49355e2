package scene

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownScene is returned when a scene name matches no built-in scene or file
var ErrUnknownScene = errors.New("unknown scene")

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Type        string `json:"type"`        // "builtin" or "json"
}

type builtinScene struct {
	info   SceneInfo
	create func(seed int64) *Scene
}

var builtinScenes = []builtinScene{
	{
		info:   SceneInfo{ID: "default", DisplayName: "Default", Description: "Diffuse sphere on a diffuse ground sphere", Type: "builtin"},
		create: func(int64) *Scene { return NewDefaultScene() },
	},
	{
		info:   SceneInfo{ID: "materials", DisplayName: "Materials", Description: "Hollow glass, diffuse and metal spheres", Type: "builtin"},
		create: func(int64) *Scene { return NewMaterialsScene() },
	},
	{
		info:   SceneInfo{ID: "spheregrid", DisplayName: "Sphere Grid", Description: "Grid of colored metal spheres", Type: "builtin"},
		create: func(int64) *Scene { return NewSphereGridScene() },
	},
	{
		info:   SceneInfo{ID: "random", DisplayName: "Random Spheres", Description: "Seeded field of random small spheres", Type: "builtin"},
		create: func(seed int64) *Scene { return NewRandomScene(seed) },
	},
}

// ListScenes returns the built-in scenes sorted by display name
func ListScenes() []SceneInfo {
	scenes := make([]SceneInfo, 0, len(builtinScenes))
	for _, b := range builtinScenes {
		scenes = append(scenes, b.info)
	}
	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})
	return scenes
}

// NewByName creates a built-in scene by ID, or loads a JSON scene file when
// name ends in ".json". seed only affects procedurally generated scenes.
func NewByName(name string, seed int64) (*Scene, error) {
	if strings.HasSuffix(strings.ToLower(name), ".json") {
		config, err := LoadConfig(name)
		if err != nil {
			return nil, err
		}
		return config.Build()
	}

	for _, b := range builtinScenes {
		if b.info.ID == name {
			return b.create(seed), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScene, name)
}
