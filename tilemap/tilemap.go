// tilemap/tilemap.go
package tilemap

import (
	"encoding/json"
	"fmt"
	"os"
)

// ObjectLayerName is the layer the town reads its interactable geometry from.
const ObjectLayerName = "Objects"

// Map is the slice of a Tiled JSON export the town cares about: named object
// layers holding typed rectangles.
type Map struct {
	Layers []Layer `json:"layers"`
}

type Layer struct {
	Name    string   `json:"name"`
	Objects []Object `json:"objects"`
}

// Object is one geometry entry. Type selects the area kind to instantiate,
// Name becomes the area id.
type Object struct {
	Name   string  `json:"name"`
	Type   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ObjectLayer returns the layer named ObjectLayerName.
func (m *Map) ObjectLayer() (*Layer, error) {
	for i := range m.Layers {
		if m.Layers[i].Name == ObjectLayerName {
			return &m.Layers[i], nil
		}
	}
	return nil, fmt.Errorf("unable to find objects layer in map")
}

// LoadFile parses a Tiled JSON map from disk.
func LoadFile(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map %s: %w", path, err)
	}
	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse map %s: %w", path, err)
	}
	return &m, nil
}
