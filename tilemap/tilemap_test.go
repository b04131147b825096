package tilemap

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleMap = `{
  "layers": [
    {"name": "Ground", "objects": []},
    {
      "name": "Objects",
      "objects": [
        {"name": "lounge", "type": "ConversationArea", "x": 0, "y": 0, "width": 96, "height": 64},
        {"name": "arcade", "type": "TicTacToeArea", "x": 200, "y": 0, "width": 64, "height": 64}
      ]
    }
  ]
}`

func writeMap(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "map.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile_ParsesObjects(t *testing.T) {
	m, err := LoadFile(writeMap(t, sampleMap))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	layer, err := m.ObjectLayer()
	if err != nil {
		t.Fatalf("object layer missing: %v", err)
	}
	if len(layer.Objects) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(layer.Objects))
	}
	lounge := layer.Objects[0]
	if lounge.Name != "lounge" || lounge.Type != "ConversationArea" {
		t.Errorf("unexpected first object: %+v", lounge)
	}
	if lounge.Width != 96 || lounge.Height != 64 {
		t.Errorf("unexpected geometry: %+v", lounge)
	}
}

func TestObjectLayer_MissingRejected(t *testing.T) {
	m := &Map{Layers: []Layer{{Name: "Ground"}}}
	if _, err := m.ObjectLayer(); err == nil {
		t.Fatal("expected an error for a map without an object layer")
	}
}

func TestLoadFile_BadJSONRejected(t *testing.T) {
	if _, err := LoadFile(writeMap(t, "{not json")); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestLoadFile_MissingFileRejected(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
