package snapshot

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultManifestNames are tried in order for every date folder.
var DefaultManifestNames = []string{"index.json", "index.yaml"}

// Manifest lists the capture files available for one date.
type Manifest struct {
	Files []string `json:"files" yaml:"files"`
}

// DecodeManifest decodes a manifest by file extension. JSON manifests may be
// an object with a "files" array or a bare array of filenames.
func DecodeManifest(name string, data []byte) (Manifest, error) {
	var m Manifest

	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		trimmed := strings.TrimSpace(string(data))
		if strings.HasPrefix(trimmed, "[") {
			if err := json.Unmarshal(data, &m.Files); err != nil {
				return Manifest{}, fmt.Errorf("decoding %s: %w", name, err)
			}
		} else if err := json.Unmarshal(data, &m); err != nil {
			return Manifest{}, fmt.Errorf("decoding %s: %w", name, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return Manifest{}, fmt.Errorf("decoding %s: %w", name, err)
		}
	default:
		return Manifest{}, fmt.Errorf("unsupported manifest type %q", name)
	}

	return m, nil
}

// EncodeManifest renders m as indented JSON.
func EncodeManifest(m Manifest) ([]byte, error) {
	if m.Files == nil {
		m.Files = []string{}
	}
	return json.MarshalIndent(m, "", "  ")
}
