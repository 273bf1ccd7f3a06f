package intake

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFromPath reads a bundle file (YAML or JSON).
func LoadFromPath(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}
	return Load(data, filepath.Ext(path))
}

// Load parses a bundle. ext is the file extension as a format hint; empty
// means detect from content.
func Load(data []byte, ext string) (*Bundle, error) {
	var b Bundle
	var err error
	switch strings.ToLower(ext) {
	case ".json":
		err = json.Unmarshal(data, &b)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &b)
	default:
		if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
			err = json.Unmarshal(data, &b)
		} else {
			err = yaml.Unmarshal(data, &b)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("parse bundle: %w", err)
	}
	if len(b.Failures) == 0 {
		return nil, ErrNoFailures
	}
	return &b, nil
}
