package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFromPath reads a workspace file (YAML or JSON), validates it and
// records its directory for resolving relative paths.
func LoadFromPath(path string) (*Workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workspace: %w", err)
	}
	w, err := Load(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if abs, err := filepath.Abs(filepath.Dir(path)); err == nil {
		w.Dir = abs
	}
	return w, nil
}

// Load parses workspace from bytes. ext is the file extension for a format
// hint; empty means detect from content.
func Load(data []byte, ext string) (*Workspace, error) {
	var w Workspace
	if err := decode(data, ext, &w); err != nil {
		return nil, fmt.Errorf("parse workspace: %w", err)
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workspace: %w", err)
	}
	return &w, nil
}

func decode(data []byte, ext string, v any) error {
	switch strings.ToLower(ext) {
	case ".json":
		return json.Unmarshal(data, v)
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, v)
	}
	if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		return json.Unmarshal(data, v)
	}
	return yaml.Unmarshal(data, v)
}
