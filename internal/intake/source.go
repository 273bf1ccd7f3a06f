package intake

import (
	"context"
	"fmt"
	"path/filepath"
)

// Source returns the bundle for a run reference (a path, a CI launch id).
type Source interface {
	Fetch(ctx context.Context, ref string) (*Bundle, error)
}

// FileSource reads bundles from disk. Relative refs resolve against Dir.
type FileSource struct {
	Dir string
}

// Fetch implements Source.
func (s FileSource) Fetch(ctx context.Context, ref string) (*Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := ref
	if s.Dir != "" && !filepath.IsAbs(ref) {
		path = filepath.Join(s.Dir, ref)
	}
	b, err := LoadFromPath(path)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ref, err)
	}
	if b.Source == "" {
		b.Source = path
	}
	return b, nil
}

// StaticSource returns a fixed bundle for any ref. Use in tests or when the
// caller already holds the bundle.
type StaticSource struct {
	Bundle *Bundle
}

// Fetch implements Source.
func (s StaticSource) Fetch(context.Context, string) (*Bundle, error) {
	if s.Bundle == nil {
		return nil, ErrNoFailures
	}
	return s.Bundle, nil
}
