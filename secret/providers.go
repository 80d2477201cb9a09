package secret

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvProvider resolves references as environment variable names.
type EnvProvider struct{}

// NewEnvProvider creates an EnvProvider.
func NewEnvProvider() *EnvProvider { return &EnvProvider{} }

// Name returns "env".
func (p *EnvProvider) Name() string { return "env" }

// Resolve looks the ref up in the environment. A missing variable is an
// error; an empty one is left to the resolver's strict mode.
func (p *EnvProvider) Resolve(_ context.Context, ref string) (string, error) {
	value, ok := os.LookupEnv(ref)
	if !ok {
		return "", fmt.Errorf("environment variable %q is not set", ref)
	}
	return value, nil
}

// Close is a no-op.
func (p *EnvProvider) Close() error { return nil }

// FileProvider resolves references as file paths relative to a base
// directory, reading the file's contents with surrounding whitespace
// trimmed.
type FileProvider struct {
	base string
}

// NewFileProvider creates a FileProvider rooted at base. An empty base
// resolves paths as given.
func NewFileProvider(base string) *FileProvider {
	return &FileProvider{base: base}
}

// Name returns "file".
func (p *FileProvider) Name() string { return "file" }

// Resolve reads the referenced file. Refs escaping the base directory are
// rejected.
func (p *FileProvider) Resolve(_ context.Context, ref string) (string, error) {
	path := ref
	if p.base != "" {
		path = filepath.Join(p.base, ref)
		rel, err := filepath.Rel(p.base, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			return "", fmt.Errorf("credential ref %q escapes base directory", ref)
		}
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path is operator-supplied configuration.
	if err != nil {
		return "", fmt.Errorf("read credential file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Close is a no-op.
func (p *FileProvider) Close() error { return nil }

// StaticProvider resolves references from a fixed in-memory map, useful for
// tests and single-process deployments.
type StaticProvider struct {
	values map[string]string
}

// NewStaticProvider creates a StaticProvider over values.
func NewStaticProvider(values map[string]string) *StaticProvider {
	return &StaticProvider{values: values}
}

// Name returns "static".
func (p *StaticProvider) Name() string { return "static" }

// Resolve looks the ref up in the map.
func (p *StaticProvider) Resolve(_ context.Context, ref string) (string, error) {
	value, ok := p.values[ref]
	if !ok {
		return "", fmt.Errorf("unknown credential ref %q", ref)
	}
	return value, nil
}

// Close is a no-op.
func (p *StaticProvider) Close() error { return nil }
