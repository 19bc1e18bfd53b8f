// Package config loads language server definitions from toml or yaml files.
package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/aexvir/lspbin"
)

// ErrInvalid is returned when a configuration file doesn't pass validation.
var ErrInvalid = errors.New("invalid configuration")

// File is the content of a configuration file; servers are keyed by server id.
type File struct {
	Servers map[string]Server `toml:"servers" yaml:"servers"`
}

// Default returns the configuration used when no file is found: the cspell
// language server, installed from its native release archives.
func Default() *File {
	return &File{
		Servers: map[string]Server{
			"cspell": {
				Repository: "vlabo/cspell-lsp",
				Binary:     "cspell-lsp",
				Kind:       KindNative,
				Project:    "CSpell-lsp",
			},
		},
	}
}

// Load reads the configuration file at path, picking the format from its extension.
// When the file doesn't exist the default configuration is returned.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	return Parse(filepath.Ext(path), data)
}

// Parse decodes and validates configuration data; format is a file extension.
func Parse(format string, data []byte) (*File, error) {
	var cfg File

	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing toml config: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing yaml config: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalid, format)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks every server definition.
func (f *File) Validate() error {
	if len(f.Servers) == 0 {
		return fmt.Errorf("%w: no servers defined", ErrInvalid)
	}

	var errs []error
	for _, id := range f.IDs() {
		if err := f.Servers[id].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("server %s: %w", id, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// IDs returns the sorted ids of the configured servers.
func (f *File) IDs() []string {
	return slices.Sorted(maps.Keys(f.Servers))
}

// Server returns the definition of a server.
func (f *File) Server(id string) (Server, error) {
	server, ok := f.Servers[id]
	if !ok {
		return Server{}, fmt.Errorf("unknown server %q; configured: %s", id, strings.Join(f.IDs(), ", "))
	}
	return server, nil
}

// Settings returns the lsp settings of every server, as handed to a host.
func (f *File) Settings() (map[string]lspbin.Settings, error) {
	settings := make(map[string]lspbin.Settings, len(f.Servers))
	for _, id := range f.IDs() {
		s, err := f.Servers[id].Settings()
		if err != nil {
			return nil, fmt.Errorf("server %s: %w", id, err)
		}
		settings[id] = s
	}
	return settings, nil
}
