package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aexvir/lspbin"
	"github.com/aexvir/lspbin/binary"
)

// Kind selects how a server is distributed upstream.
type Kind string

const (
	// KindNative servers publish one prebuilt archive per platform.
	KindNative Kind = "native"
	// KindPackage servers publish a single package run through a local runtime.
	KindPackage Kind = "package"
)

// Server is the definition of a language server.
type Server struct {
	// Repository is the "owner/name" of the repository publishing releases.
	Repository string `toml:"repository" yaml:"repository"`
	// Binary is the executable name searched on path; defaults to the repository name.
	Binary string `toml:"binary" yaml:"binary"`
	Kind   Kind   `toml:"kind" yaml:"kind"`

	// Project prefixes native archive names.
	Project string `toml:"project" yaml:"project"`
	// Package names the package of script hosted servers.
	Package string `toml:"package" yaml:"package"`

	AssetFormat     string            `toml:"asset_format" yaml:"asset_format"`
	DirectoryFormat string            `toml:"directory_format" yaml:"directory_format"`
	Entry           string            `toml:"entry" yaml:"entry"`
	OSTokens        map[string]string `toml:"os_tokens" yaml:"os_tokens"`
	ArchTokens      map[string]string `toml:"arch_tokens" yaml:"arch_tokens"`

	Root         string   `toml:"root" yaml:"root"`
	Launcher     string   `toml:"launcher" yaml:"launcher"`
	Runtime      string   `toml:"runtime" yaml:"runtime"`
	Flag         string   `toml:"flag" yaml:"flag"`
	Dependencies []string `toml:"dependencies" yaml:"dependencies"`
	// NoDependencies skips installing package dependencies, for self contained packages.
	NoDependencies bool `toml:"no_dependencies" yaml:"no_dependencies"`

	Arguments []string          `toml:"arguments" yaml:"arguments"`
	Env       map[string]string `toml:"env" yaml:"env"`
	WorkDir   string            `toml:"workdir" yaml:"workdir"`

	InitializationOptions map[string]any `toml:"initialization_options" yaml:"initialization_options"`
	Workspace             map[string]any `toml:"workspace" yaml:"workspace"`
}

// Validate checks the definition is complete and its templates resolve.
func (s Server) Validate() error {
	var errs []error

	if owner, name, ok := strings.Cut(s.Repository, "/"); !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		errs = append(errs, fmt.Errorf("repository %q is not owner/name", s.Repository))
	}

	switch s.Kind {
	case KindNative, "":
		if s.Project == "" {
			errs = append(errs, errors.New("native servers need a project"))
		}
	case KindPackage:
		if s.Package == "" {
			errs = append(errs, errors.New("package servers need a package"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown kind %q", s.Kind))
	}

	for field, format := range map[string]string{
		"asset_format":     s.AssetFormat,
		"directory_format": s.DirectoryFormat,
		"entry":            s.Entry,
	} {
		if format == "" {
			continue
		}
		if err := binary.Validate(format); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
		}
	}

	for token := range s.OSTokens {
		if _, err := binary.ParsePlatform(token, "x86_64"); err != nil {
			errs = append(errs, fmt.Errorf("os_tokens: %w", err))
		}
	}
	for token := range s.ArchTokens {
		if _, err := binary.ParsePlatform("linux", token); err != nil {
			errs = append(errs, fmt.Errorf("arch_tokens: %w", err))
		}
	}

	for name := range s.Env {
		if name == "" || strings.Contains(name, "=") {
			errs = append(errs, fmt.Errorf("invalid env name %q", name))
		}
	}

	return errors.Join(errs...)
}

// BinaryName returns the executable name searched on path.
func (s Server) BinaryName() string {
	if s.Binary != "" {
		return s.Binary
	}
	_, name, _ := strings.Cut(s.Repository, "/")
	return name
}

// Distribution builds the distribution described by the definition.
func (s Server) Distribution() (binary.Distribution, error) {
	var opts []binary.Option

	if s.AssetFormat != "" {
		opts = append(opts, binary.WithAssetFormat(s.AssetFormat))
	}
	if s.DirectoryFormat != "" {
		opts = append(opts, binary.WithDirectoryFormat(s.DirectoryFormat))
	}
	if s.Entry != "" {
		opts = append(opts, binary.WithEntry(s.Entry))
	}

	if len(s.OSTokens) > 0 {
		mapping := make(map[binary.OS]string, len(s.OSTokens))
		for token, value := range s.OSTokens {
			platform, err := binary.ParsePlatform(token, "x86_64")
			if err != nil {
				return nil, err
			}
			mapping[platform.OS] = value
		}
		opts = append(opts, binary.WithOSTokens(mapping))
	}

	if len(s.ArchTokens) > 0 {
		mapping := make(map[binary.Arch]string, len(s.ArchTokens))
		for token, value := range s.ArchTokens {
			platform, err := binary.ParsePlatform("linux", token)
			if err != nil {
				return nil, err
			}
			mapping[platform.Arch] = value
		}
		opts = append(opts, binary.WithArchTokens(mapping))
	}

	switch s.Kind {
	case KindNative, "":
		return binary.NativeArchive(s.Project, s.BinaryName(), opts...), nil

	case KindPackage:
		if s.Root != "" {
			opts = append(opts, binary.WithPackageRoot(s.Root))
		}
		if s.Launcher != "" {
			opts = append(opts, binary.WithLauncher(s.Launcher))
		}
		if s.Runtime != "" {
			opts = append(opts, binary.WithRuntime(s.Runtime))
		}
		if s.Flag != "" {
			opts = append(opts, binary.WithProtocolFlag(s.Flag))
		}
		switch {
		case s.NoDependencies:
			opts = append(opts, binary.WithDependencyInstaller(nil))
		case len(s.Dependencies) > 0:
			opts = append(opts, binary.WithDependencyInstaller(binary.NPM(s.Dependencies...)))
		}
		return binary.ScriptPackage(s.Package, opts...), nil

	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalid, s.Kind)
	}
}

// Manager builds the manager resolving the server; opts are applied after the ones
// derived from the definition.
func (s Server) Manager(id string, opts ...lspbin.Option) (*lspbin.Manager, error) {
	dist, err := s.Distribution()
	if err != nil {
		return nil, err
	}

	base := []lspbin.Option{
		lspbin.WithServerID(id),
		lspbin.WithBinaryName(s.BinaryName()),
	}
	if len(s.Arguments) > 0 {
		base = append(base, lspbin.WithProtocolArgs(s.Arguments...))
	}
	if len(s.Env) > 0 {
		base = append(base, lspbin.WithEnv(s.Env))
	}
	if s.WorkDir != "" {
		base = append(base, lspbin.WithWorkDir(s.WorkDir))
	}

	return lspbin.New(s.Repository, dist, append(base, opts...)...), nil
}

// Settings encodes the lsp settings of the server as json.
func (s Server) Settings() (lspbin.Settings, error) {
	var settings lspbin.Settings

	if s.InitializationOptions != nil {
		blob, err := json.Marshal(s.InitializationOptions)
		if err != nil {
			return settings, fmt.Errorf("encoding initialization options: %w", err)
		}
		settings.InitializationOptions = blob
	}

	if s.Workspace != nil {
		blob, err := json.Marshal(s.Workspace)
		if err != nil {
			return settings, fmt.Errorf("encoding workspace configuration: %w", err)
		}
		settings.Workspace = blob
	}

	return settings, nil
}
