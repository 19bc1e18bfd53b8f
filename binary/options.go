package binary

import "maps"

type distconf struct {
	assetformat string
	dirformat   string
	ostokens    map[OS]string
	archtokens  map[Arch]string

	entry    string
	root     string
	launcher string
	runtime  string
	flag     string
	deps     DependencyInstaller
}

type Option func(c *distconf)

// WithAssetFormat overrides the template used to compute the expected release asset name.
// See [Template] for the available fields.
func WithAssetFormat(format string) Option {
	return func(c *distconf) {
		c.assetformat = format
	}
}

// WithDirectoryFormat overrides the template naming the install directory of a version.
func WithDirectoryFormat(format string) Option {
	return func(c *distconf) {
		c.dirformat = format
	}
}

// WithOSTokens allows remapping the operating system token used in asset names.
// This is useful for example when a project publishes `binname-macos` archives
// instead of using the `apple-darwin` target triple; for that case pass
// {OSMac: "macos"}. Unmapped values keep their default token.
func WithOSTokens(mapping map[OS]string) Option {
	return func(c *distconf) {
		maps.Copy(c.ostokens, mapping)
	}
}

// WithArchTokens allows remapping the architecture token used in asset names.
// e.g. {ArchAarch64: "arm64"} for projects naming their archives after go's GOARCH.
func WithArchTokens(mapping map[Arch]string) Option {
	return func(c *distconf) {
		maps.Copy(c.archtokens, mapping)
	}
}

// WithEntry sets the path of the entry point inside the extracted release.
// For native archives it's the executable, e.g. "bin/{{.Binary}}{{.Exe}}".
// For script packages it's the script the runtime executes, relative to the package root.
func WithEntry(path string) Option {
	return func(c *distconf) {
		c.entry = path
	}
}

// WithPackageRoot sets the directory, inside the extracted package, that holds the
// package manifest; dependencies are installed and the launcher is written there.
func WithPackageRoot(dir string) Option {
	return func(c *distconf) {
		c.root = dir
	}
}

// WithLauncher sets the name of the launcher script synthesized for script packages.
func WithLauncher(name string) Option {
	return func(c *distconf) {
		c.launcher = name
	}
}

// WithRuntime sets the program the launcher uses to run the package entry point.
func WithRuntime(program string) Option {
	return func(c *distconf) {
		c.runtime = program
	}
}

// WithProtocolFlag sets the flag the launcher always passes to the entry point.
func WithProtocolFlag(flag string) Option {
	return func(c *distconf) {
		c.flag = flag
	}
}

// WithDependencyInstaller sets the step run inside the package root after extraction.
// Pass nil to skip dependency installation.
func WithDependencyInstaller(deps DependencyInstaller) Option {
	return func(c *distconf) {
		c.deps = deps
	}
}
