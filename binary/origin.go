package binary

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/aexvir/lspbin/release"
)

var (
	// ErrExtraction is returned when a downloaded archive can't be unpacked or
	// doesn't contain the expected files.
	ErrExtraction = errors.New("extraction failed")
	// ErrDependencyInstall is returned when the post-extraction dependency step fails.
	ErrDependencyInstall = errors.New("dependency installation failed")
	// ErrFilesystem is returned when files or directories can't be written or removed.
	ErrFilesystem = errors.New("filesystem error")
	// ErrPermissionSetup is reported, as a warning only, when an entry point
	// can't be made executable.
	ErrPermissionSetup = errors.New("unable to set up permissions")
)

// ArchiveKind is the format a release asset is packed with.
type ArchiveKind string

const (
	ArchiveZip   ArchiveKind = "zip"
	ArchiveTarGz ArchiveKind = "tar.gz"
)

// Distribution describes how a language server is published upstream and how an
// extracted release is turned into something runnable.
type Distribution interface {
	// AssetName computes the name of the release asset for the version and platform.
	AssetName(version release.Version, platform Platform) string
	// Archive returns the format the release asset is packed with.
	Archive(platform Platform) ArchiveKind
	// Directory returns the name of the directory a version is installed into.
	Directory(version release.Version) string
	// Entry returns the path, relative to the install directory, of the executable.
	// Its presence marks a complete installation.
	Entry(platform Platform) string
	// Arguments returns the arguments the entry has to be launched with, given the
	// arguments required by the protocol.
	Arguments(protocol []string) []string
	// Setup runs the post-extraction steps needed to make the entry runnable.
	Setup(ctx context.Context, fs afero.Fs, dir string, platform Platform) error
}

func defaultconf() distconf {
	return distconf{
		ostokens: map[OS]string{
			OSMac:     "apple-darwin",
			OSLinux:   "unknown-linux-gnu",
			OSWindows: "pc-windows-msvc",
		},
		archtokens: map[Arch]string{
			ArchX86:     "x86_64",
			ArchX8664:   "x86_64",
			ArchAarch64: "aarch64",
		},
	}
}

// nativearchive implements [Distribution] for projects publishing a prebuilt
// executable per platform, packed as zip on windows and as tar.gz elsewhere.
type nativearchive struct {
	conf    distconf
	project string
	binary  string
}

// NativeArchive creates a Distribution for per-platform archives named
// `<project>-<tag>-<arch>-<os>.<ext>`, e.g. "CSpell-lsp-v0.1.23-aarch64-apple-darwin.tar.gz".
// The binary is expected at the root of the archive unless [WithEntry] says otherwise.
func NativeArchive(project, binary string, opts ...Option) Distribution {
	conf := defaultconf()
	conf.assetformat = "{{.Project}}-{{.Tag}}-{{.Arch}}-{{.OS}}.{{.Extension}}"
	conf.dirformat = "{{.Binary}}-{{.Tag}}"
	conf.entry = "{{.Binary}}{{.Exe}}"

	for _, opt := range opts {
		opt(&conf)
	}

	return &nativearchive{
		conf:    conf,
		project: project,
		binary:  binary,
	}
}

func (n *nativearchive) template(version release.Version, platform Platform) Template {
	return Template{
		OS:        n.conf.ostokens[platform.OS],
		Arch:      n.conf.archtokens[platform.Arch],
		Project:   n.project,
		Binary:    n.binary,
		Tag:       version.Tag,
		Version:   version.Number,
		Extension: string(n.Archive(platform)),
		Exe:       platform.Executable(),
	}
}

func (n *nativearchive) AssetName(version release.Version, platform Platform) string {
	return n.template(version, platform).MustResolve(n.conf.assetformat)
}

func (n *nativearchive) Archive(platform Platform) ArchiveKind {
	if platform.OS == OSWindows {
		return ArchiveZip
	}
	return ArchiveTarGz
}

func (n *nativearchive) Directory(version release.Version) string {
	return Template{Project: n.project, Binary: n.binary, Tag: version.Tag, Version: version.Number}.
		MustResolve(n.conf.dirformat)
}

func (n *nativearchive) Entry(platform Platform) string {
	return filepath.FromSlash(n.template(release.Version{}, platform).MustResolve(n.conf.entry))
}

func (n *nativearchive) Arguments(protocol []string) []string {
	return protocol
}

func (n *nativearchive) Setup(_ context.Context, fs afero.Fs, dir string, platform Platform) error {
	entry := filepath.Join(dir, n.Entry(platform))
	if ok, _ := afero.Exists(fs, entry); !ok {
		return fmt.Errorf("%w: archive doesn't contain %s", ErrExtraction, n.Entry(platform))
	}

	makeExecutable(fs, entry)
	return nil
}

// scriptpackage implements [Distribution] for servers shipped as a single
// platform independent package that needs a local runtime to execute.
type scriptpackage struct {
	conf distconf
	pkg  string
}

// ScriptPackage creates a Distribution for a `<package>-<version>.vsix` archive.
// After extraction the package dependencies are installed and a launcher script is
// written next to the package manifest; the launcher is what gets executed.
//
// Defaults match the vscode spell checker layout: package root "extension", entry
// "packages/_server/dist/main.cjs", launcher "cspell-lsp", runtime "node",
// protocol flag "--stdio" and npm for dependencies.
func ScriptPackage(pkg string, opts ...Option) Distribution {
	conf := defaultconf()
	conf.assetformat = "{{.Package}}-{{.Version}}.vsix"
	conf.dirformat = "{{.Package}}-{{.Version}}"
	conf.entry = "packages/_server/dist/main.cjs"
	conf.root = "extension"
	conf.launcher = "cspell-lsp"
	conf.runtime = "node"
	conf.flag = "--stdio"
	conf.deps = NPM()

	for _, opt := range opts {
		opt(&conf)
	}

	return &scriptpackage{
		conf: conf,
		pkg:  pkg,
	}
}

func (s *scriptpackage) template(version release.Version) Template {
	return Template{
		Package:   s.pkg,
		Tag:       version.Tag,
		Version:   version.Number,
		Extension: string(ArchiveZip),
	}
}

func (s *scriptpackage) AssetName(version release.Version, _ Platform) string {
	return s.template(version).MustResolve(s.conf.assetformat)
}

func (s *scriptpackage) Archive(_ Platform) ArchiveKind {
	return ArchiveZip
}

func (s *scriptpackage) Directory(version release.Version) string {
	return s.template(version).MustResolve(s.conf.dirformat)
}

func (s *scriptpackage) Entry(platform Platform) string {
	name := s.conf.launcher
	if platform.OS == OSWindows {
		name += ".cmd"
	}
	return filepath.Join(filepath.FromSlash(s.conf.root), name)
}

// Arguments returns no protocol arguments as the launcher already passes the protocol flag.
func (s *scriptpackage) Arguments(_ []string) []string {
	return nil
}

func (s *scriptpackage) Setup(ctx context.Context, fs afero.Fs, dir string, platform Platform) error {
	root := filepath.Join(dir, filepath.FromSlash(s.conf.root))
	hosted := filepath.Join(root, filepath.FromSlash(s.conf.entry))

	if ok, _ := afero.Exists(fs, hosted); !ok {
		return fmt.Errorf("%w: package doesn't contain %s", ErrExtraction, s.conf.entry)
	}

	if s.conf.deps != nil {
		if err := s.conf.deps.Install(ctx, root); err != nil {
			return fmt.Errorf("%w: %w", ErrDependencyInstall, err)
		}
	}

	launcher := filepath.Join(dir, s.Entry(platform))
	logdetail(fmt.Sprintf("writing launcher %s", launcher))
	if err := afero.WriteFile(fs, launcher, []byte(s.script(platform)), 0o644); err != nil {
		return fmt.Errorf("%w: failed to write launcher %s: %w", ErrFilesystem, launcher, err)
	}

	makeExecutable(fs, launcher)
	return nil
}

// script renders a launcher that locates its own directory and runs the hosted entry
// point with the protocol flag, forwarding any other argument.
func (s *scriptpackage) script(platform Platform) string {
	if platform.OS == OSWindows {
		return fmt.Sprintf(
			"@echo off\r\n%s \"%%~dp0%s\" %s %%*\r\n",
			s.conf.runtime, strings.ReplaceAll(s.conf.entry, "/", `\`), s.conf.flag,
		)
	}

	return fmt.Sprintf(
		"#!/usr/bin/env sh\nSCRIPT_DIR=$(cd -- \"$(dirname -- \"$0\")\" >/dev/null 2>&1 && pwd)\nexec %s \"$SCRIPT_DIR/%s\" %s \"$@\"\n",
		s.conf.runtime, s.conf.entry, s.conf.flag,
	)
}

// makeExecutable tries to mark a file as executable.
// Some environments don't allow changing permissions; that's reported as a warning
// and never fails the installation.
func makeExecutable(fs afero.Fs, path string) {
	if err := fs.Chmod(path, 0o755); err != nil {
		logwarn(fmt.Errorf("%w for %s: %w", ErrPermissionSetup, path, err).Error())
	}
}
