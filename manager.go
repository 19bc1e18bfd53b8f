package lspbin

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/afero"

	"github.com/aexvir/lspbin/binary"
	"github.com/aexvir/lspbin/release"
)

// Manager resolves the command line of a language server released on a repository,
// installing it into its working directory when it's not available on the host.
//
// A manager owns the last resolved path for its whole lifetime; installed versions
// live on the filesystem and are shared across managers and process restarts.
// Resolve is not meant to be called concurrently on the same manager.
type Manager struct {
	repository string
	serverid   string
	binaryname string
	protocol   []string
	env        map[string]string
	workdir    string

	fs        afero.Fs
	client    *http.Client
	feed      release.Feed
	installer *binary.Installer

	cached string
}

type Option func(m *Manager)

// WithWorkDir sets the directory versions are installed into.
// Everything inside it that isn't the resolved version is removed after a resolution,
// so it must be dedicated to a single language server.
func WithWorkDir(dir string) Option {
	return func(m *Manager) {
		m.workdir = dir
	}
}

// WithFs sets the filesystem used for installations; defaults to the os filesystem.
func WithFs(fs afero.Fs) Option {
	return func(m *Manager) {
		m.fs = fs
	}
}

// WithFeed sets the release feed; defaults to GitHub releases.
func WithFeed(feed release.Feed) Option {
	return func(m *Manager) {
		m.feed = feed
	}
}

// WithHTTPClient sets the http client used to download release assets.
func WithHTTPClient(client *http.Client) Option {
	return func(m *Manager) {
		m.client = client
	}
}

// WithBinaryName sets the name the executable is searched for on the host path.
func WithBinaryName(name string) Option {
	return func(m *Manager) {
		m.binaryname = name
	}
}

// WithProtocolArgs sets the arguments the server needs to speak the protocol;
// defaults to "--stdio".
func WithProtocolArgs(args ...string) Option {
	return func(m *Manager) {
		m.protocol = args
	}
}

// WithEnv sets environment variables for the resolved command.
func WithEnv(env map[string]string) Option {
	return func(m *Manager) {
		m.env = maps.Clone(env)
	}
}

// WithServerID sets the identifier settings are looked up with; defaults to the binary name.
func WithServerID(id string) Option {
	return func(m *Manager) {
		m.serverid = id
	}
}

// New creates a manager for the language server released on repository, an
// "owner/name" identifier, following the distribution to install it.
func New(repository string, dist binary.Distribution, opts ...Option) *Manager {
	m := Manager{
		repository: repository,
		binaryname: filepath.Base(repository),
		protocol:   []string{"--stdio"},
		fs:         afero.NewOsFs(),
		client:     &http.Client{Timeout: 10 * time.Minute},
	}

	for _, opt := range opts {
		opt(&m)
	}

	if m.serverid == "" {
		m.serverid = m.binaryname
	}

	if m.workdir == "" {
		m.workdir = DefaultWorkDir(m.serverid)
	}

	if m.feed == nil {
		m.feed = release.NewGitHub()
	}

	m.installer = binary.NewInstaller(
		dist,
		binary.WithFs(m.fs),
		binary.WithClient(m.client),
	)

	return &m
}

// DefaultWorkDir returns the directory a server is installed into by default, inside
// the user cache directory.
func DefaultWorkDir(serverID string) string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "lspbin", serverID)
}

// Repository returns the repository the server is released on.
func (m *Manager) Repository() string {
	return m.repository
}

// ServerID returns the identifier of the server.
func (m *Manager) ServerID() string {
	return m.serverid
}

// Fs returns the filesystem installations are written to.
func (m *Manager) Fs() afero.Fs {
	return m.fs
}

// WorkDir returns the directory versions are installed into.
func (m *Manager) WorkDir() string {
	return m.workdir
}

// Resolve returns the command to start the language server.
//
// Sources are tried in order: an executable on the host path, the path resolved
// previously by this manager if it still exists, and finally the latest release,
// which is installed unless already present on disk. Stale versions are removed
// after a release is resolved.
// Failures are returned as [*ResolutionError]; nothing is retried and a previous
// version is never used as fallback.
func (m *Manager) Resolve(ctx context.Context, host Host) (Command, error) {
	if path, ok := host.Which(m.binaryname); ok {
		logdetail(fmt.Sprintf("using %s from path", path))
		return m.command(path, m.protocol), nil
	}

	if m.cached != "" {
		if info, err := m.fs.Stat(m.cached); err == nil && info.Mode().IsRegular() {
			return m.command(m.cached, m.installer.Distribution().Arguments(m.protocol)), nil
		}
		logdetail(fmt.Sprintf("%s is gone, resolving again", m.cached))
	}

	path, err := m.resolve(ctx, host)
	if err != nil {
		host.SetStatus(StatusFailed)
		return Command{}, &ResolutionError{Repository: m.repository, Err: err}
	}

	m.cached = path
	host.SetStatus(StatusNone)

	return m.command(path, m.installer.Distribution().Arguments(m.protocol)), nil
}

// resolve finds the latest release, installs it when needed and prunes any other
// version, returning the path of the executable.
func (m *Manager) resolve(ctx context.Context, host Host) (string, error) {
	host.SetStatus(StatusCheckingForUpdate)

	platform, err := binary.ParsePlatform(host.Platform())
	if err != nil {
		return "", err
	}

	info, err := m.feed.Latest(ctx, m.repository, release.Options{RequireAssets: true, PreRelease: false})
	if err != nil {
		return "", err
	}

	if semantic := info.Version.Semantic(); semantic != "" {
		logdetail(fmt.Sprintf("latest release of %s is %s (%s)", m.repository, info.Version, semantic))
	} else {
		logdetail(fmt.Sprintf("latest release of %s is %s", m.repository, info.Version))
	}

	dist := m.installer.Distribution()
	asset, err := release.FindAsset(info.Assets, dist.AssetName(info.Version, platform))
	if err != nil {
		return "", fmt.Errorf("%w for %s on %s", err, info.Version, platform)
	}

	dir := filepath.Join(m.workdir, dist.Directory(info.Version))
	if !m.installer.Installed(dir, platform) {
		host.SetStatus(StatusDownloading)
		if err := m.installer.Install(ctx, asset, dir, platform); err != nil {
			return "", err
		}
	}

	binary.Prune(m.fs, m.workdir, filepath.Base(dir))

	return m.installer.EntryPath(dir, platform), nil
}

func (m *Manager) command(path string, args []string) Command {
	return Command{
		Executable:  path,
		Arguments:   slices.Clone(args),
		Environment: maps.Clone(m.env),
	}
}

// InitializationOptions returns the initialization options the host keeps for the
// server, verbatim; null when there are none.
func (m *Manager) InitializationOptions(host Host) json.RawMessage {
	settings, err := host.Settings(m.serverid)
	if err != nil {
		return null()
	}
	return orNull(settings.InitializationOptions)
}

// WorkspaceConfiguration returns the workspace configuration the host keeps for the
// server, verbatim; null when there is none.
func (m *Manager) WorkspaceConfiguration(host Host) json.RawMessage {
	settings, err := host.Settings(m.serverid)
	if err != nil {
		return null()
	}
	return orNull(settings.Workspace)
}

func null() json.RawMessage {
	return json.RawMessage("null")
}

func orNull(blob json.RawMessage) json.RawMessage {
	if len(blob) == 0 {
		return null()
	}
	return blob
}
