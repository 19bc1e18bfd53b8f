package binary

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/afero"

	"github.com/aexvir/lspbin/release"
)

// Installer downloads release assets and turns them into runnable installations
// following a [Distribution].
type Installer struct {
	fs     afero.Fs
	client *http.Client
	dist   Distribution
}

type InstallerOption func(i *Installer)

// WithFs sets the filesystem installations are written to; defaults to the os filesystem.
func WithFs(fs afero.Fs) InstallerOption {
	return func(i *Installer) {
		i.fs = fs
	}
}

// WithClient sets the http client used to download assets.
func WithClient(client *http.Client) InstallerOption {
	return func(i *Installer) {
		i.client = client
	}
}

// NewInstaller creates an installer for the distribution.
func NewInstaller(dist Distribution, opts ...InstallerOption) *Installer {
	inst := Installer{
		fs:     afero.NewOsFs(),
		client: &http.Client{Timeout: 10 * time.Minute},
		dist:   dist,
	}

	for _, opt := range opts {
		opt(&inst)
	}

	return &inst
}

// Distribution returns the distribution the installer follows.
func (i *Installer) Distribution() Distribution {
	return i.dist
}

// EntryPath returns the path of the executable inside an install directory.
func (i *Installer) EntryPath(dir string, platform Platform) string {
	return filepath.Join(dir, i.dist.Entry(platform))
}

// Installed returns true if the executable of the install directory exists.
func (i *Installer) Installed(dir string, platform Platform) bool {
	info, err := i.fs.Stat(i.EntryPath(dir, platform))
	return err == nil && info.Mode().IsRegular()
}

// Install downloads the asset into dir, unpacks it and runs the distribution setup.
// If the executable is already present nothing is done, so calling Install repeatedly is safe;
// that's also how a partially extracted directory left by an interrupted run gets repaired.
func (i *Installer) Install(ctx context.Context, asset release.Asset, dir string, platform Platform) error {
	if i.Installed(dir, platform) {
		logdetail(fmt.Sprintf("%s already installed in %s", asset.Name, dir))
		return nil
	}

	logstep(fmt.Sprintf("installing %s", asset.Name))

	if err := i.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: failed to create destination folder %s: %w", ErrFilesystem, dir, err)
	}

	archive := filepath.Join(dir, filepath.Base(asset.Name))
	if err := i.download(ctx, asset.URL, archive); err != nil {
		return err
	}

	if err := extract(i.fs, archive, dir, i.dist.Archive(platform)); err != nil {
		return err
	}

	if err := i.dist.Setup(ctx, i.fs, dir, platform); err != nil {
		return err
	}

	if !i.Installed(dir, platform) {
		return fmt.Errorf("%w: %s missing after installation", ErrExtraction, i.EntryPath(dir, platform))
	}

	return nil
}

// download downloads a file from a URL to a local destination, overwriting any
// leftover from a previous attempt.
func (i *Installer) download(ctx context.Context, url, destination string) (err error) {
	logdetail(fmt.Sprintf("downloading %s to %s", url, destination))

	start := time.Now()
	defer func() {
		elapsed := time.Since(start).Round(time.Millisecond)
		if err != nil {
			color.New(color.FgRed).Fprintf(color.Error, "     ✘ %s\n", elapsed)
			return
		}
		color.New(color.FgGreen).Fprintf(color.Error, "     ✔ %s\n", elapsed)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: invalid download url %s: %w", release.ErrNetwork, url, err)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to download file: %w", release.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: received unexpected response when downloading file: http%d", release.ErrNetwork, resp.StatusCode)
	}

	data, finish := progress(resp.Body, resp.ContentLength)
	defer finish()

	out, err := i.fs.Create(destination)
	if err != nil {
		return fmt.Errorf("%w: failed to create file %s: %w", ErrFilesystem, destination, err)
	}

	if _, err := io.Copy(out, data); err != nil {
		out.Close()
		return fmt.Errorf("%w: failed to copy data to file %s: %w", release.ErrNetwork, destination, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: failed to write file %s: %w", ErrFilesystem, destination, err)
	}

	return nil
}
