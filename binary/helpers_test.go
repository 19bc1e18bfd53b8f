package binary

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// archive entries; names ending with "/" are directories.
type entries map[string]string

func tarball(t *testing.T, files entries) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, name := range sortedNames(files) {
		content := files[name]
		if name[len(name)-1] == '/' {
			require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Typeflag: tar.TypeDir, Mode: 0o755}))
			continue
		}
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Typeflag: tar.TypeReg, Mode: 0o755, Size: int64(len(content))}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func zipball(t *testing.T, files entries) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, name := range sortedNames(files) {
		w, err := zw.Create(name)
		require.NoError(t, err)
		if name[len(name)-1] == '/' {
			continue
		}
		_, err = w.Write([]byte(files[name]))
		require.NoError(t, err)
	}

	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func sortedNames(files entries) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// assetServer serves payload on every path and counts the requests it receives.
func assetServer(t *testing.T, payload []byte) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	server := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.Write(payload)
			},
		),
	)
	t.Cleanup(server.Close)

	return server, &hits
}

// MockDeps is a testify mock implementation of DependencyInstaller
type MockDeps struct {
	mock.Mock
}

func (m *MockDeps) Install(ctx context.Context, dir string) error {
	args := m.Called(ctx, dir)
	return args.Error(0)
}

// nochmodfs behaves like environments that don't allow changing permissions.
type nochmodfs struct {
	afero.Fs
}

func (nochmodfs) Chmod(string, os.FileMode) error {
	return errors.New("operation not supported on this platform")
}

// stickyfs refuses to remove the entry named sticky.
type stickyfs struct {
	afero.Fs
	sticky string
}

func (s stickyfs) RemoveAll(path string) error {
	if filepath.Base(path) == s.sticky {
		return errors.New("permission denied")
	}
	return s.Fs.RemoveAll(path)
}

// unflushedfs creates files that fail when closed, like a full disk.
type unflushedfs struct {
	afero.Fs
}

func (u unflushedfs) Create(name string) (afero.File, error) {
	file, err := u.Fs.Create(name)
	if err != nil {
		return nil, err
	}
	return unflushedfile{file}, nil
}

type unflushedfile struct {
	afero.File
}

func (f unflushedfile) Close() error {
	f.File.Close()
	return errors.New("no space left on device")
}
