package binary

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	files := entries{
		"bin/":          "",
		"bin/server":    "binary",
		"docs/usage.md": "usage",
	}

	tests := map[string]struct {
		kind    ArchiveKind
		payload []byte
	}{
		"tar.gz": {kind: ArchiveTarGz, payload: tarball(t, files)},
		"zip":    {kind: ArchiveZip, payload: zipball(t, files)},
	}

	for name, test := range tests {
		t.Run(name,
			func(t *testing.T) {
				fs := afero.NewMemMapFs()
				require.NoError(t, afero.WriteFile(fs, "/work/archive", test.payload, 0o644))

				require.NoError(t, extract(fs, "/work/archive", "/work/out", test.kind))

				server, err := afero.ReadFile(fs, filepath.Join("/work/out", "bin", "server"))
				require.NoError(t, err)
				assert.Equal(t, "binary", string(server))

				usage, err := afero.ReadFile(fs, filepath.Join("/work/out", "docs", "usage.md"))
				require.NoError(t, err)
				assert.Equal(t, "usage", string(usage))

				exists, _ := afero.Exists(fs, "/work/archive")
				assert.False(t, exists)
			},
		)
	}
}

func TestExtract_RejectsEscapingPaths(t *testing.T) {
	tests := map[string]struct {
		kind    ArchiveKind
		payload []byte
	}{
		"tar.gz": {kind: ArchiveTarGz, payload: tarball(t, entries{"../../etc/passwd": "root"})},
		"zip":    {kind: ArchiveZip, payload: zipball(t, entries{"../outside": "evil"})},
	}

	for name, test := range tests {
		t.Run(name,
			func(t *testing.T) {
				fs := afero.NewMemMapFs()
				require.NoError(t, afero.WriteFile(fs, "/work/archive", test.payload, 0o644))

				err := extract(fs, "/work/archive", "/work/out", test.kind)
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrExtraction)
				assert.Contains(t, err.Error(), "illegal path in archive")
			},
		)
	}
}

// linkedTarball builds a tar.gz from headers in order; regular entries take their
// contents from files.
func linkedTarball(t *testing.T, headers []tar.Header, files entries) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, header := range headers {
		content := files[header.Name]
		header.Size = int64(len(content))
		require.NoError(t, tw.WriteHeader(&header))
		if header.Typeflag == tar.TypeReg {
			_, err := tw.Write([]byte(content))
			require.NoError(t, err)
		}
	}

	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func TestExtract_Links(t *testing.T) {
	payload := linkedTarball(
		t,
		[]tar.Header{
			{Name: "libexec/cspell-lsp-0.1.23", Typeflag: tar.TypeReg, Mode: 0o755},
			{Name: "bin/cspell-lsp", Typeflag: tar.TypeSymlink, Linkname: "../libexec/cspell-lsp-0.1.23"},
			{Name: "cspell-lsp", Typeflag: tar.TypeLink, Linkname: "libexec/cspell-lsp-0.1.23"},
		},
		entries{"libexec/cspell-lsp-0.1.23": "binary"},
	)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/work/archive", payload, 0o644))

	require.NoError(t, extract(fs, "/work/archive", "/work/out", ArchiveTarGz))

	for _, path := range []string{"bin/cspell-lsp", "cspell-lsp"} {
		content, err := afero.ReadFile(fs, filepath.Join("/work/out", filepath.FromSlash(path)))
		require.NoError(t, err, path)
		assert.Equal(t, "binary", string(content), path)

		info, err := fs.Stat(filepath.Join("/work/out", filepath.FromSlash(path)))
		require.NoError(t, err)
		assert.Equal(t, 0o755, int(info.Mode().Perm()), path)
	}
}

func TestExtract_RejectsEscapingLinks(t *testing.T) {
	tests := map[string]tar.Header{
		"relative symlink": {Name: "cspell-lsp", Typeflag: tar.TypeSymlink, Linkname: "../../etc/passwd"},
		"absolute symlink": {Name: "cspell-lsp", Typeflag: tar.TypeSymlink, Linkname: "/etc/passwd"},
		"hardlink":         {Name: "cspell-lsp", Typeflag: tar.TypeLink, Linkname: "../../etc/passwd"},
	}

	for name, header := range tests {
		t.Run(name,
			func(t *testing.T) {
				fs := afero.NewMemMapFs()
				require.NoError(t, afero.WriteFile(fs, "/etc/passwd", []byte("root"), 0o644))
				require.NoError(t, afero.WriteFile(fs, "/work/archive", linkedTarball(t, []tar.Header{header}, nil), 0o644))

				err := extract(fs, "/work/archive", "/work/out", ArchiveTarGz)
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrExtraction)
				assert.Contains(t, err.Error(), "illegal")

				exists, _ := afero.Exists(fs, "/work/out/cspell-lsp")
				assert.False(t, exists)
			},
		)
	}
}

func TestExtract_DanglingLink(t *testing.T) {
	payload := linkedTarball(
		t,
		[]tar.Header{{Name: "cspell-lsp", Typeflag: tar.TypeSymlink, Linkname: "missing/cspell-lsp"}},
		nil,
	)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/work/archive", payload, 0o644))

	err := extract(fs, "/work/archive", "/work/out", ArchiveTarGz)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtraction)
	assert.Contains(t, err.Error(), "missing/cspell-lsp")
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/work/archive", []byte("data"), 0o644))

	err := extract(fs, "/work/archive", "/work/out", ArchiveKind("rar"))
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestWithin(t *testing.T) {
	target, err := within("/work/out", "nested/file")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/work/out", "nested", "file"), target)

	_, err = within("/work/out", "../sibling")
	assert.Error(t, err)

	_, err = within("/work/out", "nested/../../sibling")
	assert.Error(t, err)
}
