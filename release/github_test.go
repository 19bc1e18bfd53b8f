package release

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const releasesPayload = `[
	{"tag_name": "v0.2.0", "draft": true, "prerelease": false, "assets": [{"name": "draft.tar.gz", "browser_download_url": "https://example.com/draft"}]},
	{"tag_name": "v0.2.0-rc.1", "draft": false, "prerelease": true, "assets": [{"name": "rc.tar.gz", "browser_download_url": "https://example.com/rc"}]},
	{"tag_name": "v0.1.24", "draft": false, "prerelease": false, "assets": []},
	{"tag_name": "v0.1.23", "draft": false, "prerelease": false, "assets": [
		{"name": "CSpell-lsp-v0.1.23-aarch64-apple-darwin.tar.gz", "browser_download_url": "https://example.com/mac"},
		{"name": "CSpell-lsp-v0.1.23-x86_64-pc-windows-msvc.zip", "browser_download_url": "https://example.com/windows"}
	]}
]`

func releaseServer(t *testing.T, status int, payload string) (*httptest.Server, *http.Request) {
	t.Helper()

	var received http.Request
	server := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				received = *r
				w.WriteHeader(status)
				w.Write([]byte(payload))
			},
		),
	)
	t.Cleanup(server.Close)

	return server, &received
}

func TestGitHub_Latest(t *testing.T) {
	t.Run("skips drafts prereleases and assetless releases",
		func(t *testing.T) {
			server, req := releaseServer(t, http.StatusOK, releasesPayload)
			feed := NewGitHub(WithBaseURL(server.URL), WithToken("secret"))

			info, err := feed.Latest(context.Background(), "vlabo/cspell-lsp", Options{RequireAssets: true})
			require.NoError(t, err)

			assert.Equal(t, Version{Tag: "v0.1.23", Number: "0.1.23"}, info.Version)
			require.Len(t, info.Assets, 2)
			assert.Equal(t, "CSpell-lsp-v0.1.23-aarch64-apple-darwin.tar.gz", info.Assets[0].Name)
			assert.Equal(t, "https://example.com/mac", info.Assets[0].URL)

			assert.Equal(t, "/repos/vlabo/cspell-lsp/releases", req.URL.Path)
			assert.Equal(t, "application/vnd.github+json", req.Header.Get("Accept"))
			assert.Equal(t, "Bearer secret", req.Header.Get("Authorization"))
		},
	)

	t.Run("assetless release accepted when assets aren't required",
		func(t *testing.T) {
			server, _ := releaseServer(t, http.StatusOK, releasesPayload)
			feed := NewGitHub(WithBaseURL(server.URL))

			info, err := feed.Latest(context.Background(), "vlabo/cspell-lsp", Options{})
			require.NoError(t, err)
			assert.Equal(t, "v0.1.24", info.Version.Tag)
			assert.Empty(t, info.Assets)
		},
	)

	t.Run("prereleases when requested",
		func(t *testing.T) {
			server, _ := releaseServer(t, http.StatusOK, releasesPayload)
			feed := NewGitHub(WithBaseURL(server.URL))

			info, err := feed.Latest(context.Background(), "vlabo/cspell-lsp", Options{RequireAssets: true, PreRelease: true})
			require.NoError(t, err)
			assert.Equal(t, "v0.2.0-rc.1", info.Version.Tag)
		},
	)

	t.Run("http error is a network error",
		func(t *testing.T) {
			server, _ := releaseServer(t, http.StatusInternalServerError, "boom")
			feed := NewGitHub(WithBaseURL(server.URL))

			_, err := feed.Latest(context.Background(), "vlabo/cspell-lsp", Options{RequireAssets: true})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNetwork)
			assert.Contains(t, err.Error(), "http500")
		},
	)

	t.Run("malformed payload is a network error",
		func(t *testing.T) {
			server, _ := releaseServer(t, http.StatusOK, "{not json")
			feed := NewGitHub(WithBaseURL(server.URL))

			_, err := feed.Latest(context.Background(), "vlabo/cspell-lsp", Options{})
			assert.ErrorIs(t, err, ErrNetwork)
		},
	)

	t.Run("unparsable tag is a version error",
		func(t *testing.T) {
			server, _ := releaseServer(t, http.StatusOK, `[{"tag_name": "nightly", "assets": [{"name": "a", "browser_download_url": "b"}]}]`)
			feed := NewGitHub(WithBaseURL(server.URL))

			_, err := feed.Latest(context.Background(), "vlabo/cspell-lsp", Options{RequireAssets: true})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrVersionParse)
			assert.NotErrorIs(t, err, ErrNetwork)
		},
	)

	t.Run("no qualifying release",
		func(t *testing.T) {
			server, _ := releaseServer(t, http.StatusOK, `[]`)
			feed := NewGitHub(WithBaseURL(server.URL))

			_, err := feed.Latest(context.Background(), "vlabo/cspell-lsp", Options{RequireAssets: true})
			assert.ErrorIs(t, err, ErrNoRelease)
		},
	)

	t.Run("invalid repository",
		func(t *testing.T) {
			feed := NewGitHub()

			_, err := feed.Latest(context.Background(), "cspell-lsp", Options{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "expected owner/name")
		},
	)
}
