package release

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name     string
		tag      string
		expected Version
		wantErr  bool
	}{
		{
			name:     "v prefix",
			tag:      "v4.0.13",
			expected: Version{Tag: "v4.0.13", Number: "4.0.13"},
		},
		{
			name:     "bare version",
			tag:      "0.1.23",
			expected: Version{Tag: "0.1.23", Number: "0.1.23"},
		},
		{
			name:     "named prefix",
			tag:      "cspell-v8.1.0",
			expected: Version{Tag: "cspell-v8.1.0", Number: "8.1.0"},
		},
		{
			name:     "prerelease suffix",
			tag:      "v1.0.0-rc.1",
			expected: Version{Tag: "v1.0.0-rc.1", Number: "1.0.0-rc.1"},
		},
		{
			name:     "major minor only",
			tag:      "v2.1",
			expected: Version{Tag: "v2.1", Number: "2.1"},
		},
		{
			name:    "no digits",
			tag:     "nightly",
			wantErr: true,
		},
		{
			name:    "empty",
			tag:     "",
			wantErr: true,
		},
		{
			name:     "four components",
			tag:      "v1.2.3.4",
			expected: Version{Tag: "v1.2.3.4", Number: "1.2.3.4"},
		},
		{
			name:     "calendar version",
			tag:      "2024.01.05",
			expected: Version{Tag: "2024.01.05", Number: "2024.01.05"},
		},
		{
			name:     "digits in prefix",
			tag:      "x264-v1.2.3",
			expected: Version{Tag: "x264-v1.2.3", Number: "1.2.3"},
		},
		{
			name:     "prefix without v",
			tag:      "release-2024.01.05",
			expected: Version{Tag: "release-2024.01.05", Number: "2024.01.05"},
		},
		{
			name:     "v inside prerelease suffix",
			tag:      "v1.0.0-dev.1",
			expected: Version{Tag: "v1.0.0-dev.1", Number: "1.0.0-dev.1"},
		},
		{
			name:    "trailing v",
			tag:     "latest-v",
			wantErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name,
			func(t *testing.T) {
				version, err := ParseVersion(test.tag)

				if test.wantErr {
					require.Error(t, err)
					assert.ErrorIs(t, err, ErrVersionParse)
					assert.NotErrorIs(t, err, ErrNetwork)
					return
				}

				require.NoError(t, err)
				assert.Equal(t, test.expected, version)
			},
		)
	}
}

func TestVersionSemantic(t *testing.T) {
	tests := map[string]string{
		"4.0.13":      "v4.0.13",
		"2.1":         "v2.1.0",
		"1.0.0-rc.1":  "v1.0.0-rc.1",
		"1.2.3+build": "v1.2.3",
		"1.2.3.4":     "",
		"2024.01.05":  "",
	}

	for number, expected := range tests {
		t.Run(number,
			func(t *testing.T) {
				assert.Equal(t, expected, Version{Number: number}.Semantic())
			},
		)
	}
}

func TestFindAsset(t *testing.T) {
	assets := []Asset{
		{Name: "CSpell-lsp-v0.1.23-x86_64-unknown-linux-gnu.tar.gz", URL: "https://example.com/linux"},
		{Name: "CSpell-lsp-v0.1.23-aarch64-apple-darwin.tar.gz", URL: "https://example.com/mac"},
		{Name: "CSpell-lsp-v0.1.23-aarch64-apple-darwin.tar.gz", URL: "https://example.com/duplicate"},
	}

	t.Run("exact match wins",
		func(t *testing.T) {
			asset, err := FindAsset(assets, "CSpell-lsp-v0.1.23-aarch64-apple-darwin.tar.gz")
			require.NoError(t, err)
			assert.Equal(t, "https://example.com/mac", asset.URL)
		},
	)

	t.Run("no partial matches",
		func(t *testing.T) {
			_, err := FindAsset(assets, "CSpell-lsp-v0.1.23-aarch64-apple-darwin")
			assert.ErrorIs(t, err, ErrAssetNotFound)
		},
	)

	t.Run("missing asset",
		func(t *testing.T) {
			_, err := FindAsset(assets, "CSpell-lsp-v0.1.23-x86_64-pc-windows-msvc.zip")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrAssetNotFound)
			assert.Contains(t, err.Error(), "x86_64-pc-windows-msvc.zip")
		},
	)

	t.Run("empty release",
		func(t *testing.T) {
			_, err := FindAsset(nil, "anything")
			assert.ErrorIs(t, err, ErrAssetNotFound)
		},
	)
}
