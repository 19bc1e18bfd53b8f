package release

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/mod/semver"
)

var (
	// ErrNetwork is returned when the release feed or an asset download can't be reached
	// or answers with an unexpected response.
	ErrNetwork = errors.New("network error")
	// ErrVersionParse is returned when a release tag carries no usable version number.
	ErrVersionParse = errors.New("unable to extract version from tag")
	// ErrAssetNotFound is returned when a release has no asset with the expected name.
	ErrAssetNotFound = errors.New("release asset not found")
	// ErrNoRelease is returned when the feed has no release matching the requested options.
	ErrNoRelease = errors.New("no qualifying release")
)

// Feed queries an upstream release feed.
type Feed interface {
	// Latest returns the most recent release of the repository that satisfies the options.
	Latest(ctx context.Context, repository string, opts Options) (Info, error)
}

// Options filter which releases qualify as latest.
type Options struct {
	// RequireAssets skips releases without downloadable assets.
	RequireAssets bool
	// PreRelease allows pre-releases to be picked.
	PreRelease bool
}

// Info is a release as returned by a [Feed].
type Info struct {
	Version Version
	Assets  []Asset
}

// Asset is a downloadable file attached to a release.
type Asset struct {
	Name string
	URL  string
}

// Version holds both the raw release tag and the bare version number extracted from it.
// e.g. tag "v4.0.13" has number "4.0.13".
type Version struct {
	Tag    string
	Number string
}

func (v Version) String() string {
	return v.Tag
}

// ParseVersion extracts the version number from a release tag, discarding everything
// up to the last "v" followed by a digit ("v1.2.3", "x264-v1.2.3"), or up to the first
// digit when there is no such "v" ("release-2024.01.05").
// Numbers don't need to be semantic versions; "1.2.3.4" is kept as is.
func ParseVersion(tag string) (Version, error) {
	idx := -1
	for i := len(tag) - 2; i >= 0; i-- {
		if tag[i] == 'v' && unicode.IsDigit(rune(tag[i+1])) {
			idx = i + 1
			break
		}
	}

	if idx < 0 {
		idx = strings.IndexFunc(tag, unicode.IsDigit)
	}

	if idx < 0 {
		return Version{}, fmt.Errorf("%w %q: no version segment", ErrVersionParse, tag)
	}

	return Version{Tag: tag, Number: tag[idx:]}, nil
}

// Semantic returns the canonical semantic version of the number, e.g. "v2.1.0" for "2.1";
// empty when the number isn't a semantic version.
func (v Version) Semantic() string {
	return semver.Canonical("v" + v.Number)
}

// FindAsset returns the first asset whose name is exactly the expected one.
func FindAsset(assets []Asset, name string) (Asset, error) {
	for _, asset := range assets {
		if asset.Name == name {
			return asset, nil
		}
	}
	return Asset{}, fmt.Errorf("%w: no asset named %s", ErrAssetNotFound, name)
}
