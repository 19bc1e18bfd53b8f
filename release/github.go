package release

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const defaultGitHubAPI = "https://api.github.com"

type githubAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

type githubRelease struct {
	TagName    string        `json:"tag_name"`
	Draft      bool          `json:"draft"`
	Prerelease bool          `json:"prerelease"`
	Assets     []githubAsset `json:"assets"`
}

// GitHub implements [Feed] on top of the GitHub releases api.
type GitHub struct {
	baseurl   string
	client    *http.Client
	token     string
	useragent string
}

// GitHubOption customizes the GitHub feed.
type GitHubOption func(g *GitHub)

// WithBaseURL points the feed to a different api endpoint, e.g. a GitHub Enterprise
// instance or a test server.
func WithBaseURL(base string) GitHubOption {
	return func(g *GitHub) {
		g.baseurl = strings.TrimSuffix(base, "/")
	}
}

// WithHTTPClient sets the http client used for api requests.
func WithHTTPClient(client *http.Client) GitHubOption {
	return func(g *GitHub) {
		g.client = client
	}
}

// WithToken authenticates api requests, raising the rate limit.
// By default the GITHUB_TOKEN environment variable is used when set.
func WithToken(token string) GitHubOption {
	return func(g *GitHub) {
		g.token = token
	}
}

// NewGitHub creates a feed reading releases from GitHub.
func NewGitHub(opts ...GitHubOption) *GitHub {
	g := GitHub{
		baseurl:   defaultGitHubAPI,
		client:    &http.Client{Timeout: 30 * time.Second},
		token:     os.Getenv("GITHUB_TOKEN"),
		useragent: "lspbin",
	}

	for _, opt := range opts {
		opt(&g)
	}

	return &g
}

// Latest lists the releases of the repository, newest first, and returns the first one
// that isn't a draft and satisfies the options.
func (g *GitHub) Latest(ctx context.Context, repository string, opts Options) (Info, error) {
	owner, repo, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || repo == "" {
		return Info{}, fmt.Errorf("invalid repository %q: expected owner/name", repository)
	}

	endpoint := fmt.Sprintf(
		"%s/repos/%s/%s/releases?per_page=100",
		g.baseurl, url.PathEscape(owner), url.PathEscape(repo),
	)

	releases, err := g.list(ctx, endpoint)
	if err != nil {
		return Info{}, err
	}

	for _, rel := range releases {
		if rel.Draft {
			continue
		}
		if rel.Prerelease && !opts.PreRelease {
			continue
		}
		if opts.RequireAssets && len(rel.Assets) == 0 {
			continue
		}

		version, err := ParseVersion(rel.TagName)
		if err != nil {
			return Info{}, err
		}

		info := Info{
			Version: version,
			Assets:  make([]Asset, 0, len(rel.Assets)),
		}
		for _, asset := range rel.Assets {
			info.Assets = append(info.Assets, Asset{Name: asset.Name, URL: asset.BrowserDownloadURL})
		}

		return info, nil
	}

	return Info{}, fmt.Errorf("%w for %s", ErrNoRelease, repository)
}

func (g *GitHub) list(ctx context.Context, endpoint string) ([]githubRelease, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build release request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", g.useragent)
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query releases: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf(
			"%w: received unexpected response when querying releases: http%d %s",
			ErrNetwork, resp.StatusCode, strings.TrimSpace(string(body)),
		)
	}

	var releases []githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return nil, fmt.Errorf("%w: failed to decode releases: %w", ErrNetwork, err)
	}

	return releases, nil
}
