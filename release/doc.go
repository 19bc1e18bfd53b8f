// Package release looks up upstream releases and their downloadable assets.
//
// A [Feed] returns the latest release of a repository matching some [Options];
// [GitHub] is the implementation backed by the GitHub releases api.
// Release tags are normalized with [ParseVersion] and assets are matched by exact
// name with [FindAsset].
//
// example usage
//
//	feed := release.NewGitHub()
//	info, err := feed.Latest(ctx, "vlabo/cspell-lsp", release.Options{RequireAssets: true})
//	if err != nil {
//		return err
//	}
//	asset, err := release.FindAsset(info.Assets, "cspell-lsp-v0.1.23-x86_64-unknown-linux-gnu.tar.gz")
package release
