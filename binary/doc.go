// Package binary provisions language server executables from upstream releases.
//
// At the core, a [Distribution] describes how a server is published: which release
// asset to pick for a [Platform], the archive format, the directory a version is
// installed into and the executable that results from the installation.
// Two distributions are implemented:
// - [NativeArchive]: a prebuilt executable per platform, packed as tar.gz or zip
// - [ScriptPackage]: a single platform independent package (.vsix) that needs a runtime;
// its dependencies are installed and a launcher script is synthesized for it
// If any other publishing scheme is needed, a new distribution can be implemented by just
// fulfilling the [Distribution] interface.
//
// The [Installer] downloads and unpacks an asset following a distribution, skipping all
// work when the executable is already in place. [Prune] removes the installations of
// other versions once a new one is ready.
//
// example usage
//
//	dist := binary.NativeArchive("CSpell-lsp", "cspell-lsp")
//	installer := binary.NewInstaller(dist)
//
//	name := dist.AssetName(info.Version, platform)
//	asset, err := release.FindAsset(info.Assets, name)
//	if err != nil {
//		return err
//	}
//
//	dir := filepath.Join(workdir, dist.Directory(info.Version))
//	if err := installer.Install(ctx, asset, dir, platform); err != nil {
//		return fmt.Errorf("failed to install cspell-lsp: %w", err)
//	}
//	binary.Prune(afero.NewOsFs(), workdir, dist.Directory(info.Version))
//
//	exec.Command(installer.EntryPath(dir, platform), "--stdio")
package binary
