// Package lspbin resolves the command line of a language server on behalf of an
// editor integration.
//
// A [Manager] looks for the server on the host search path first, then reuses the
// path it resolved before, and finally installs the latest upstream release into its
// working directory, removing any other version.
//
//	manager := lspbin.New(
//		"vlabo/cspell-lsp",
//		binary.NativeArchive("CSpell-lsp", "cspell-lsp"),
//		lspbin.WithBinaryName("cspell-lsp"),
//	)
//
//	cmd, err := manager.Resolve(ctx, lspbin.NewSystemHost())
//	if err != nil {
//		return err
//	}
//
//	return lspbin.Run(ctx, cmd)
package lspbin
