package binary

import (
	"strings"
	"text/template"
)

// Template contains the fields available when resolving asset names, install
// directories and entry paths of a [Distribution].
type Template struct {
	// OS is the operating system token used in asset names (e.g., "apple-darwin")
	OS string
	// Arch is the architecture token used in asset names (e.g., "x86_64")
	Arch string

	// Project is the upstream project name prefixing native archives (e.g., "CSpell-lsp")
	Project string
	// Package is the name of a cross-platform package (e.g., "code-spell-checker")
	Package string
	// Binary is the name of the language server executable
	Binary string

	// Tag is the raw release tag (e.g., "v0.1.23")
	Tag string
	// Version is the bare version number (e.g., "0.1.23")
	Version string

	// Extension is the archive extension without leading dot (e.g., "tar.gz")
	Extension string
	// Exe is the executable suffix; empty on unix systems and ".exe" on windows.
	Exe string
}

// Resolve executes the provided format string as a template with the Template's fields.
// It returns the resolved string and any error that occurred during template parsing or execution.
func (t Template) Resolve(format string) (string, error) {
	tmpl, err := template.New("bin").Option("missingkey=error").Parse(format)
	if err != nil {
		return "", err
	}

	var bld strings.Builder
	if err := tmpl.Execute(&bld, t); err != nil {
		return "", err
	}

	return bld.String(), nil
}

// MustResolve executes the provided format string as a template with the Template's fields.
// Panics if the template can't be resolved correctly.
func (t Template) MustResolve(format string) string {
	resolved, err := t.Resolve(format)
	if err != nil {
		panic(err)
	}
	return resolved
}

// Validate checks that format resolves against a Template.
func Validate(format string) error {
	_, err := Template{}.Resolve(format)
	return err
}
