package lspbin

import (
	"fmt"

	"github.com/fatih/color"
)

// stdout may be carrying the language server stream, so everything goes to stderr.

func logstep(text string) {
	fmt.Fprintln(
		color.Error,
		color.MagentaString(" ⌘"),
		color.New(color.Bold).Sprint(text),
	)
}

func logdetail(text string) {
	fmt.Fprintln(
		color.Error,
		color.New(color.FgHiBlack).Sprint("   └"),
		color.New(color.FgHiBlack).Sprint(text),
	)
}
