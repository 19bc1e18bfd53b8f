// Package main is the entry point for the lspbin CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"

	"github.com/aexvir/lspbin/cmd/lspbin/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := commands.New().Execute(ctx); err != nil {
		fmt.Fprintln(color.Error, color.RedString(" ✘ %s", err))
		stop()
		os.Exit(1)
	}
}
