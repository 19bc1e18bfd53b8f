package lspbin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Provision resolves every manager in turn, returning the commands keyed by server id.
// A failing server doesn't stop the others; all failures are returned joined.
func Provision(ctx context.Context, host Host, managers ...*Manager) (cmds map[string]Command, err error) {
	start := time.Now()
	defer func() {
		elapsed := time.Since(start).Round(time.Millisecond)
		if err != nil {
			color.New(color.FgRed).Fprintf(color.Error, " ✘ %s\n", elapsed)
			return
		}
		color.New(color.FgGreen).Fprintf(color.Error, " ✔ %s\n", elapsed)
	}()

	names := make([]string, 0, len(managers))
	for _, manager := range managers {
		names = append(names, manager.ServerID())
	}
	logstep(fmt.Sprintf("provisioning %d servers: %s", len(managers), strings.Join(names, ", ")))

	cmds = make(map[string]Command, len(managers))
	var errs []error

	for _, manager := range managers {
		cmd, err := manager.Resolve(ctx, host)
		if err != nil {
			color.New(color.FgRed).Fprintf(color.Error, "   • %s: %s\n", manager.ServerID(), err)
			errs = append(errs, fmt.Errorf("failed to provision %s: %w", manager.ServerID(), err))
			continue
		}
		cmds[manager.ServerID()] = cmd
	}

	return cmds, errors.Join(errs...)
}
