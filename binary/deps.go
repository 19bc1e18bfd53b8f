package binary

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DependencyInstaller installs the runtime dependencies of an extracted package.
type DependencyInstaller interface {
	// Install runs inside dir, the package root containing the manifest.
	Install(ctx context.Context, dir string) error
}

// npm implements [DependencyInstaller] by running npm.
type npm struct {
	args []string
}

// NPM creates a DependencyInstaller running `npm <args>`; `npm install` when no
// arguments are given.
// The package has to live on the os filesystem, as npm runs as a separate process.
func NPM(args ...string) DependencyInstaller {
	if len(args) == 0 {
		args = []string{"install"}
	}
	return &npm{args: args}
}

func (n *npm) Install(ctx context.Context, dir string) error {
	logdetail(fmt.Sprintf("running npm %s in %s", strings.Join(n.args, " "), dir))

	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, "npm", n.args...)
	cmd.Dir = dir
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("npm %s: %w\n%s", strings.Join(n.args, " "), err, strings.TrimSpace(output.String()))
	}

	return nil
}
