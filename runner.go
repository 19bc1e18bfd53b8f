package lspbin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Command is a resolved language server command line, ready to be executed.
type Command struct {
	Executable  string            `json:"executable"`
	Arguments   []string          `json:"arguments"`
	Environment map[string]string `json:"environment,omitempty"`
}

// Env returns the environment of the command as a sorted list of NAME=value pairs.
func (c Command) Env() []string {
	env := make([]string, 0, len(c.Environment))
	for _, name := range slices.Sorted(maps.Keys(c.Environment)) {
		env = append(env, name+"="+c.Environment[name])
	}
	return env
}

func (c Command) String() string {
	return strings.TrimSpace(fmt.Sprint(c.Executable, " ", strings.Join(c.Arguments, " ")))
}

// Runner launches a resolved command.
// By default the server is wired to the process stdio, as that's where language
// servers speak the protocol.
type Runner struct {
	Command Command

	cmd   *exec.Cmd
	quiet bool
}

// RunnerOpt allows customizing the behavior of the command runner.
type RunnerOpt func(r *Runner) error

// Cmd builds a runner for the command.
// Executables given as relative paths are resolved against the current directory
// before any [WithDir] option changes where the command runs.
func (c Command) Cmd(ctx context.Context, opts ...RunnerOpt) (*Runner, error) {
	if c.Executable == "" {
		return nil, errors.New("command has no executable")
	}

	executable := c.Executable
	if strings.ContainsRune(executable, filepath.Separator) && !filepath.IsAbs(executable) {
		abs, err := filepath.Abs(executable)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", executable, err)
		}
		executable = abs
	}

	cmd := exec.CommandContext(ctx, executable, c.Arguments...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	cmd.Env = append(os.Environ(), c.Env()...)

	r := Runner{
		Command: Command{
			Executable:  executable,
			Arguments:   slices.Clone(c.Arguments),
			Environment: maps.Clone(c.Environment),
		},
		cmd: cmd,
	}

	for _, opt := range opts {
		if err := opt(&r); err != nil {
			return nil, err
		}
	}

	cmd.Args = append([]string{executable}, r.Command.Arguments...)

	return &r, nil
}

// Exec runs the command until it exits.
func (r *Runner) Exec() error {
	var err error

	start := time.Now()
	defer func() {
		if r.quiet {
			return
		}
		elapsed := time.Since(start).Round(time.Millisecond)
		if err != nil {
			color.New(color.FgRed).Fprintf(color.Error, " ✘ %s\n", elapsed)
			return
		}
		color.New(color.FgGreen).Fprintf(color.Error, " ✔ %s\n", elapsed)
	}()

	if !r.quiet {
		logstep(r.Command.String())
	}

	err = r.cmd.Run()
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(r.Command.Executable), err)
	}

	return nil
}

// Run is a helper to build and execute a command in one go.
func Run(ctx context.Context, command Command, opts ...RunnerOpt) error {
	rnr, err := command.Cmd(ctx, opts...)
	if err != nil {
		return err
	}

	return rnr.Exec()
}

// WithExtraEnv adds environment variables on top of the command environment.
func WithExtraEnv(vars ...string) RunnerOpt {
	return func(r *Runner) error {
		for _, vrb := range vars {
			name, value, ok := strings.Cut(vrb, "=")
			if !ok || name == "" {
				return fmt.Errorf("invalid env format; %s doesn't match NAME=value expectation", vrb)
			}
			if r.Command.Environment == nil {
				r.Command.Environment = make(map[string]string)
			}
			r.Command.Environment[name] = value
			r.cmd.Env = append(r.cmd.Env, vrb)
		}
		return nil
	}
}

// WithArgs appends arguments after the resolved ones.
func WithArgs(args ...string) RunnerOpt {
	return func(r *Runner) error {
		r.Command.Arguments = append(r.Command.Arguments, args...)
		return nil
	}
}

// WithDir sets the directory the command is run inside.
func WithDir(dir string) RunnerOpt {
	return func(r *Runner) error {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", dir, err)
		}
		r.cmd.Dir = abs
		return nil
	}
}

// WithoutNoise silences all output for the command; useful when handling that on the caller side.
func WithoutNoise() RunnerOpt {
	return func(r *Runner) error {
		r.quiet = true
		r.cmd.Stdout = nil
		r.cmd.Stderr = nil

		return nil
	}
}

// WithStdOut set up stdout writer.
func WithStdOut(w io.Writer) RunnerOpt {
	return func(r *Runner) error {
		r.cmd.Stdout = w
		return nil
	}
}

// WithStdIn set up stdin reader.
func WithStdIn(read io.Reader) RunnerOpt {
	return func(r *Runner) error {
		r.cmd.Stdin = read
		return nil
	}
}
