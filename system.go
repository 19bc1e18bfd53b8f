package lspbin

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"

	"github.com/fatih/color"
)

// SystemHost is a [Host] backed by the running process: the executable search path,
// the platform the process runs on and settings provided upfront.
// Status transitions are printed to stderr.
type SystemHost struct {
	settings map[string]Settings
	out      io.Writer
	nopath   bool
}

type SystemHostOption func(h *SystemHost)

// WithSettings sets the settings returned per server id.
func WithSettings(settings map[string]Settings) SystemHostOption {
	return func(h *SystemHost) {
		h.settings = settings
	}
}

// WithStatusWriter sets where status transitions are printed.
func WithStatusWriter(w io.Writer) SystemHostOption {
	return func(h *SystemHost) {
		h.out = w
	}
}

// WithoutPathLookup makes the host ignore executables on the search path, forcing
// servers to be installed.
func WithoutPathLookup() SystemHostOption {
	return func(h *SystemHost) {
		h.nopath = true
	}
}

func NewSystemHost(opts ...SystemHostOption) *SystemHost {
	h := SystemHost{
		settings: make(map[string]Settings),
		out:      color.Error,
	}

	for _, opt := range opts {
		opt(&h)
	}

	return &h
}

func (h *SystemHost) Which(name string) (string, bool) {
	if h.nopath || name == "" {
		return "", false
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", false
	}
	return path, true
}

func (h *SystemHost) Platform() (string, string) {
	return runtime.GOOS, runtime.GOARCH
}

func (h *SystemHost) SetStatus(status Status) {
	switch status {
	case StatusNone:
		return
	case StatusFailed:
		fmt.Fprintln(h.out, color.RedString(" ✘"), color.New(color.FgRed).Sprint(status))
	default:
		fmt.Fprintln(h.out, color.BlueString(" •"), color.New(color.FgHiBlack).Sprint(status))
	}
}

// Settings returns the settings of the server; empty settings when none were provided.
func (h *SystemHost) Settings(serverID string) (Settings, error) {
	return h.settings[serverID], nil
}
