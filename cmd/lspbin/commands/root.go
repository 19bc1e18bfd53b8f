// Package commands implements the CLI commands for lspbin.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/aexvir/lspbin"
	"github.com/aexvir/lspbin/config"
)

// CLI represents the command line interface for lspbin.
type CLI struct {
	rootCmd *cobra.Command
	stdout  io.Writer
	host    lspbin.Host
	opts    []lspbin.Option
}

type Option func(c *CLI)

// WithOutput sets where command results are written; defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(c *CLI) {
		c.stdout = w
	}
}

// WithHost replaces the host built from the running process.
func WithHost(host lspbin.Host) Option {
	return func(c *CLI) {
		c.host = host
	}
}

// WithManagerOptions sets options applied to every manager built from the configuration.
func WithManagerOptions(opts ...lspbin.Option) Option {
	return func(c *CLI) {
		c.opts = append(c.opts, opts...)
	}
}

// New creates a new CLI instance.
func New(opts ...Option) *CLI {
	rootCmd := &cobra.Command{
		Use:           "lspbin",
		Short:         "Resolve, install and run language server binaries",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "lspbin.toml", "Path to configuration file (toml or yaml)")
	rootCmd.PersistentFlags().String("workdir", "", "Base directory servers are installed into, one folder per server; defaults to the user cache")
	rootCmd.PersistentFlags().Bool("no-path", false, "Ignore servers available on PATH")

	c := &CLI{
		rootCmd: rootCmd,
		stdout:  os.Stdout,
	}

	for _, opt := range opts {
		opt(c)
	}

	rootCmd.AddCommand(c.newResolveCmd())
	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newZedCmd())
	rootCmd.AddCommand(c.newPruneCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// session bundles what every command needs: the loaded configuration and the host.
type session struct {
	cfg  *config.File
	host lspbin.Host
}

func (c *CLI) session(cmd *cobra.Command) (*session, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if c.host != nil {
		return &session{cfg: cfg, host: c.host}, nil
	}

	settings, err := cfg.Settings()
	if err != nil {
		return nil, err
	}

	hostopts := []lspbin.SystemHostOption{lspbin.WithSettings(settings)}
	if nopath, _ := cmd.Flags().GetBool("no-path"); nopath {
		hostopts = append(hostopts, lspbin.WithoutPathLookup())
	}

	return &session{cfg: cfg, host: lspbin.NewSystemHost(hostopts...)}, nil
}

// manager builds the manager of the server named in args; the only configured server
// when args is empty.
func (c *CLI) manager(cmd *cobra.Command, s *session, args []string) (*lspbin.Manager, error) {
	var id string

	switch {
	case len(args) > 0:
		id = args[0]
	case len(s.cfg.Servers) == 1:
		id = s.cfg.IDs()[0]
	default:
		return nil, fmt.Errorf("multiple servers configured, pick one of: %v", s.cfg.IDs())
	}

	server, err := s.cfg.Server(id)
	if err != nil {
		return nil, err
	}

	opts := slices.Clone(c.opts)
	if workdir, _ := cmd.Flags().GetString("workdir"); workdir != "" {
		opts = append(opts, lspbin.WithWorkDir(filepath.Join(workdir, id)))
	}

	return server.Manager(id, opts...)
}
