package gen

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/aexvir/lspbin"
)

// ZedBinary is the binary section of a language server in Zed's settings.json.
type ZedBinary struct {
	Path      string            `json:"path"`
	Arguments []string          `json:"arguments,omitempty"`
	Env       map[string]string `json:"env,omitempty"`
}

// ZedSettingsConfig holds the configuration for Zed settings generation
type ZedSettingsConfig struct {
	outputPath string
	settings   lspbin.Settings
}

// ZedSettingsOpt is a function that modifies ZedSettingsConfig
type ZedSettingsOpt func(*ZedSettingsConfig)

// WithZedOutputPath sets the output path for the settings.json file
func WithZedOutputPath(path string) ZedSettingsOpt {
	return func(c *ZedSettingsConfig) {
		c.outputPath = path
	}
}

// WithZedLSPSettings also writes the initialization options and workspace
// configuration of the server.
func WithZedLSPSettings(settings lspbin.Settings) ZedSettingsOpt {
	return func(c *ZedSettingsConfig) {
		c.settings = settings
	}
}

// ZedSettings pins a resolved command as the binary of a language server in
// .zed/settings.json, under lsp.<serverID>.
// Everything else in the file is kept as is.
func ZedSettings(serverID string, cmd lspbin.Command, opts ...ZedSettingsOpt) error {
	config := ZedSettingsConfig{
		outputPath: filepath.Join(".zed", "settings.json"),
	}

	for _, opt := range opts {
		opt(&config)
	}

	settings, err := readZedSettings(config.outputPath)
	if err != nil {
		return err
	}

	lsp, err := section(settings, "lsp")
	if err != nil {
		return err
	}

	server, err := section(lsp, serverID)
	if err != nil {
		return fmt.Errorf("lsp: %w", err)
	}

	server["binary"] = ZedBinary{
		Path:      cmd.Executable,
		Arguments: cmd.Arguments,
		Env:       cmd.Environment,
	}

	if len(config.settings.InitializationOptions) > 0 {
		server["initialization_options"] = config.settings.InitializationOptions
	}
	if len(config.settings.Workspace) > 0 {
		server["settings"] = config.settings.Workspace
	}

	lsp[serverID] = server
	settings["lsp"] = lsp

	return writeZedSettings(config.outputPath, settings)
}

// readZedSettings reads the settings file; a missing file is empty settings.
func readZedSettings(path string) (map[string]any, error) {
	settings := make(map[string]any)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	if len(data) == 0 {
		return settings, nil
	}

	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse existing settings file: %w", err)
	}

	return settings, nil
}

// section returns the object stored under key, creating it when missing.
func section(parent map[string]any, key string) (map[string]any, error) {
	value, ok := parent[key]
	if !ok || value == nil {
		return make(map[string]any), nil
	}

	object, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s is not an object", key)
	}
	return object, nil
}

func writeZedSettings(path string, settings map[string]any) error {
	// Ensure the directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	fmt.Fprintln(
		color.Error,
		color.BlueString(" •"),
		color.New(color.FgHiBlack).Sprintf("wrote %s", path),
	)
	return nil
}
