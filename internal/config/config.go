package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"mcumeson/internal/crossfile"
	"mcumeson/internal/meson"
)

// FileName is the project configuration file looked up in the project root.
const FileName = "mcumeson.yaml"

// Config captures how a project's cross build directory is prepared.
type Config struct {
	Version  int    `yaml:"version"`
	BuildDir string `yaml:"build_dir"`
	// CrossFiles lists cross file references; the first one declares the
	// toolchain and is patched.
	CrossFiles []string        `yaml:"cross_files"`
	LinkScript string          `yaml:"link_script,omitempty"`
	OutputMap  string          `yaml:"output_map,omitempty"`
	Toolchain  ToolchainConfig `yaml:"toolchain"`
	Meson      MesonConfig     `yaml:"meson"`
	Templates  TemplatesConfig `yaml:"templates"`
}

// ToolchainConfig overrides the toolchain lookup.
type ToolchainConfig struct {
	Path string `yaml:"path,omitempty"`
}

// MesonConfig describes how meson is invoked.
type MesonConfig struct {
	Command string   `yaml:"command"`
	VSEnv   *bool    `yaml:"vsenv,omitempty"`
	Args    []string `yaml:"args,omitempty"`
}

// TemplatesConfig controls where shorthand references are fetched from.
type TemplatesConfig struct {
	Repository string `yaml:"repository"`
	Jobs       int    `yaml:"jobs"`
}

// VSEnvValue returns the effective vsenv flag applying defaults.
func (m MesonConfig) VSEnvValue() bool {
	if m.VSEnv == nil {
		return true
	}
	return *m.VSEnv
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version:  1,
		BuildDir: "builddir",
		CrossFiles: []string{
			"main:gcc-arm-none-eabi.ini",
			"main:gcc-cortex-m3.ini",
		},
		Meson: MesonConfig{
			Command: meson.DefaultTool,
			VSEnv:   boolPtr(true),
		},
		Templates: TemplatesConfig{
			Repository: crossfile.DefaultRepository,
			Jobs:       1,
		},
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise returns
// the default configuration.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills fields the YAML omitted.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if strings.TrimSpace(c.BuildDir) == "" {
		c.BuildDir = defaults.BuildDir
	}
	if len(c.CrossFiles) == 0 {
		c.CrossFiles = append([]string(nil), defaults.CrossFiles...)
	}
	if strings.TrimSpace(c.Meson.Command) == "" {
		c.Meson.Command = defaults.Meson.Command
	}
	if c.Meson.VSEnv == nil {
		c.Meson.VSEnv = boolPtr(true)
	}
	if strings.TrimSpace(c.Templates.Repository) == "" {
		c.Templates.Repository = defaults.Templates.Repository
	}
	if c.Templates.Jobs <= 0 {
		c.Templates.Jobs = defaults.Templates.Jobs
	}
}

// Marshal returns the YAML encoding of the configuration.
func (c Config) Marshal() ([]byte, error) {
	buf, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}

func boolPtr(v bool) *bool {
	return &v
}
