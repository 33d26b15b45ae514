// Package config loads the ctrlgen configuration file.
//
// Every component receives the section it needs at construction time;
// nothing reads configuration from global state.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all ctrlgen configuration.
type Config struct {
	Catalog CatalogConfig `yaml:"catalog"`
	Store   StoreConfig   `yaml:"store"`
	Codegen CodegenConfig `yaml:"codegen"`
	Logging LoggingConfig `yaml:"logging"`
}

// CatalogConfig locates the flat instruction catalog.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// StoreConfig selects the record store.
type StoreConfig struct {
	Driver   string `yaml:"driver"` // json, sqlite
	Path     string `yaml:"path"`
	AutoSave bool   `yaml:"auto_save"`
}

// CodegenConfig controls code generation.
type CodegenConfig struct {
	// Inline template text wins over a template file; with neither, the
	// built-in default is used.
	CtrlTemplate      string `yaml:"ctrl_template"`
	FieldTemplate     string `yaml:"field_template"`
	CtrlTemplateFile  string `yaml:"ctrl_template_file"`
	FieldTemplateFile string `yaml:"field_template_file"`

	AutoFormat bool   `yaml:"auto_format"`
	OutputDir  string `yaml:"output_dir"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string `yaml:"level"` // debug, info, warn, error
	JSONFormat bool   `yaml:"json_format"`
}

// Environment variables that override the file.
const (
	EnvCatalogPath = "CTRLGEN_CATALOG"
	EnvStorePath   = "CTRLGEN_STORE"
	EnvOutputDir   = "CTRLGEN_OUTPUT_DIR"
	EnvLogLevel    = "CTRLGEN_LOG_LEVEL"
)

var (
	ValidDrivers   = []string{"json", "sqlite"}
	ValidLogLevels = []string{"debug", "info", "warn", "error"}
)

// Dir returns the directory holding the default config file and records.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".ctrlgen"
	}
	return filepath.Join(base, "ctrlgen")
}

// DefaultPath returns the config file location used without --config.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Driver:   "json",
			Path:     filepath.Join(Dir(), "records.json"),
			AutoSave: true,
		},
		Codegen: CodegenConfig{
			AutoFormat: true,
			OutputDir:  "~/riscv_scala",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from a YAML file layered over the defaults.
// A missing file yields the defaults. Environment overrides are applied
// and "~/" prefixes expanded before the result is validated.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	var errs []error
	if !contains(ValidDrivers, c.Store.Driver) {
		errs = append(errs, fmt.Errorf("invalid store driver: %q (valid: %v)", c.Store.Driver, ValidDrivers))
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		errs = append(errs, errors.New("store path is empty"))
	}
	if !contains(ValidLogLevels, c.Logging.Level) {
		errs = append(errs, fmt.Errorf("invalid log level: %q (valid: %v)", c.Logging.Level, ValidLogLevels))
	}
	return errors.Join(errs...)
}

// LoadTemplates resolves the Ctrl and Field template text. An empty result
// means the built-in default applies.
func (c CodegenConfig) LoadTemplates() (ctrl, field string, err error) {
	ctrl, err = resolveTemplate(c.CtrlTemplate, c.CtrlTemplateFile)
	if err != nil {
		return "", "", err
	}
	field, err = resolveTemplate(c.FieldTemplate, c.FieldTemplateFile)
	if err != nil {
		return "", "", err
	}
	return ctrl, field, nil
}

func resolveTemplate(inline, file string) (string, error) {
	if inline != "" {
		return inline, nil
	}
	if file == "" {
		return "", nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("failed to read template: %w", err)
	}
	return string(data), nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvCatalogPath); v != "" {
		c.Catalog.Path = v
	}
	if v := os.Getenv(EnvStorePath); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.Codegen.OutputDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{
		&c.Catalog.Path,
		&c.Store.Path,
		&c.Codegen.CtrlTemplateFile,
		&c.Codegen.FieldTemplateFile,
		&c.Codegen.OutputDir,
	} {
		expanded, err := ExpandHome(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

// ExpandHome replaces a leading "~" or "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", path, err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
