package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds MCP server settings.
type ServerConfig struct {
	Name   string `yaml:"name"`
	Legacy bool   `yaml:"legacy,omitempty"`
}

// HostConfig holds settings for reaching the editing application.
type HostConfig struct {
	Simulate bool `yaml:"simulate,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Config holds resolve-mcp configuration.
type Config struct {
	Version string       `yaml:"version"`
	Server  ServerConfig `yaml:"server,omitempty"`
	Host    HostConfig   `yaml:"host,omitempty"`
	Log     LogConfig    `yaml:"log,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Version: "1",
		Server: ServerConfig{
			Name: "resolve-mcp",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Issue represents a health check finding.
type Issue struct {
	Severity string // "warning" or "error"
	Message  string
}

// Home returns the RESOLVE_MCP_HOME path, respecting the env var.
func Home() string {
	if h := os.Getenv("RESOLVE_MCP_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".resolve-mcp")
	}
	return filepath.Join(home, ".resolve-mcp")
}

// Init creates the home directory and writes the default config.
func Init(home string, force bool) error {
	if _, err := os.Stat(home); err == nil && !force {
		return fmt.Errorf("RESOLVE_MCP_HOME already exists at %s (use --force to reinitialize)", home)
	}
	if err := os.MkdirAll(home, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", home, err)
	}
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	cfgPath := filepath.Join(home, "config.yaml")
	if err := os.WriteFile(cfgPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Load reads config.yaml from home. A missing file yields the defaults;
// missing fields are filled from defaults.
func Load(home string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(filepath.Join(home, "config.yaml"))
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("cannot read config at %s: %w", filepath.Join(home, "config.yaml"), err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid config.yaml: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to config.yaml under home.
func Save(home string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(home, "config.yaml"), data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// CheckHealth verifies the home directory and config file.
func CheckHealth(home string) []Issue {
	var issues []Issue

	info, err := os.Stat(home)
	if err != nil {
		issues = append(issues, Issue{"warning", fmt.Sprintf("home directory missing: %s (run 'resolve-mcp config init')", home)})
		return issues
	}
	if !info.IsDir() {
		issues = append(issues, Issue{"error", fmt.Sprintf("expected directory but found file: %s", home)})
		return issues
	}

	cfgPath := filepath.Join(home, "config.yaml")
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		issues = append(issues, Issue{"warning", fmt.Sprintf("cannot read config.yaml: %v", err)})
		return issues
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		issues = append(issues, Issue{"error", fmt.Sprintf("config.yaml is not valid YAML: %v", err)})
		return issues
	}
	if cfg.Log.Level != "" {
		switch cfg.Log.Level {
		case "debug", "info", "warn", "error":
		default:
			issues = append(issues, Issue{"error", fmt.Sprintf("log.level %q is not one of debug, info, warn, error", cfg.Log.Level)})
		}
	}
	return issues
}
