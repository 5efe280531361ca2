package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ClientConfig configures the terminal client. Values are layered: defaults,
// then the YAML file, then HUDDLE_* environment variables. Command line flags
// are applied last by the caller.
type ClientConfig struct {
	ServerURL    string `yaml:"server_url"`
	DataDir      string `yaml:"data_dir"`
	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"`
	HistoryLimit int    `yaml:"history_limit"`
	Bucket       string `yaml:"bucket"`
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		ServerURL:    "http://localhost:8080",
		DataDir:      filepath.Join(dataHome(), "huddle"),
		LogLevel:     "warn",
		LogFormat:    "text",
		HistoryLimit: 50,
		Bucket:       "avatars",
	}
}

// ClientConfigPath is where LoadClientConfig looks when no path is given.
func ClientConfigPath() string {
	if home := os.Getenv("HUDDLE_HOME"); home != "" {
		return filepath.Join(home, "client.yaml")
	}
	return filepath.Join(configHome(), "huddle", "client.yaml")
}

// LoadClientConfig reads path, or ClientConfigPath when path is empty. A
// missing default file is not an error; a missing explicit one is.
func LoadClientConfig(path string) (ClientConfig, error) {
	cfg := DefaultClientConfig()

	explicit := path != ""
	if !explicit {
		path = ClientConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 50
	}
	return cfg, nil
}

func (c *ClientConfig) applyEnv() {
	c.ServerURL = getEnv("HUDDLE_SERVER_URL", c.ServerURL)
	c.DataDir = getEnv("HUDDLE_DATA_DIR", c.DataDir)
	c.LogLevel = getEnv("HUDDLE_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("HUDDLE_LOG_FORMAT", c.LogFormat)
	c.Bucket = getEnv("HUDDLE_BUCKET", c.Bucket)
	if n, err := strconv.Atoi(getEnv("HUDDLE_HISTORY_LIMIT", "")); err == nil {
		c.HistoryLimit = n
	}
}

// SessionPath holds the signed in session between runs.
func (c ClientConfig) SessionPath() string {
	return filepath.Join(c.DataDir, "session.json")
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config")
	}
	return "."
}

func dataHome() string {
	if home := os.Getenv("HUDDLE_HOME"); home != "" {
		return filepath.Join(home, "data")
	}
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share")
	}
	return "."
}
