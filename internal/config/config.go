// Package config holds the project-layout configuration for the indexing
// core: which directories hold application, dependency, and runtime-library
// source, which subtrees are excluded, and how wide the worker pool runs.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the indexing core.
type Config struct {
	// AppsDirs are the application source roots, searched first.
	AppsDirs []string `yaml:"apps_dirs"`
	// DepsDirs hold third-party dependency trees.
	DepsDirs []string `yaml:"deps_dirs"`
	// IncludeDirs hold shared header units.
	IncludeDirs []string `yaml:"include_dirs"`
	// OTPPath is the runtime-library root, indexed only when IndexOTP is set.
	OTPPath string `yaml:"otp_path"`
	// ExcludePaths are doublestar globs, relative to the project root.
	ExcludePaths []string `yaml:"exclude_paths"`

	IndexDeps bool `yaml:"index_deps"`
	IndexOTP  bool `yaml:"index_otp"`

	// Workers sizes the async worker pool; zero means the pool default.
	Workers int `yaml:"workers"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		AppsDirs:  []string{"src"},
		DepsDirs:  []string{"deps"},
		IndexDeps: true,
		IndexOTP:  false,
	}
}

// Load reads a YAML configuration file, applying defaults for missing keys.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}
