package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Common errors for configuration loading.
var (
	ErrFileNotFound     = errors.New("configuration file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidYAML      = errors.New("invalid YAML syntax")
	ErrEmptyFile        = errors.New("configuration file is empty")
)

// LoadOptions selects the inputs of Load.
type LoadOptions struct {
	// File is the YAML config file. Empty skips the file layer.
	File string
	// EnvFiles are .env files loaded before reading the environment. Missing
	// files are ignored. Variables already set in the process win.
	EnvFiles []string
}

// Load builds the configuration from defaults, the config file and the
// environment.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	if opts.File != "" {
		if err := cfg.mergeFile(opts.File); err != nil {
			return nil, err
		}
	}

	if err := loadEnvFiles(opts.EnvFiles); err != nil {
		return nil, err
	}
	LoadEnv(cfg)
	return cfg, nil
}

// mergeFile overlays the YAML file at path onto c. Only keys present in the
// file are applied.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		case errors.Is(err, fs.ErrPermission):
			return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return fmt.Errorf("failed to read file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w in %s: %w", ErrInvalidYAML, path, err)
	}
	// Decoding onto c keeps defaults for keys the file omits.
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w in %s: %w", ErrInvalidYAML, path, err)
	}

	if c.Sources == nil {
		c.Sources = make(map[string]string)
	}
	for k, v := range raw {
		sub, ok := v.(map[string]any)
		if !ok {
			c.Sources[k] = SourceFile
			continue
		}
		for sk := range sub {
			c.Sources[k+"."+sk] = SourceFile
		}
	}
	return nil
}

func loadEnvFiles(paths []string) error {
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}
