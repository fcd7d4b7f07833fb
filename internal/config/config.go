// Package config loads editor settings from an optional YAML file layered
// with LABELFORM_* environment variables. Environment wins.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config carries the runtime settings for the web surface and the editor
// core.
type Config struct {
	// Listen is the address the web surface binds to.
	Listen string `yaml:"listen"`

	// ServiceURL points at the label printing web service.
	ServiceURL string `yaml:"service_url"`

	// DebounceMS is the edit quiescence window in milliseconds.
	DebounceMS int `yaml:"debounce_ms"`

	// Extensions lists the accepted template file extensions.
	Extensions []string `yaml:"extensions"`

	// Language is a BCP 47 tag used for field ordering.
	Language string `yaml:"language"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Listen:     ":8080",
		DebounceMS: 300,
		Extensions: []string{".label", ".dymo"},
		Language:   "en",
	}
}

// Load reads path (when non-empty) over the defaults, then applies
// environment overrides. A missing file is not an error so the binary runs
// unconfigured out of the box; an unreadable or invalid file is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// fall through to env overrides
		case err != nil:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("LABELFORM_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("LABELFORM_SERVICE_URL"); v != "" {
		c.ServiceURL = v
	}
	if v := os.Getenv("LABELFORM_DEBOUNCE_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: LABELFORM_DEBOUNCE_MS: %w", err)
		}
		c.DebounceMS = ms
	}
	if v := os.Getenv("LABELFORM_EXTENSIONS"); v != "" {
		c.Extensions = splitList(v)
	}
	if v := os.Getenv("LABELFORM_LANGUAGE"); v != "" {
		c.Language = v
	}
	return nil
}

func (c *Config) validate() error {
	if c.Listen == "" {
		return errors.New("config: listen address is required")
	}
	if c.DebounceMS < 0 {
		return fmt.Errorf("config: debounce_ms must not be negative, got %d", c.DebounceMS)
	}
	for i, ext := range c.Extensions {
		ext = strings.TrimSpace(ext)
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("config: extension %q must start with a dot", ext)
		}
		c.Extensions[i] = ext
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
