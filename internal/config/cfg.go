package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"
)

//go:embed config.yaml.tmpl
var configTmpl []byte

// ImagesConfig controls the Image Embedder's re-encoding behavior.
type ImagesConfig struct {
	JPEGQuality           int  `yaml:"jpeg_quality"`
	RemovePNGTransparency bool `yaml:"remove_png_transparency"`
}

// DocumentConfig controls document-wide rendering policy.
type DocumentConfig struct {
	// FallbackFonts is the semicolon-joinable candidate list tried, in
	// order, after the font index misses and before giving up to
	// Helvetica (§4.2 resolution order).
	FallbackFonts      []string     `yaml:"fallback_fonts"`
	Images             ImagesConfig `yaml:"images"`
	WarnOnMissingFont  bool         `yaml:"warn_on_missing_font"`
	WarnOnMissingImage bool         `yaml:"warn_on_missing_image"`
}

// Config is the top-level configuration tree for a conversion run.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Document DocumentConfig `yaml:"document"`
}

func unmarshalConfig(data []byte, cfg *Config) (*Config, error) {
	// Mirror KnownFields(true): an unrecognized key is a configuration
	// mistake, not something to silently ignore.
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	return cfg, nil
}

// LoadConfiguration builds the default configuration from the embedded
// template, then — if path is non-empty — overlays values from the file at
// path on top of it. Fields absent from the file keep their defaults.
func LoadConfiguration(path string) (*Config, error) {
	cfg, err := unmarshalConfig(configTmpl, &Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if cfg, err = unmarshalConfig(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Dump renders cfg back to YAML, e.g. for debug logging.
func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
