package iac

import (
	"errors"
	"fmt"
	"os"

	"github.com/glimte/iac-go/contracts"
	"github.com/glimte/iac-go/serialization"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("iac: invalid config")

// Config is the file form of the serializer options
type Config struct {
	Version         int      `yaml:"version"`
	SingleChunkSize int      `yaml:"singleChunkSize"`
	MultiChunkSize  int      `yaml:"multiChunkSize"`
	SchemaFiles     []string `yaml:"schemaFiles,omitempty"`
	Protocols       []string `yaml:"protocols,omitempty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:         int(contracts.EnvelopeV3),
		SingleChunkSize: serialization.DefaultSingleChunkSize,
		MultiChunkSize:  serialization.DefaultMultiChunkSize,
	}
}

// LoadConfig reads a YAML file over the defaults
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Version != int(contracts.EnvelopeV2) && c.Version != int(contracts.EnvelopeV3) {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidConfig, c.Version)
	}
	if c.SingleChunkSize < 0 {
		return fmt.Errorf("%w: single chunk size cannot be negative", ErrInvalidConfig)
	}
	if c.SingleChunkSize > 0 && c.MultiChunkSize <= 0 {
		return fmt.Errorf("%w: multi chunk size must be positive when chunking", ErrInvalidConfig)
	}
	return nil
}

// Options converts the configuration into serializer options
func (c *Config) Options() []Option {
	opts := []Option{
		WithVersion(contracts.EnvelopeVersion(c.Version)),
		WithChunkSizes(c.SingleChunkSize, c.MultiChunkSize),
	}
	if len(c.SchemaFiles) > 0 {
		opts = append(opts, WithSchemaFiles(c.SchemaFiles...))
	}
	if len(c.Protocols) > 0 {
		opts = append(opts, WithProtocols(contracts.NewProtocolSet(c.Protocols...)))
	}
	return opts
}
