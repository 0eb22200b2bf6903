// Copyright 2024 The iac-go Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package iac

import (
	"fmt"
	"log/slog"

	"github.com/glimte/iac-go/contracts"
	"github.com/glimte/iac-go/schema"
	"github.com/glimte/iac-go/serialization"
	"github.com/glimte/iac-go/validation"
)

// Serializer provides the main entry point for iac-go
type Serializer struct {
	legacy     *serialization.LegacyFormat
	compact    *serialization.CompactFormat
	legacyReg  *schema.Registry
	compactReg *schema.Registry
	validators *validation.Registry
	version    contracts.EnvelopeVersion
	logger     *slog.Logger
}

// NewSerializer creates a serializer with the built-in schemas and validators
func NewSerializer() (*Serializer, error) {
	return NewSerializerWithOptions(WithDefaultLogger())
}

// NewSerializerWithOptions creates a serializer with options. Registries that
// are not supplied are built from the built-in schemas plus any schema files
// and sealed.
func NewSerializerWithOptions(options ...Option) (*Serializer, error) {
	cfg := &serializerConfig{
		logger:          slog.Default(),
		version:         contracts.EnvelopeV3,
		singleChunkSize: serialization.DefaultSingleChunkSize,
		multiChunkSize:  serialization.DefaultMultiChunkSize,
		protocols:       contracts.DefaultProtocols(),
	}

	for _, opt := range options {
		opt(cfg)
	}

	if cfg.version != contracts.EnvelopeV2 && cfg.version != contracts.EnvelopeV3 {
		return nil, fmt.Errorf("%w: %s", serialization.ErrUnsupportedVersion, cfg.version)
	}

	var err error
	if cfg.legacyRegistry == nil {
		cfg.legacyRegistry, err = buildRegistry(schema.NewLegacyRegistry(schema.WithRegistryLogger(cfg.logger)), cfg.schemaFiles)
		if err != nil {
			return nil, fmt.Errorf("failed to build legacy schema registry: %w", err)
		}
	}
	if cfg.compactRegistry == nil {
		cfg.compactRegistry, err = buildRegistry(schema.NewRegistry(schema.WithRegistryLogger(cfg.logger)), cfg.schemaFiles)
		if err != nil {
			return nil, fmt.Errorf("failed to build schema registry: %w", err)
		}
	}
	if cfg.validators == nil {
		cfg.validators = validation.NewBuiltinRegistry(validation.WithLogger(cfg.logger))
	}

	formatOpts := []serialization.Option{
		serialization.WithLogger(cfg.logger),
		serialization.WithProtocols(cfg.protocols),
		serialization.WithChunkSizes(cfg.singleChunkSize, cfg.multiChunkSize),
	}

	return &Serializer{
		legacy:     serialization.NewLegacyFormat(cfg.legacyRegistry, formatOpts...),
		compact:    serialization.NewCompactFormat(cfg.compactRegistry, formatOpts...),
		legacyReg:  cfg.legacyRegistry,
		compactReg: cfg.compactRegistry,
		validators: cfg.validators,
		version:    cfg.version,
		logger:     cfg.logger,
	}, nil
}

func buildRegistry(r *schema.Registry, schemaFiles []string) (*schema.Registry, error) {
	if err := schema.RegisterBuiltins(r); err != nil {
		return nil, err
	}
	for _, path := range schemaFiles {
		bundle, err := schema.LoadBundle(path)
		if err != nil {
			return nil, err
		}
		if err := bundle.RegisterInto(r); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	r.Seal()
	return r, nil
}

// Version returns the envelope version Serialize produces
func (s *Serializer) Version() contracts.EnvelopeVersion {
	return s.version
}

// Format returns the envelope format for a version
func (s *Serializer) Format(version contracts.EnvelopeVersion) (serialization.Format, error) {
	switch version {
	case contracts.EnvelopeV2:
		return s.legacy, nil
	case contracts.EnvelopeV3:
		return s.compact, nil
	default:
		return nil, fmt.Errorf("%w: %s", serialization.ErrUnsupportedVersion, version)
	}
}

// Registry returns the schema registry backing a version
func (s *Serializer) Registry(version contracts.EnvelopeVersion) (*schema.Registry, error) {
	switch version {
	case contracts.EnvelopeV2:
		return s.legacyReg, nil
	case contracts.EnvelopeV3:
		return s.compactReg, nil
	default:
		return nil, fmt.Errorf("%w: %s", serialization.ErrUnsupportedVersion, version)
	}
}

// Serialize encodes messages with the configured envelope version
func (s *Serializer) Serialize(messages ...contracts.Message) ([]string, error) {
	return s.SerializeAs(s.version, messages...)
}

// SerializeAs encodes messages with a specific envelope version
func (s *Serializer) SerializeAs(version contracts.EnvelopeVersion, messages ...contracts.Message) ([]string, error) {
	format, err := s.Format(version)
	if err != nil {
		return nil, err
	}
	return format.Serialize(messages)
}

// Deserialize decodes a batch of envelope strings, detecting their version.
// All strings of a batch must share one version.
func (s *Serializer) Deserialize(data ...string) (*serialization.Result, error) {
	if len(data) == 0 {
		return nil, serialization.ErrEmptyBatch
	}

	var version contracts.EnvelopeVersion
	for idx, envelope := range data {
		detected, err := serialization.DetectVersion(envelope)
		if err != nil {
			return nil, fmt.Errorf("envelope %d: %w", idx, err)
		}
		if idx > 0 && detected != version {
			return nil, fmt.Errorf("%w: envelope %d is %s, expected %s", serialization.ErrMixedVersions, idx, detected, version)
		}
		version = detected
	}

	s.logger.Debug("Deserializing batch", "version", version.String(), "envelopes", len(data))
	return s.DeserializeAs(version, data...)
}

// DeserializeAs decodes a batch of envelope strings of a known version
func (s *Serializer) DeserializeAs(version contracts.EnvelopeVersion, data ...string) (*serialization.Result, error) {
	format, err := s.Format(version)
	if err != nil {
		return nil, err
	}
	return format.Deserialize(data)
}

// Validator returns the transaction validator for a protocol
func (s *Serializer) Validator(protocol string) validation.Validator {
	return s.validators.Resolve(protocol)
}

// serializerConfig holds serializer configuration
type serializerConfig struct {
	logger          *slog.Logger
	version         contracts.EnvelopeVersion
	singleChunkSize int
	multiChunkSize  int
	legacyRegistry  *schema.Registry
	compactRegistry *schema.Registry
	validators      *validation.Registry
	protocols       contracts.ProtocolSet
	schemaFiles     []string
}

// Option configures the serializer
type Option func(*serializerConfig)

// WithLogger sets the logger for all components
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *serializerConfig) {
		cfg.logger = logger
	}
}

// WithDefaultLogger uses the default logger
func WithDefaultLogger() Option {
	return func(cfg *serializerConfig) {
		cfg.logger = slog.Default()
	}
}

// WithVersion sets the envelope version Serialize produces
func WithVersion(version contracts.EnvelopeVersion) Option {
	return func(cfg *serializerConfig) {
		cfg.version = version
	}
}

// WithChunkSizes sets the v2 chunking thresholds; a single size of zero
// disables chunking
func WithChunkSizes(single, multi int) Option {
	return func(cfg *serializerConfig) {
		cfg.singleChunkSize = single
		cfg.multiChunkSize = multi
	}
}

// WithLegacyRegistry uses a prepared registry for the v2 format
func WithLegacyRegistry(r *schema.Registry) Option {
	return func(cfg *serializerConfig) {
		cfg.legacyRegistry = r
	}
}

// WithCompactRegistry uses a prepared registry for the v3 format
func WithCompactRegistry(r *schema.Registry) Option {
	return func(cfg *serializerConfig) {
		cfg.compactRegistry = r
	}
}

// WithValidators uses a prepared validator registry
func WithValidators(r *validation.Registry) Option {
	return func(cfg *serializerConfig) {
		cfg.validators = r
	}
}

// WithProtocols sets the main protocols accepted when decoding
func WithProtocols(protocols contracts.ProtocolSet) Option {
	return func(cfg *serializerConfig) {
		cfg.protocols = protocols
	}
}

// WithSchemaFiles registers the schema bundles in the registries built by
// the serializer
func WithSchemaFiles(paths ...string) Option {
	return func(cfg *serializerConfig) {
		cfg.schemaFiles = append(cfg.schemaFiles, paths...)
	}
}
