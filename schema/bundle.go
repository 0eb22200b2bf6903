package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glimte/iac-go/contracts"
	"gopkg.in/yaml.v3"
)

// Bundle is a file listing schemas to register, for example:
//
//	schemas:
//	  - type: TransactionSignRequest
//	    protocol: xtz
//	    schema:
//	      type: object
//	      properties:
//	        transaction: {type: string}
type Bundle struct {
	Schemas []BundleEntry `json:"schemas" yaml:"schemas"`
}

// BundleEntry is one schema in a bundle. Type is a message type name or number.
type BundleEntry struct {
	Type     string      `json:"type" yaml:"type"`
	Protocol string      `json:"protocol,omitempty" yaml:"protocol,omitempty"`
	Schema   *Definition `json:"schema" yaml:"schema"`
}

// LoadBundle reads a bundle from a .json, .yaml or .yml file
func LoadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema bundle: %w", err)
	}

	var bundle Bundle
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &bundle)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &bundle)
	default:
		return nil, fmt.Errorf("%w: unsupported bundle extension %q", ErrInvalidDefinition, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDefinition, path, err)
	}
	return &bundle, nil
}

// RegisterInto compiles every entry and registers it in order
func (b *Bundle) RegisterInto(r *Registry) error {
	for idx, entry := range b.Schemas {
		messageType, err := contracts.ParseMessageType(entry.Type)
		if err != nil {
			return fmt.Errorf("%w: entry %d: %v", ErrInvalidDefinition, idx, err)
		}
		if entry.Schema == nil {
			return fmt.Errorf("%w: entry %d: missing schema", ErrInvalidDefinition, idx)
		}
		item, err := entry.Schema.Compile()
		if err != nil {
			return fmt.Errorf("entry %d: %w", idx, err)
		}
		if err := r.Register(messageType, entry.Protocol, item); err != nil {
			return fmt.Errorf("entry %d: %w", idx, err)
		}
	}
	return nil
}
