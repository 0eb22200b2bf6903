package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Definition is the subset of JSON Schema used to describe payloads in data
// files. Tuples use prefixItems.
type Definition struct {
	Ref         string                 `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Type        string                 `json:"type,omitempty" yaml:"type,omitempty"`
	Description string                 `json:"description,omitempty" yaml:"description,omitempty"`
	Items       *Definition            `json:"items,omitempty" yaml:"items,omitempty"`
	PrefixItems []*Definition          `json:"prefixItems,omitempty" yaml:"prefixItems,omitempty"`
	Properties  map[string]*Definition `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required    []string               `json:"required,omitempty" yaml:"required,omitempty"`
	Definitions map[string]*Definition `json:"definitions,omitempty" yaml:"definitions,omitempty"`
}

const definitionsPrefix = "#/definitions/"

// ParseJSON parses a JSON schema document
func ParseJSON(data []byte) (*Definition, error) {
	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	return &def, nil
}

// ParseYAML parses a schema document written in YAML
func ParseYAML(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	return &def, nil
}

// Compile resolves references and converts the definition into an Item
func (d *Definition) Compile() (*Item, error) {
	c := &compiler{
		root:     d,
		visiting: make(map[string]bool),
	}
	item, err := c.compile("$", d)
	if err != nil {
		return nil, err
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

type compiler struct {
	root     *Definition
	visiting map[string]bool
}

func (c *compiler) compile(path string, d *Definition) (*Item, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: %s: empty definition", ErrInvalidDefinition, path)
	}

	if d.Ref != "" {
		return c.resolveRef(path, d.Ref)
	}

	kind, err := ParseKind(d.Type)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	switch kind {
	case KindArray:
		if d.Items != nil && len(d.PrefixItems) > 0 {
			return nil, fmt.Errorf("%w: %s: items and prefixItems are exclusive", ErrInvalidDefinition, path)
		}
		if d.Items != nil {
			item, err := c.compile(path+"[]", d.Items)
			if err != nil {
				return nil, err
			}
			return ArrayOf(item), nil
		}
		tuple := make([]*Item, 0, len(d.PrefixItems))
		for idx, prefix := range d.PrefixItems {
			item, err := c.compile(fmt.Sprintf("%s[%d]", path, idx), prefix)
			if err != nil {
				return nil, err
			}
			tuple = append(tuple, item)
		}
		return Tuple(tuple...), nil

	case KindObject:
		props := make(map[string]*Item, len(d.Properties))
		for name, prop := range d.Properties {
			item, err := c.compile(path+"."+name, prop)
			if err != nil {
				return nil, err
			}
			props[name] = item
		}
		for _, name := range d.Required {
			if _, ok := d.Properties[name]; !ok {
				return nil, fmt.Errorf("%w: %s: required property %q is not defined", ErrInvalidDefinition, path, name)
			}
		}
		return Object(props), nil

	default:
		return &Item{Kind: kind}, nil
	}
}

func (c *compiler) resolveRef(path, ref string) (*Item, error) {
	if !strings.HasPrefix(ref, definitionsPrefix) {
		return nil, fmt.Errorf("%w: %s: unsupported reference %q", ErrInvalidDefinition, path, ref)
	}
	name := strings.TrimPrefix(ref, definitionsPrefix)
	target, ok := c.root.Definitions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s: reference %q not found", ErrInvalidDefinition, path, ref)
	}
	if c.visiting[name] {
		return nil, fmt.Errorf("%w: %s: recursive reference %q", ErrInvalidDefinition, path, ref)
	}
	c.visiting[name] = true
	defer delete(c.visiting, name)
	return c.compile(path, target)
}

// Describe converts an item back into a Definition, for printing
func Describe(item *Item) *Definition {
	if item == nil {
		return nil
	}
	def := &Definition{Type: item.Kind.String()}
	switch item.Kind {
	case KindArray:
		if item.Items != nil {
			def.Items = Describe(item.Items)
		} else {
			for _, t := range item.Tuple {
				def.PrefixItems = append(def.PrefixItems, Describe(t))
			}
		}
	case KindObject:
		def.Properties = make(map[string]*Definition, len(item.Properties))
		for _, name := range item.PropertyNames() {
			def.Properties[name] = Describe(item.Properties[name])
			if item.Properties[name].Kind != KindNull {
				def.Required = append(def.Required, name)
			}
		}
	}
	return def
}
