package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// Generator derives schema items from Go types by reflection, following the
// field naming rules of encoding/json.
type Generator struct {
	// Track struct types on the current path to reject recursive types
	seen map[reflect.Type]bool
}

// NewGenerator creates a new schema generator
func NewGenerator() *Generator {
	return &Generator{
		seen: make(map[reflect.Type]bool),
	}
}

// Generate derives a schema item from the type of v
func Generate(v interface{}) (*Item, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: nil value", ErrUnsupportedType)
	}
	return NewGenerator().FromType(reflect.TypeOf(v))
}

// MustGenerate is like Generate but panics on error. Intended for
// package-level schema definitions.
func MustGenerate(v interface{}) *Item {
	item, err := Generate(v)
	if err != nil {
		panic(err)
	}
	return item
}

// FromType derives a schema item from a Go type
func (g *Generator) FromType(t reflect.Type) (*Item, error) {
	g.seen = make(map[reflect.Type]bool) // Reset for each generation

	item, err := g.generate(t, "$")
	if err != nil {
		return nil, err
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// generate recursively generates an item for a type
func (g *Generator) generate(t reflect.Type, path string) (*Item, error) {
	// Handle pointers
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return String(), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Integer(), nil

	case reflect.Float32, reflect.Float64:
		return Number(), nil

	case reflect.Bool:
		return Boolean(), nil

	case reflect.Slice, reflect.Array:
		// encoding/json writes byte slices as base64 strings
		if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
			return String(), nil
		}
		elem, err := g.generate(t.Elem(), path+"[]")
		if err != nil {
			return nil, err
		}
		return ArrayOf(elem), nil

	case reflect.Struct:
		if g.seen[t] {
			return nil, fmt.Errorf("%w: %s: recursive type %v", ErrUnsupportedType, path, t)
		}
		g.seen[t] = true
		defer delete(g.seen, t)

		props := make(map[string]*Item)
		if err := g.collectFields(t, path, props); err != nil {
			return nil, err
		}
		return Object(props), nil

	default:
		// Maps and interfaces have no fixed property set, so they cannot be
		// encoded positionally
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedType, path, t)
	}
}

func (g *Generator) collectFields(t reflect.Type, path string, props map[string]*Item) error {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		name, _, _ := strings.Cut(jsonTag, ",")

		// Embedded structs without a name are flattened like encoding/json does
		if field.Anonymous && name == "" {
			ft := field.Type
			for ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				if err := g.collectFields(ft, path, props); err != nil {
					return err
				}
				continue
			}
		}

		// Skip unexported fields
		if field.PkgPath != "" {
			continue
		}

		if name == "" {
			name = field.Name
		}

		item, err := g.generate(field.Type, path+"."+name)
		if err != nil {
			return err
		}
		props[name] = item
	}
	return nil
}
