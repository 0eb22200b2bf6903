package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Kind is the structural kind of a schema item
type Kind uint8

const (
	KindString Kind = iota + 1
	KindNumber
	KindInteger
	KindBoolean
	KindNull
	KindArray
	KindObject
)

var kindNames = map[Kind]string{
	KindString:  "string",
	KindNumber:  "number",
	KindInteger: "integer",
	KindBoolean: "boolean",
	KindNull:    "null",
	KindArray:   "array",
	KindObject:  "object",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(k))
}

// ParseKind converts a JSON-schema type name to a Kind
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown type %q", ErrInvalidDefinition, name)
}

// Item describes the shape of a payload value. An ARRAY item carries either
// Items (homogeneous) or Tuple (positional); an OBJECT item carries Properties.
// Items are immutable once registered.
type Item struct {
	Kind       Kind
	Items      *Item
	Tuple      []*Item
	Properties map[string]*Item

	names []string
}

func String() *Item  { return &Item{Kind: KindString} }
func Number() *Item  { return &Item{Kind: KindNumber} }
func Integer() *Item { return &Item{Kind: KindInteger} }
func Boolean() *Item { return &Item{Kind: KindBoolean} }
func Null() *Item    { return &Item{Kind: KindNull} }

// ArrayOf describes a homogeneous array
func ArrayOf(item *Item) *Item {
	return &Item{Kind: KindArray, Items: item}
}

// Tuple describes a fixed-length array with one item per position
func Tuple(items ...*Item) *Item {
	return &Item{Kind: KindArray, Tuple: items}
}

// Object describes an object with a fixed set of properties
func Object(properties map[string]*Item) *Item {
	if properties == nil {
		properties = map[string]*Item{}
	}
	return &Item{Kind: KindObject, Properties: properties}
}

// IsTuple reports whether an ARRAY item is positional
func (i *Item) IsTuple() bool {
	return i.Kind == KindArray && i.Items == nil
}

// PropertyNames returns the object's property names in wire order
// (lexicographic). The wire form is positional, so this order is part of the
// protocol.
func (i *Item) PropertyNames() []string {
	if i.names != nil && len(i.names) == len(i.Properties) {
		return i.names
	}
	names := make([]string, 0, len(i.Properties))
	for name := range i.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the item tree for structural consistency and caches the
// property order of every object.
func (i *Item) Validate() error {
	return i.validate("$")
}

func (i *Item) validate(path string) error {
	if i == nil {
		return fmt.Errorf("%w: %s: missing item", ErrInvalidDefinition, path)
	}
	switch i.Kind {
	case KindString, KindNumber, KindInteger, KindBoolean, KindNull:
		return nil
	case KindArray:
		if i.Items != nil && i.Tuple != nil {
			return fmt.Errorf("%w: %s: array has both items and tuple", ErrInvalidDefinition, path)
		}
		if i.Items != nil {
			return i.Items.validate(path + "[]")
		}
		for idx, item := range i.Tuple {
			if err := item.validate(fmt.Sprintf("%s[%d]", path, idx)); err != nil {
				return err
			}
		}
		return nil
	case KindObject:
		if i.names == nil {
			i.names = i.PropertyNames()
		}
		for _, name := range i.names {
			if err := i.Properties[name].validate(path + "." + name); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %s: unknown kind %d", ErrInvalidDefinition, path, i.Kind)
	}
}

// Equal reports whether two items describe the same shape
func (i *Item) Equal(other *Item) bool {
	if i == nil || other == nil {
		return i == other
	}
	if i.Kind != other.Kind {
		return false
	}
	switch i.Kind {
	case KindArray:
		if (i.Items == nil) != (other.Items == nil) {
			return false
		}
		if i.Items != nil {
			return i.Items.Equal(other.Items)
		}
		if len(i.Tuple) != len(other.Tuple) {
			return false
		}
		for idx := range i.Tuple {
			if !i.Tuple[idx].Equal(other.Tuple[idx]) {
				return false
			}
		}
	case KindObject:
		if len(i.Properties) != len(other.Properties) {
			return false
		}
		for name, prop := range i.Properties {
			if !prop.Equal(other.Properties[name]) {
				return false
			}
		}
	}
	return true
}

// String renders the item in a compact, deterministic notation such as
// {a:string,b:[integer]}
func (i *Item) String() string {
	var b strings.Builder
	i.write(&b)
	return b.String()
}

func (i *Item) write(b *strings.Builder) {
	if i == nil {
		b.WriteString("<nil>")
		return
	}
	switch i.Kind {
	case KindArray:
		b.WriteByte('[')
		if i.Items != nil {
			i.Items.write(b)
		} else {
			for idx, item := range i.Tuple {
				if idx > 0 {
					b.WriteByte(',')
				}
				item.write(b)
			}
			b.WriteString(";tuple")
		}
		b.WriteByte(']')
	case KindObject:
		b.WriteByte('{')
		for idx, name := range i.PropertyNames() {
			if idx > 0 {
				b.WriteByte(',')
			}
			b.WriteString(name)
			b.WriteByte(':')
			i.Properties[name].write(b)
		}
		b.WriteByte('}')
	default:
		b.WriteString(i.Kind.String())
	}
}
