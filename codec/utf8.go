package codec

import (
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"
)

// maxUTF8Depth stops the walk on self-referencing values; json.Marshal
// reports those cycles itself.
const maxUTF8Depth = 512

// checkUTF8 rejects strings that are not valid UTF-8 anywhere in value.
// It runs before Normalize because json.Marshal silently replaces invalid
// bytes with U+FFFD.
func checkUTF8(key string, value interface{}) error {
	if value == nil {
		return nil
	}
	return walkUTF8(key, reflect.ValueOf(value), 0)
}

func walkUTF8(key string, v reflect.Value, depth int) error {
	if depth > maxUTF8Depth {
		return nil
	}

	switch v.Kind() {
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		return walkUTF8(key, v.Elem(), depth+1)

	case reflect.String:
		if s := v.String(); !utf8.ValidString(s) {
			return &StringFramingError{Key: key, Value: s, Reason: errInvalidUTF8.Error()}
		}

	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return nil
		}
		for i := 0; i < v.Len(); i++ {
			if err := walkUTF8(elementKey(key, i), v.Index(i), depth+1); err != nil {
				return err
			}
		}

	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			name := fmt.Sprint(iter.Key().Interface())
			if iter.Key().Kind() == reflect.String && !utf8.ValidString(name) {
				return &StringFramingError{Key: key, Value: name, Reason: errInvalidUTF8.Error()}
			}
			if err := walkUTF8(name, iter.Value(), depth+1); err != nil {
				return err
			}
		}

	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			name := field.Name
			if tag, ok := field.Tag.Lookup("json"); ok {
				tagName, _, _ := strings.Cut(tag, ",")
				if tagName == "-" {
					continue
				}
				if tagName != "" {
					name = tagName
				}
			}
			if err := walkUTF8(name, v.Field(i), depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}
