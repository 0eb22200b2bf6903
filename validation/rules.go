package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/glimte/iac-go/codec"
)

// PropertyDef defines validation rules for a payload property
type PropertyDef struct {
	Type       string                  `json:"type,omitempty" yaml:"type,omitempty"`
	Pattern    string                  `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	MinLength  *int                    `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength  *int                    `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Minimum    *float64                `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum    *float64                `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	Enum       []interface{}           `json:"enum,omitempty" yaml:"enum,omitempty"`
	Items      *PropertyDef            `json:"items,omitempty" yaml:"items,omitempty"`
	Properties map[string]*PropertyDef `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required   []string                `json:"required,omitempty" yaml:"required,omitempty"`
}

// ValidationRule is a custom check run against the whole payload
type ValidationRule interface {
	Validate(ctx context.Context, field string, value interface{}) *ValidationError
	Name() string
}

// RuleFunc adapts a function to ValidationRule
type RuleFunc func(ctx context.Context, field string, value interface{}) *ValidationError

func (f RuleFunc) Validate(ctx context.Context, field string, value interface{}) *ValidationError {
	return f(ctx, field, value)
}

func (f RuleFunc) Name() string {
	return "anonymous"
}

// RuleSet describes one payload shape
type RuleSet struct {
	Properties map[string]*PropertyDef `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required   []string                `json:"required,omitempty" yaml:"required,omitempty"`
	Rules      []ValidationRule        `json:"-" yaml:"-"`
}

// RuleValidator validates payloads against declarative rule sets. A nil rule
// set accepts anything.
type RuleValidator struct {
	unsigned *RuleSet
	signed   *RuleSet
	patterns map[string]*regexp.Regexp
}

// NewRuleValidator compiles the patterns of both rule sets
func NewRuleValidator(unsigned, signed *RuleSet) (*RuleValidator, error) {
	v := &RuleValidator{
		unsigned: unsigned,
		signed:   signed,
		patterns: make(map[string]*regexp.Regexp),
	}
	for _, set := range []*RuleSet{unsigned, signed} {
		if set == nil {
			continue
		}
		for _, prop := range set.Properties {
			if err := v.compile(prop); err != nil {
				return nil, err
			}
		}
	}
	return v, nil
}

// MustRuleValidator is like NewRuleValidator but panics on error
func MustRuleValidator(unsigned, signed *RuleSet) *RuleValidator {
	v, err := NewRuleValidator(unsigned, signed)
	if err != nil {
		panic(err)
	}
	return v
}

func (v *RuleValidator) compile(prop *PropertyDef) error {
	if prop == nil {
		return nil
	}
	if prop.Pattern != "" {
		if _, done := v.patterns[prop.Pattern]; !done {
			re, err := regexp.Compile(prop.Pattern)
			if err != nil {
				return fmt.Errorf("%w: pattern %q: %w", ErrInvalidRule, prop.Pattern, err)
			}
			v.patterns[prop.Pattern] = re
		}
	}
	if err := v.compile(prop.Items); err != nil {
		return err
	}
	for _, child := range prop.Properties {
		if err := v.compile(child); err != nil {
			return err
		}
	}
	return nil
}

func (v *RuleValidator) ValidateUnsigned(ctx context.Context, payload interface{}) []ValidationError {
	return v.validate(ctx, v.unsigned, payload)
}

func (v *RuleValidator) ValidateSigned(ctx context.Context, payload interface{}) []ValidationError {
	return v.validate(ctx, v.signed, payload)
}

func (v *RuleValidator) validate(ctx context.Context, set *RuleSet, payload interface{}) []ValidationError {
	if set == nil {
		return nil
	}

	data, errs := toObject(payload)
	if errs != nil {
		return errs
	}

	var result []ValidationError
	v.validateObject("", data, set.Properties, set.Required, &result)

	for _, rule := range set.Rules {
		if err := rule.Validate(ctx, "payload", data); err != nil {
			result = append(result, *err)
		}
	}
	return result
}

// toObject normalizes the payload into the JSON value model
func toObject(payload interface{}) (map[string]interface{}, []ValidationError) {
	normalized, err := codec.Normalize(payload)
	if err != nil {
		return nil, []ValidationError{{
			Field:   "payload",
			Message: fmt.Sprintf("failed to read payload: %v", err),
			Code:    CodeConversion,
		}}
	}
	data, ok := normalized.(map[string]interface{})
	if !ok {
		return nil, []ValidationError{{
			Field:   "payload",
			Message: fmt.Sprintf("expected an object, got %T", normalized),
			Code:    CodeTypeMismatch,
			Value:   normalized,
		}}
	}
	return data, nil
}

func (v *RuleValidator) validateObject(path string, data map[string]interface{}, props map[string]*PropertyDef, required []string, result *[]ValidationError) {
	for _, name := range required {
		if value, exists := data[name]; !exists || value == nil {
			*result = append(*result, ValidationError{
				Field:   fieldPath(path, name),
				Message: "required field is missing",
				Code:    CodeRequired,
			})
		}
	}

	for name, prop := range props {
		if value, exists := data[name]; exists {
			v.validateProperty(fieldPath(path, name), value, prop, result)
		}
	}
}

func (v *RuleValidator) validateProperty(path string, value interface{}, prop *PropertyDef, result *[]ValidationError) {
	if value == nil || prop == nil {
		return
	}

	if prop.Type != "" && !matchesType(value, prop.Type) {
		*result = append(*result, ValidationError{
			Field:   path,
			Message: fmt.Sprintf("expected type %s, got %T", prop.Type, value),
			Code:    CodeTypeMismatch,
			Value:   value,
		})
		return
	}

	switch val := value.(type) {
	case string:
		v.validateString(path, val, prop, result)
	case json.Number:
		validateNumber(path, val, prop, result)
	case []interface{}:
		for i, item := range val {
			v.validateProperty(fmt.Sprintf("%s[%d]", path, i), item, prop.Items, result)
		}
	case map[string]interface{}:
		if prop.Properties != nil {
			v.validateObject(path, val, prop.Properties, prop.Required, result)
		}
	}

	if len(prop.Enum) > 0 {
		validateEnum(path, value, prop.Enum, result)
	}
}

func matchesType(value interface{}, expected string) bool {
	switch expected {
	case "string":
		_, ok := value.(string)
		return ok
	case "number":
		_, ok := value.(json.Number)
		return ok
	case "integer":
		n, ok := value.(json.Number)
		if !ok {
			return false
		}
		_, err := n.Int64()
		return err == nil || !strings.ContainsAny(string(n), ".eE")
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "array":
		_, ok := value.([]interface{})
		return ok
	case "object":
		_, ok := value.(map[string]interface{})
		return ok
	default:
		// Unknown types pass validation
		return true
	}
}

func (v *RuleValidator) validateString(path, value string, prop *PropertyDef, result *[]ValidationError) {
	if prop.MinLength != nil && len(value) < *prop.MinLength {
		*result = append(*result, ValidationError{
			Field:   path,
			Message: fmt.Sprintf("string length %d is less than minimum %d", len(value), *prop.MinLength),
			Code:    CodeMinLength,
			Value:   value,
		})
	}
	if prop.MaxLength != nil && len(value) > *prop.MaxLength {
		*result = append(*result, ValidationError{
			Field:   path,
			Message: fmt.Sprintf("string length %d exceeds maximum %d", len(value), *prop.MaxLength),
			Code:    CodeMaxLength,
			Value:   value,
		})
	}
	if prop.Pattern != "" {
		if re := v.patterns[prop.Pattern]; re != nil && !re.MatchString(value) {
			*result = append(*result, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("value does not match pattern: %s", prop.Pattern),
				Code:    CodePattern,
				Value:   value,
			})
		}
	}
}

func validateNumber(path string, value json.Number, prop *PropertyDef, result *[]ValidationError) {
	f, err := value.Float64()
	if err != nil {
		return
	}
	if prop.Minimum != nil && f < *prop.Minimum {
		*result = append(*result, ValidationError{
			Field:   path,
			Message: fmt.Sprintf("value %s is less than minimum %v", value, *prop.Minimum),
			Code:    CodeMinimum,
			Value:   value,
		})
	}
	if prop.Maximum != nil && f > *prop.Maximum {
		*result = append(*result, ValidationError{
			Field:   path,
			Message: fmt.Sprintf("value %s exceeds maximum %v", value, *prop.Maximum),
			Code:    CodeMaximum,
			Value:   value,
		})
	}
}

func validateEnum(path string, value interface{}, enum []interface{}, result *[]ValidationError) {
	for _, allowed := range enum {
		normalized, err := codec.Normalize(allowed)
		if err == nil && reflect.DeepEqual(value, normalized) {
			return
		}
	}
	*result = append(*result, ValidationError{
		Field:   path,
		Message: fmt.Sprintf("value is not in allowed enum values: %v", enum),
		Code:    CodeEnum,
		Value:   value,
	})
}

func fieldPath(parent, field string) string {
	if parent == "" {
		return field
	}
	return parent + "." + field
}
