package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Type defines the contract for field value validation. Configuration values
// are raw strings; implementations decide whether a string parses as the type.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "int").
	Name() string
	// Validate checks if a raw value conforms to this type.
	Validate(value string) error
}

// --- Built-in Type Implementations ---

// StringType accepts any value.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value string) error { return nil }

// IntType validates integer values.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Validate(value string) error {
	if _, err := strconv.ParseInt(value, 10, 64); err != nil {
		return fmt.Errorf("expected int, got %q", value)
	}
	return nil
}

// FloatType validates floating-point values.
type FloatType struct{}

func (t *FloatType) Name() string { return "float" }

func (t *FloatType) Validate(value string) error {
	if _, err := strconv.ParseFloat(value, 64); err != nil {
		return fmt.Errorf("expected float, got %q", value)
	}
	return nil
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("expected bool, got %q", value)
	}
	return nil
}

// EnumType validates membership in a fixed option list.
type EnumType struct {
	options []string
}

func (t *EnumType) Name() string {
	return fmt.Sprintf("enum(%s)", strings.Join(t.options, "|"))
}

func (t *EnumType) Validate(value string) error {
	for _, opt := range t.options {
		if value == opt {
			return nil
		}
	}
	return fmt.Errorf("expected one of %s, got %q", strings.Join(t.options, "|"), value)
}

// CustomType applies a user-defined validation function.
type CustomType struct {
	name     string
	validate func(string) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value string) error {
	return t.validate(value)
}

// --- Factory Functions ---

// String creates a string type validator.
func String() Type { return &StringType{} }

// Int creates an integer type validator.
func Int() Type { return &IntType{} }

// Float creates a float type validator.
func Float() Type { return &FloatType{} }

// Bool creates a boolean type validator.
func Bool() Type { return &BoolType{} }

// Enum creates a validator that accepts only the given options.
func Enum(options ...string) Type { return &EnumType{options: options} }

// Custom creates a custom type validator with a user-defined function.
func Custom(name string, validate func(string) error) Type {
	return &CustomType{name: name, validate: validate}
}

// ParseType converts a type name to a Type.
// Supports "string", "int", "float", "bool", and "enum(a|b|c)".
func ParseType(typeStr string) (Type, error) {
	if strings.HasPrefix(typeStr, "enum(") && strings.HasSuffix(typeStr, ")") {
		inner := typeStr[len("enum(") : len(typeStr)-1]
		if inner == "" {
			return nil, fmt.Errorf("enum type needs at least one option")
		}
		return Enum(strings.Split(inner, "|")...), nil
	}

	switch typeStr {
	case "string", "":
		return String(), nil
	case "int":
		return Int(), nil
	case "float":
		return Float(), nil
	case "bool":
		return Bool(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}
