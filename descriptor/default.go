package descriptor

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DefaultKind tells how a default value is expressed.
type DefaultKind uint8

const (
	// DefaultLiteral is a plain value: bool, number, string, nil or a collection of those.
	DefaultLiteral DefaultKind = iota
	// DefaultConstant refers to a symbolic constant, relative to the declaring type or absolute.
	DefaultConstant
	// DefaultClassConstant refers to a constant scoped to another type.
	DefaultClassConstant
)

var defaultKindNames = map[DefaultKind]string{
	DefaultLiteral:       "literal",
	DefaultConstant:      "constant",
	DefaultClassConstant: "classConstant",
}

func (k DefaultKind) String() string {
	if name, ok := defaultKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("DefaultKind(%d)", uint8(k))
}

func (k DefaultKind) MarshalYAML() (any, error) {
	return k.String(), nil
}

func (k *DefaultKind) UnmarshalYAML(value *yaml.Node) error {
	for kind, name := range defaultKindNames {
		if name == value.Value {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown default kind %q", value.Line, value.Value)
}

// DefaultValue is the default of an optional parameter.
type DefaultValue struct {
	Kind DefaultKind `yaml:"kind"`

	// Value holds the literal, for DefaultLiteral.
	Value any `yaml:"value"`

	// Name is the constant name, for DefaultConstant and DefaultClassConstant.
	Name string `yaml:"name,omitempty"`
	// Relative marks a constant resolved against the declaring type itself.
	Relative bool `yaml:"relative,omitempty"`
	// Package is the import path owning an absolute constant or the class.
	Package string `yaml:"package,omitempty"`
	// Class is the type scoping a DefaultClassConstant.
	Class string `yaml:"class,omitempty"`
}

// Literal creates a literal default value.
func Literal(value any) *DefaultValue {
	return &DefaultValue{Kind: DefaultLiteral, Value: value}
}

// RelativeConstant creates a default referring to a constant of the declaring type.
func RelativeConstant(name string) *DefaultValue {
	return &DefaultValue{Kind: DefaultConstant, Name: name, Relative: true}
}

// Constant creates a default referring to a package level constant.
func Constant(pkg, name string) *DefaultValue {
	return &DefaultValue{Kind: DefaultConstant, Package: pkg, Name: name}
}

// ClassConstant creates a default referring to a constant scoped to a type.
func ClassConstant(pkg, class, name string) *DefaultValue {
	return &DefaultValue{Kind: DefaultClassConstant, Package: pkg, Class: class, Name: name}
}
