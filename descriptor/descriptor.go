// Package descriptor holds the read-only shape of the types godeco inspects.
//
// Descriptors are produced by a metadata facility (see the metadata package) and
// consumed by the synthesis engine. They never point back at go/types objects, so a
// descriptor table loaded from YAML and a scanned Go package look exactly the same.
package descriptor

import "fmt"

// Modifiers flags the properties preventing a type from taking part in a proxy.
type Modifiers uint8

const (
	Final Modifiers = 1 << iota
	Abstract
	Anonymous
)

// Has tells if all the given flags are set.
func (m Modifiers) Has(flags Modifiers) bool {
	return m&flags == flags
}

type (
	// TypeDescriptor describes a named type: its constructor, its methods and the
	// interface contracts it satisfies.
	TypeDescriptor struct {
		// Name is the qualified name, e.g. "github.com/example/cmd.Command".
		Name      string
		Modifiers Modifiers

		// Constructor is nil when the type has none.
		Constructor *Constructor
		Methods     []MethodDescriptor

		// Interfaces in declaration order. Each one exposes its own methods.
		Interfaces []*TypeDescriptor
	}

	// Constructor is the function building a value of the described type.
	Constructor struct {
		// Function is the function name, declared in the same package as the type.
		Function string                `yaml:"function"`
		Params   []ParameterDescriptor `yaml:"params,omitempty"`
		// Pointer is set when the constructor returns *T rather than T.
		Pointer bool `yaml:"pointer,omitempty"`
		// Fallible is set when the constructor also returns an error.
		Fallible bool `yaml:"fallible,omitempty"`
	}

	// MethodDescriptor describes a method of a type or of an interface.
	MethodDescriptor struct {
		Name             string                `yaml:"name"`
		Static           bool                  `yaml:"static,omitempty"`
		Params           []ParameterDescriptor `yaml:"params,omitempty"`
		Results          []ResultDescriptor    `yaml:"results,omitempty"`
		ReturnsReference bool                  `yaml:"returnsReference,omitempty"`

		// Declaring is the qualified name of the type declaring the method, when known.
		Declaring string `yaml:"declaring,omitempty"`
	}

	// ResultDescriptor is one declared result of a method.
	ResultDescriptor struct {
		// Type is nil for an untyped result.
		Type     *TypeRef `yaml:"type,omitempty"`
		Nullable bool     `yaml:"nullable,omitempty"`
	}

	// ParameterDescriptor describes a parameter of a method or a constructor.
	ParameterDescriptor struct {
		Name string `yaml:"name"`
		// Type is nil for an untyped parameter.
		Type        *TypeRef      `yaml:"type,omitempty"`
		Nullable    bool          `yaml:"nullable,omitempty"`
		ByReference bool          `yaml:"byReference,omitempty"`
		Variadic    bool          `yaml:"variadic,omitempty"`
		Default     *DefaultValue `yaml:"default,omitempty"`
	}
)

// IsFinal tells if the type refuses to be used as an embedded base.
func (t *TypeDescriptor) IsFinal() bool { return t.Modifiers.Has(Final) }

// IsAbstract tells if the type cannot be instantiated.
func (t *TypeDescriptor) IsAbstract() bool { return t.Modifiers.Has(Abstract) }

// IsAnonymous tells if the type has no name of its own.
func (t *TypeDescriptor) IsAnonymous() bool { return t.Modifiers.Has(Anonymous) }

// Package returns the import path of the type, empty for an unqualified name.
func (t *TypeDescriptor) Package() string {
	pkg, _ := SplitQualified(t.Name)
	return pkg
}

// SimpleName returns the name of the type without its package.
func (t *TypeDescriptor) SimpleName() string {
	_, name := SplitQualified(t.Name)
	return name
}

// HasMethod tells if the type declares a method with the given name.
func (t *TypeDescriptor) HasMethod(name string) bool {
	for _, m := range t.Methods {
		if m.Name == name {
			return true
		}
	}
	return false
}

// ConstructorParams returns the constructor parameters, nil without constructor.
func (t *TypeDescriptor) ConstructorParams() []ParameterDescriptor {
	if t.Constructor == nil {
		return nil
	}
	return t.Constructor.Params
}

func (t *TypeDescriptor) String() string {
	return t.Name
}

// HasReturnType tells if the method declares at least one result.
func (m MethodDescriptor) HasReturnType() bool {
	return len(m.Results) > 0
}

func (m MethodDescriptor) String() string {
	return fmt.Sprintf("%s(%d params, %d results)", m.Name, len(m.Params), len(m.Results))
}

// HasDefault tells if the parameter declares a default value.
func (p ParameterDescriptor) HasDefault() bool {
	return p.Default != nil
}
