// Package fixtures builds descriptors of a small command hierarchy, shared by tests.
package fixtures

import (
	d "github.com/a-peyrard/godeco/descriptor"
)

// Pkg is the package the fixture types pretend to live in.
const Pkg = "github.com/example/commands"

func name(simple string) string {
	return d.Qualify(Pkg, simple)
}

func run() d.MethodDescriptor {
	return d.MethodDescriptor{Name: "Run", Declaring: name("Command")}
}

func stringMethod(method, declaring string) d.MethodDescriptor {
	return d.MethodDescriptor{
		Name:      method,
		Results:   []d.ResultDescriptor{{Type: d.Builtin("string")}},
		Declaring: name(declaring),
	}
}

// CommandRef references the Command interface.
func CommandRef() *d.TypeRef {
	return d.NamedInterface(Pkg, "Command")
}

// Command is the root interface: Run().
func Command() *d.TypeDescriptor {
	return &d.TypeDescriptor{
		Name:      name("Command"),
		Modifiers: d.Abstract,
		Methods:   []d.MethodDescriptor{run()},
	}
}

// Extending builds an interface embedding Command and declaring the given methods.
func Extending(simple string, methods ...d.MethodDescriptor) *d.TypeDescriptor {
	for i := range methods {
		methods[i].Declaring = name(simple)
	}
	return &d.TypeDescriptor{
		Name:      name(simple),
		Modifiers: d.Abstract,
		Methods:   append([]d.MethodDescriptor{run()}, methods...),
	}
}

// CommandWithHelp adds Help() string.
func CommandWithHelp() *d.TypeDescriptor {
	return Extending("CommandWithHelp", stringMethod("Help", "CommandWithHelp"))
}

// CommandWithDescription adds Description() string.
func CommandWithDescription() *d.TypeDescriptor {
	return Extending("CommandWithDescription", stringMethod("Description", "CommandWithDescription"))
}

// Concrete builds a concrete command implementing Command and the given interfaces.
func Concrete(simple string, interfaces ...*d.TypeDescriptor) *d.TypeDescriptor {
	methods := []d.MethodDescriptor{run()}
	for _, iface := range interfaces {
		for _, m := range iface.Methods {
			if m.Name != "Run" {
				methods = append(methods, m)
			}
		}
	}
	return &d.TypeDescriptor{
		Name: name(simple),
		Constructor: &d.Constructor{
			Function: "New" + simple,
			Pointer:  true,
		},
		Methods:    methods,
		Interfaces: append([]*d.TypeDescriptor{Command()}, interfaces...),
	}
}

// ConcreteCommand only implements Command.
func ConcreteCommand() *d.TypeDescriptor {
	return Concrete("ConcreteCommand")
}

// ConcreteCommandWithTwoInterfaces implements CommandWithHelp and CommandWithDescription.
func ConcreteCommandWithTwoInterfaces() *d.TypeDescriptor {
	return Concrete("ConcreteCommandWithTwoInterfaces", CommandWithHelp(), CommandWithDescription())
}

// DecoratorCommand implements Command and holds one, received as "command".
func DecoratorCommand() *d.TypeDescriptor {
	return Decorator("DecoratorCommand", d.ParameterDescriptor{Name: "command", Type: CommandRef()})
}

// Decorator builds a decorator of Command taking the given constructor parameters.
func Decorator(simple string, params ...d.ParameterDescriptor) *d.TypeDescriptor {
	return &d.TypeDescriptor{
		Name: name(simple),
		Constructor: &d.Constructor{
			Function: "New" + simple,
			Params:   params,
			Pointer:  true,
		},
		Methods:    []d.MethodDescriptor{run()},
		Interfaces: []*d.TypeDescriptor{Command()},
	}
}

// DecoratorCommandWithSubjectAsReference holds a pointer to the decorated command.
func DecoratorCommandWithSubjectAsReference() *d.TypeDescriptor {
	return Decorator(
		"DecoratorCommandWithSubjectAsReference",
		d.ParameterDescriptor{Name: "command", Type: CommandRef(), ByReference: true},
	)
}

// DecoratorCommandWithNullableSubject holds a nullable command.
func DecoratorCommandWithNullableSubject() *d.TypeDescriptor {
	return Decorator(
		"DecoratorCommandWithNullableSubject",
		d.ParameterDescriptor{Name: "command", Type: CommandRef(), Nullable: true},
	)
}

// DecoratorCommandWithMultipleArguments takes a prefix, the command and optional repetitions.
func DecoratorCommandWithMultipleArguments() *d.TypeDescriptor {
	return Decorator(
		"DecoratorCommandWithMultipleArguments",
		d.ParameterDescriptor{Name: "prefix", Type: d.Builtin("string")},
		d.ParameterDescriptor{Name: "command", Type: CommandRef()},
		d.ParameterDescriptor{Name: "times", Type: d.Builtin("int"), Default: d.Literal(1)},
	)
}

// WithModifiers returns the type with the given modifiers set.
func WithModifiers(typ *d.TypeDescriptor, modifiers d.Modifiers) *d.TypeDescriptor {
	typ.Modifiers |= modifiers
	return typ
}

// ConcreteWithFoo builds a concrete command implementing an interface "<simple>"
// declaring the given Foo method.
func ConcreteWithFoo(simple string, foo d.MethodDescriptor) *d.TypeDescriptor {
	foo.Name = "Foo"
	return Concrete("Concrete"+simple, Extending(simple, foo))
}

// ConcreteCommandWithVariadicArgument declares Foo(items ...string).
func ConcreteCommandWithVariadicArgument() *d.TypeDescriptor {
	return ConcreteWithFoo("CommandWithVariadicArgument", d.MethodDescriptor{
		Params: []d.ParameterDescriptor{{Name: "items", Type: d.Builtin("string"), Variadic: true}},
	})
}

// ConcreteCommandWithNullableReturn declares Foo() *int.
func ConcreteCommandWithNullableReturn() *d.TypeDescriptor {
	return ConcreteWithFoo("CommandWithNullableReturn", d.MethodDescriptor{
		Results: []d.ResultDescriptor{{Type: d.Builtin("int"), Nullable: true}},
	})
}

// ConcreteCommandWithNullableArgument declares Foo(foo *string).
func ConcreteCommandWithNullableArgument() *d.TypeDescriptor {
	return ConcreteWithFoo("CommandWithNullableArgument", d.MethodDescriptor{
		Params: []d.ParameterDescriptor{{Name: "foo", Type: d.Builtin("string"), Nullable: true}},
	})
}

// ConcreteCommandWithArgumentAsReference declares Foo(foo *string), passed by reference.
func ConcreteCommandWithArgumentAsReference() *d.TypeDescriptor {
	return ConcreteWithFoo("CommandWithArgumentAsReference", d.MethodDescriptor{
		Params: []d.ParameterDescriptor{{Name: "foo", Type: d.Builtin("string"), ByReference: true}},
	})
}

// ConcreteCommandWithDefaultValueAsString declares Foo(foo string = "bar").
func ConcreteCommandWithDefaultValueAsString() *d.TypeDescriptor {
	return ConcreteWithFoo("CommandWithDefaultValueAsString", d.MethodDescriptor{
		Params: []d.ParameterDescriptor{{Name: "foo", Type: d.Builtin("string"), Default: d.Literal("bar")}},
	})
}

// ConcreteCommandWithDefaultValueAsConstant declares Foo(max int = math.MaxInt).
func ConcreteCommandWithDefaultValueAsConstant() *d.TypeDescriptor {
	return ConcreteWithFoo("CommandWithDefaultValueAsConstant", d.MethodDescriptor{
		Params: []d.ParameterDescriptor{{Name: "max", Type: d.Builtin("int"), Default: d.Constant("math", "MaxInt")}},
	})
}

// ConcreteCommandWithDefaultValueAsSelfConstant declares Foo(const int = FooConstant).
func ConcreteCommandWithDefaultValueAsSelfConstant() *d.TypeDescriptor {
	return ConcreteWithFoo("CommandWithDefaultValueAsSelfConstant", d.MethodDescriptor{
		Params: []d.ParameterDescriptor{{Name: "const", Type: d.Builtin("int"), Default: d.RelativeConstant("FooConstant")}},
	})
}

// ConcreteCommandWithDefaultValueAsClassConstant declares Foo(const int = Other.BarConstant).
func ConcreteCommandWithDefaultValueAsClassConstant() *d.TypeDescriptor {
	return ConcreteWithFoo("CommandWithDefaultValueAsClassConstant", d.MethodDescriptor{
		Params: []d.ParameterDescriptor{{Name: "const", Type: d.Builtin("int"), Default: d.ClassConstant(Pkg, "Other", "BarConstant")}},
	})
}

// ConcreteCommandWithStaticMethod declares a static Foo() method.
func ConcreteCommandWithStaticMethod() *d.TypeDescriptor {
	return ConcreteWithFoo("CommandWithStaticMethod", d.MethodDescriptor{Static: true})
}
