package synth

import (
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/a-peyrard/godeco/descriptor"
	"github.com/a-peyrard/godeco/errdefs"
	"github.com/a-peyrard/godeco/identity"
	"github.com/a-peyrard/godeco/internal/fixtures"
	"github.com/a-peyrard/godeco/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const proxies = "github.com/example/proxies"

func proxyName(t *testing.T, decorator, subject *descriptor.TypeDescriptor, argument string) string {
	t.Helper()
	name, err := identity.Encode(decorator.Name, subject.Name, argument)
	require.NoError(t, err)
	return descriptor.Qualify(proxies, name)
}

func synthesize(t *testing.T, decorator, subject *descriptor.TypeDescriptor, opts ...option.Option[Options]) *Source {
	t.Helper()
	source, err := Synthesize(proxyName(t, decorator, subject, "command"), decorator, subject, opts...)
	require.NoError(t, err)
	assertParses(t, source.Text)
	return source
}

func assertParses(t *testing.T, text string) {
	t.Helper()
	_, err := parser.ParseFile(token.NewFileSet(), "proxy.go", text, parser.ParseComments)
	require.NoError(t, err, text)
}

// normalize collapses whitespace, formatting details are not under test.
func normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func TestSynthesize(t *testing.T) {
	t.Run("it should forward the methods the decorator does not implement", func(t *testing.T) {
		// GIVEN
		decorator := fixtures.DecoratorCommand()
		subject := fixtures.Concrete("ConcreteCommandWithHelp", fixtures.CommandWithHelp())

		// WHEN
		source := synthesize(t, decorator, subject)

		// THEN
		expected := `
// Code generated by godeco. DO NOT EDIT.

package proxies

import (
	commands "github.com/example/commands"
)

// NAME is github.com/example/commands.DecoratorCommand forwarding to command the methods of
// github.com/example/commands.ConcreteCommandWithHelp it does not implement.
type NAME struct {
	*commands.DecoratorCommand
	command commands.Command
}

var (
	_ commands.CommandWithHelp = (*NAME)(nil)
)

func NewNAME(command commands.Command) *NAME {
	return &NAME{
		DecoratorCommand: commands.NewDecoratorCommand(command),
		command: command,
	}
}

func (p *NAME) Help() string {
	return any(p.command).(commands.CommandWithHelp).Help()
}
`
		assert.Equal(t, normalize(strings.ReplaceAll(expected, "NAME", source.Name)), normalize(source.Text))
		assert.Equal(t, "proxies", source.Package)
		assert.Equal(t, proxies, source.PackagePath)
		assert.Equal(t, decorator.Name, source.Identity.Decorator)
		assert.Equal(t, subject.Name, source.Identity.Subject)
		assert.Equal(t, "command", source.Identity.Argument)
		assert.Equal(t, proxies+"."+source.Name, source.Qualified())
		assert.Equal(t, FileName(source.Name), source.FileName())
		assert.True(t, strings.HasPrefix(source.FileName(), "generated_proxy_"))
	})

	t.Run("it should implement every missing interface, in the subject order", func(t *testing.T) {
		// GIVEN
		decorator := fixtures.DecoratorCommand()
		subject := fixtures.ConcreteCommandWithTwoInterfaces()

		// WHEN
		source := synthesize(t, decorator, subject)

		// THEN
		text := normalize(source.Text)
		help := strings.Index(text, "_ commands.CommandWithHelp = (*"+source.Name+")(nil)")
		description := strings.Index(text, "_ commands.CommandWithDescription = (*"+source.Name+")(nil)")
		assert.True(t, help >= 0 && description > help, source.Text)
		helpMethod := strings.Index(text, ") Help() string {")
		descriptionMethod := strings.Index(text, ") Description() string {")
		assert.True(t, helpMethod >= 0 && descriptionMethod > helpMethod, source.Text)
		assert.NotContains(t, text, ") Run(")
	})

	t.Run("it should not add anything when the decorator covers the subject", func(t *testing.T) {
		// GIVEN
		decorator := fixtures.DecoratorCommand()
		subject := fixtures.ConcreteCommand()

		// WHEN
		source := synthesize(t, decorator, subject)

		// THEN
		assert.NotContains(t, source.Text, "var (")
		assert.NotContains(t, source.Text, "func (p *")
	})

	t.Run("it should spread variadic arguments", func(t *testing.T) {
		// GIVEN
		decorator := fixtures.DecoratorCommand()
		subject := fixtures.ConcreteCommandWithVariadicArgument()

		// WHEN
		source := synthesize(t, decorator, subject)

		// THEN
		text := normalize(source.Text)
		assert.Contains(t, text, ") Foo(items ...string) {")
		assert.Contains(t, text, "any(p.command).(commands.CommandWithVariadicArgument).Foo(items...) }")
	})

	t.Run("it should return a nullable result unchanged", func(t *testing.T) {
		// GIVEN
		decorator := fixtures.DecoratorCommand()
		subject := fixtures.ConcreteCommandWithNullableReturn()

		// WHEN
		source := synthesize(t, decorator, subject)

		// THEN
		text := normalize(source.Text)
		assert.Contains(t, text, ") Foo() *int {")
		assert.Contains(t, text, "return any(p.command).(commands.CommandWithNullableReturn).Foo() }")
	})

	t.Run("it should forward nullable and by reference arguments as pointers", func(t *testing.T) {
		for _, subject := range []*descriptor.TypeDescriptor{
			fixtures.ConcreteCommandWithNullableArgument(),
			fixtures.ConcreteCommandWithArgumentAsReference(),
		} {
			// GIVEN
			decorator := fixtures.DecoratorCommand()

			// WHEN
			source := synthesize(t, decorator, subject)

			// THEN
			text := normalize(source.Text)
			assert.Contains(t, text, ") Foo(foo *string) {")
			assert.Contains(t, text, ".Foo(foo) }")
		}
	})

	t.Run("it should render default values", func(t *testing.T) {
		for _, tc := range []struct {
			subject  *descriptor.TypeDescriptor
			expected []string
		}{
			{
				fixtures.ConcreteCommandWithDefaultValueAsString(),
				[]string{`) Foo(foo string /* = "bar" */) {`, ".Foo(foo) }"},
			},
			{
				fixtures.ConcreteCommandWithDefaultValueAsConstant(),
				[]string{") Foo(max int /* = math.MaxInt */) {", ".Foo(max) }"},
			},
			{
				fixtures.ConcreteCommandWithDefaultValueAsSelfConstant(),
				[]string{") Foo(const_ int /* = FooConstant */) {", ".Foo(const_) }"},
			},
			{
				fixtures.ConcreteCommandWithDefaultValueAsClassConstant(),
				[]string{
					") Foo(const_ int /* = github.com/example/commands.Other.BarConstant */) {",
					".Foo(const_) }",
				},
			},
		} {
			// GIVEN
			decorator := fixtures.DecoratorCommand()

			// WHEN
			source := synthesize(t, decorator, tc.subject)

			// THEN
			text := normalize(source.Text)
			for _, expected := range tc.expected {
				assert.Contains(t, text, expected)
			}
		}
	})

	t.Run("it should accept every constructor argument of the decorator", func(t *testing.T) {
		// GIVEN
		decorator := fixtures.DecoratorCommandWithMultipleArguments()
		subject := fixtures.ConcreteCommandWithTwoInterfaces()

		// WHEN
		source := synthesize(t, decorator, subject)

		// THEN
		text := normalize(source.Text)
		assert.Contains(t, text, "func New"+source.Name+"(prefix string, command commands.Command, times int /* = 1 */) *"+source.Name+" {")
		assert.Contains(t, text, "DecoratorCommandWithMultipleArguments: commands.NewDecoratorCommandWithMultipleArguments(prefix, command, times),")
		assert.Contains(t, text, "command: command, }")
	})

	t.Run("it should hold an argument received by reference as a pointer", func(t *testing.T) {
		// GIVEN
		decorator := fixtures.DecoratorCommandWithSubjectAsReference()
		subject := fixtures.Concrete("ConcreteCommandWithHelp", fixtures.CommandWithHelp())

		// WHEN
		source := synthesize(t, decorator, subject)

		// THEN
		text := normalize(source.Text)
		assert.Contains(t, text, "command *commands.Command }")
		assert.Contains(t, text, "(command *commands.Command) *"+source.Name+" {")
		assert.Contains(t, text, "return any(*p.command).(commands.CommandWithHelp).Help() }")
	})

	t.Run("it should assert a pointer to a concrete type without dereferencing it", func(t *testing.T) {
		// GIVEN
		decorator := fixtures.Decorator("LoggingCommand", descriptor.ParameterDescriptor{
			Name:        "command",
			Type:        descriptor.Named(fixtures.Pkg, "ConcreteCommandWithTwoInterfaces"),
			ByReference: true,
		})
		subject := fixtures.ConcreteCommandWithTwoInterfaces()

		// WHEN
		source := synthesize(t, decorator, subject)

		// THEN
		text := normalize(source.Text)
		assert.Contains(t, text, "command *commands.ConcreteCommandWithTwoInterfaces }")
		assert.Contains(t, text, "return any(p.command).(commands.CommandWithHelp).Help() }")
		assert.Contains(t, text, "return any(p.command).(commands.CommandWithDescription).Description() }")
		assert.NotContains(t, text, "any(*p.command)")
	})

	t.Run("it should dereference a pointer to an untyped argument", func(t *testing.T) {
		// GIVEN
		decorator := fixtures.Decorator("AnyDecorator", descriptor.ParameterDescriptor{
			Name:     "command",
			Type:     descriptor.Builtin("any"),
			Nullable: true,
		})
		subject := fixtures.Concrete("ConcreteCommandWithHelp", fixtures.CommandWithHelp())

		// WHEN
		source := synthesize(t, decorator, subject)

		// THEN
		assert.Contains(t, normalize(source.Text), "return any(*p.command).(commands.CommandWithHelp).Help() }")
	})

	t.Run("it should hold a nullable subject as a pointer", func(t *testing.T) {
		// GIVEN
		decorator := fixtures.DecoratorCommandWithNullableSubject()
		subject := fixtures.Concrete("ConcreteCommandWithHelp", fixtures.CommandWithHelp())

		// WHEN
		source := synthesize(t, decorator, subject)

		// THEN
		assert.Contains(t, normalize(source.Text), "command *commands.Command }")
	})

	t.Run("it should call the held argument directly when it declares the method", func(t *testing.T) {
		// GIVEN
		decorator := fixtures.Decorator("HelpDecorator", descriptor.ParameterDescriptor{
			Name:        "command",
			Type:        descriptor.Named(fixtures.Pkg, "CommandWithHelp"),
			ByReference: true,
		})
		subject := fixtures.Concrete("ConcreteCommandWithHelp", fixtures.CommandWithHelp())

		// WHEN
		source := synthesize(t, decorator, subject)

		// THEN
		assert.Contains(t, normalize(source.Text), "return (*p.command).Help() }")
	})

	t.Run("it should propagate the error of a fallible constructor", func(t *testing.T) {
		// GIVEN
		decorator := fixtures.Decorator(
			"FallibleDecorator",
			descriptor.ParameterDescriptor{Name: "command", Type: fixtures.CommandRef()},
			descriptor.ParameterDescriptor{Name: "err", Type: descriptor.Builtin("error")},
		)
		decorator.Constructor.Fallible = true
		subject := fixtures.ConcreteCommand()

		// WHEN
		source := synthesize(t, decorator, subject)

		// THEN
		expected := `
func NewNAME(command commands.Command, err error) (*NAME, error) {
	decorator, err_ := commands.NewFallibleDecorator(command, err)
	if err_ != nil {
		return nil, err_
	}
	return &NAME{
		FallibleDecorator: decorator,
		command: command,
	}, nil
}
`
		assert.Contains(t, normalize(source.Text), normalize(strings.ReplaceAll(expected, "NAME", source.Name)))
	})

	t.Run("it should embed the decorator by value when its constructor does", func(t *testing.T) {
		// GIVEN
		decorator := fixtures.DecoratorCommand()
		decorator.Constructor.Pointer = false
		subject := fixtures.ConcreteCommand()

		// WHEN
		source := synthesize(t, decorator, subject)

		// THEN
		text := normalize(source.Text)
		assert.Contains(t, text, "struct { commands.DecoratorCommand command commands.Command }")
	})

	t.Run("it should pick a receiver not used by the parameters", func(t *testing.T) {
		// GIVEN
		decorator := fixtures.DecoratorCommand()
		subject := fixtures.ConcreteWithFoo("CommandWithP", descriptor.MethodDescriptor{
			Params: []descriptor.ParameterDescriptor{{Name: "p", Type: descriptor.Builtin("int")}},
		})

		// WHEN
		source := synthesize(t, decorator, subject)

		// THEN
		assert.Contains(t, normalize(source.Text), "func (proxy *"+source.Name+") Foo(p int) {")
	})

	t.Run("it should name blank parameters", func(t *testing.T) {
		// GIVEN
		decorator := fixtures.DecoratorCommand()
		subject := fixtures.ConcreteWithFoo("CommandWithBlank", descriptor.MethodDescriptor{
			Params: []descriptor.ParameterDescriptor{{Type: descriptor.Builtin("int")}, {Name: "_"}},
		})

		// WHEN
		source := synthesize(t, decorator, subject)

		// THEN
		text := normalize(source.Text)
		assert.Contains(t, text, ") Foo(arg0 int, arg1 any) {")
		assert.Contains(t, text, ".Foo(arg0, arg1) }")
	})

	t.Run("it should not alias a package with the name of a parameter", func(t *testing.T) {
		// GIVEN
		decorator := fixtures.Decorator("DecoratorCommand", descriptor.ParameterDescriptor{
			Name: "commands",
			Type: fixtures.CommandRef(),
		})
		subject := fixtures.Concrete("ConcreteCommandWithHelp", fixtures.CommandWithHelp())
		name := proxyName(t, decorator, subject, "commands")

		// WHEN
		source, err := Synthesize(name, decorator, subject)

		// THEN
		require.NoError(t, err)
		assertParses(t, source.Text)
		text := normalize(source.Text)
		assert.Contains(t, text, `ecommands "github.com/example/commands"`)
		assert.Contains(t, text, "return any(p.commands).(ecommands.CommandWithHelp).Help() }")
	})

	t.Run("it should register the proxy constructor", func(t *testing.T) {
		// GIVEN
		decorator := fixtures.DecoratorCommand()
		subject := fixtures.ConcreteCommand()

		// WHEN
		source := synthesize(t, decorator, subject, WithRegistration())

		// THEN
		text := normalize(source.Text)
		assert.Contains(t, text, `registry "github.com/a-peyrard/godeco/registry"`)
		assert.Contains(t, text, `func init() { registry.Register("`+source.Qualified()+`", New`+source.Name+`) }`)
	})

	t.Run("it should generate into the requested package", func(t *testing.T) {
		// GIVEN
		decorator := fixtures.DecoratorCommand()
		subject := fixtures.ConcreteCommandWithTwoInterfaces()

		// WHEN
		source := synthesize(t, decorator, subject, WithPackage("commands", fixtures.Pkg), WithHeader(""))

		// THEN
		text := normalize(source.Text)
		assert.True(t, strings.HasPrefix(text, "package commands //"), source.Text)
		assert.NotContains(t, text, "import")
		assert.Contains(t, text, "struct { *DecoratorCommand command Command }")
		assert.Contains(t, text, "_ CommandWithHelp = (*"+source.Name+")(nil)")
		assert.Equal(t, fixtures.Pkg, source.PackagePath)
	})

	t.Run("it should use the default package for an unqualified name", func(t *testing.T) {
		// GIVEN
		decorator := fixtures.DecoratorCommand()
		subject := fixtures.ConcreteCommand()
		name, err := identity.Encode(decorator.Name, subject.Name, "command")
		require.NoError(t, err)

		// WHEN
		source, err := Synthesize(name, decorator, subject)

		// THEN
		require.NoError(t, err)
		assert.Equal(t, DefaultPackage, source.Package)
		assert.Empty(t, source.PackagePath)
		assert.Contains(t, source.Text, "package proxies\n")
	})

	t.Run("it should derive the package name from the namespace", func(t *testing.T) {
		// GIVEN
		decorator := fixtures.DecoratorCommand()
		subject := fixtures.ConcreteCommand()
		name, err := identity.Encode(decorator.Name, subject.Name, "command")
		require.NoError(t, err)

		// WHEN
		source, err := Synthesize("github.com/example/generated/v2."+name, decorator, subject)

		// THEN
		require.NoError(t, err)
		assert.Equal(t, "generated", source.Package)
		assert.Equal(t, "github.com/example/generated/v2", source.PackagePath)
	})
}

func TestSynthesize_failures(t *testing.T) {
	t.Run("it should refuse a name which is not a proxy name", func(t *testing.T) {
		// WHEN
		_, err := Synthesize("github.com/example/proxies.Proxy", fixtures.DecoratorCommand(), fixtures.ConcreteCommand())

		// THEN
		require.ErrorIs(t, err, errdefs.ErrInvalidIdentity)
		assert.ErrorContains(t, err, "github.com/example/proxies.Proxy is not a proxy name")
	})

	t.Run("it should refuse a malformed proxy name", func(t *testing.T) {
		// WHEN
		_, err := Synthesize("GeneratedProxy_zz", fixtures.DecoratorCommand(), fixtures.ConcreteCommand())

		// THEN
		require.ErrorIs(t, err, errdefs.ErrInvalidIdentity)
	})

	t.Run("it should refuse a final decorator", func(t *testing.T) {
		// GIVEN
		decorator := fixtures.WithModifiers(fixtures.DecoratorCommand(), descriptor.Final)
		subject := fixtures.ConcreteCommand()

		// WHEN
		_, err := Synthesize(proxyName(t, decorator, subject, "command"), decorator, subject)

		// THEN
		require.ErrorIs(t, err, errdefs.ErrPreconditionViolated)
		assert.ErrorContains(t, err, "github.com/example/commands.DecoratorCommand must not be final")
	})

	t.Run("it should refuse an abstract subject", func(t *testing.T) {
		// GIVEN
		decorator := fixtures.DecoratorCommand()
		subject := fixtures.Command()

		// WHEN
		_, err := Synthesize(proxyName(t, decorator, subject, "command"), decorator, subject)

		// THEN
		require.ErrorIs(t, err, errdefs.ErrPreconditionViolated)
		assert.ErrorContains(t, err, "github.com/example/commands.Command must not be abstract")
	})

	t.Run("it should refuse an argument missing from the decorator constructor", func(t *testing.T) {
		// GIVEN
		decorator := fixtures.DecoratorCommand()
		subject := fixtures.ConcreteCommand()

		// WHEN
		_, err := Synthesize(proxyName(t, decorator, subject, "other"), decorator, subject)

		// THEN
		require.ErrorIs(t, err, errdefs.ErrMissingArgument)
		assert.ErrorContains(t, err, "parameter other missing in the parameter list of github.com/example/commands.NewDecoratorCommand")
	})

	t.Run("it should refuse a decorator without constructor", func(t *testing.T) {
		// GIVEN
		decorator := fixtures.DecoratorCommand()
		decorator.Constructor = nil
		subject := fixtures.ConcreteCommand()

		// WHEN
		_, err := Synthesize(proxyName(t, decorator, subject, "command"), decorator, subject)

		// THEN
		require.ErrorIs(t, err, errdefs.ErrMissingArgument)
	})

	t.Run("it should refuse an argument declared twice", func(t *testing.T) {
		// GIVEN
		decorator := fixtures.Decorator(
			"TwiceDecorator",
			descriptor.ParameterDescriptor{Name: "command", Type: fixtures.CommandRef()},
			descriptor.ParameterDescriptor{Name: "command", Type: fixtures.CommandRef()},
		)
		subject := fixtures.ConcreteCommand()

		// WHEN
		_, err := Synthesize(proxyName(t, decorator, subject, "command"), decorator, subject)

		// THEN
		require.ErrorIs(t, err, errdefs.ErrPreconditionViolated)
		assert.ErrorContains(t, err, "declared 2 times")
	})

	t.Run("it should refuse a held argument both nullable and received by reference", func(t *testing.T) {
		// GIVEN
		decorator := fixtures.Decorator("DoublePointerDecorator", descriptor.ParameterDescriptor{
			Name:        "command",
			Type:        fixtures.CommandRef(),
			Nullable:    true,
			ByReference: true,
		})
		subject := fixtures.ConcreteCommandWithTwoInterfaces()

		// WHEN
		_, err := Synthesize(proxyName(t, decorator, subject, "command"), decorator, subject)

		// THEN
		require.ErrorIs(t, err, errdefs.ErrPreconditionViolated)
		assert.ErrorContains(t, err, "both nullable and received by reference")
	})

	t.Run("it should refuse a forwarded method named like the decorator", func(t *testing.T) {
		// GIVEN
		decorator := fixtures.DecoratorCommand()
		subject := fixtures.Concrete(
			"ConcreteCommandWithDecoratorMethod",
			fixtures.Extending("CommandWithDecoratorMethod", descriptor.MethodDescriptor{Name: "DecoratorCommand"}),
		)

		// WHEN
		_, err := Synthesize(proxyName(t, decorator, subject, "command"), decorator, subject)

		// THEN
		require.ErrorIs(t, err, errdefs.ErrPreconditionViolated)
		assert.ErrorContains(t, err, "method DecoratorCommand of github.com/example/commands.CommandWithDecoratorMethod")
	})

	t.Run("it should refuse a static method naming its interface", func(t *testing.T) {
		// GIVEN
		decorator := fixtures.DecoratorCommand()
		subject := fixtures.ConcreteCommandWithStaticMethod()

		// WHEN
		_, err := SynthesizeSource(proxyName(t, decorator, subject, "command"), decorator, subject)

		// THEN
		require.ErrorIs(t, err, errdefs.ErrUnsupportedStatic)
		assert.ErrorContains(t, err, "github.com/example/commands.CommandWithStaticMethod")
	})
}

func TestSynthesizeSource(t *testing.T) {
	t.Run("it should return the text of the proxy", func(t *testing.T) {
		// GIVEN
		decorator := fixtures.DecoratorCommand()
		subject := fixtures.ConcreteCommand()
		name := proxyName(t, decorator, subject, "command")

		// WHEN
		text, err := SynthesizeSource(name, decorator, subject)

		// THEN
		require.NoError(t, err)
		source, err := Synthesize(name, decorator, subject)
		require.NoError(t, err)
		assert.Equal(t, source.Text, text)
	})
}

func TestFileName(t *testing.T) {
	t.Run("it should use a snake case go file name", func(t *testing.T) {
		// GIVEN
		name := "GeneratedProxy_61_62_63"

		// WHEN
		file := FileName(name)

		// THEN
		assert.Equal(t, "generated_proxy_61_62_63_gen.go", file)
	})
}
