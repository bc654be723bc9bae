// Package synth generates the Go source of a proxy type.
//
// A proxy embeds its decorator, holds the constructor argument named by its identity,
// and forwards to that argument every method of the subject's interfaces the
// decorator does not implement.
package synth

import (
	"bytes"
	"fmt"

	"github.com/stoewer/go-strcase"
	"golang.org/x/tools/imports"

	"github.com/a-peyrard/godeco/capability"
	"github.com/a-peyrard/godeco/descriptor"
	"github.com/a-peyrard/godeco/errdefs"
	"github.com/a-peyrard/godeco/identity"
	"github.com/a-peyrard/godeco/option"
	"github.com/a-peyrard/godeco/ordered"
	"github.com/a-peyrard/godeco/render"
)

// Source is a synthesized proxy file.
type Source struct {
	Identity identity.Identity

	// Package is the name of the package the file belongs to.
	Package     string
	PackagePath string
	// Name is the simple name of the proxy type.
	Name string
	Text string
}

// Qualified returns the qualified name of the proxy type.
func (s *Source) Qualified() string {
	return descriptor.Qualify(s.PackagePath, s.Name)
}

// FileName returns the name of the file holding the source.
func (s *Source) FileName() string {
	return FileName(s.Name)
}

// FileName returns the name of the file holding the proxy named name.
func FileName(name string) string {
	return strcase.SnakeCase(name) + "_gen.go"
}

// SynthesizeSource returns the text of the proxy named typeName.
func SynthesizeSource(
	typeName string,
	decorator, subject *descriptor.TypeDescriptor,
	opts ...option.Option[Options],
) (string, error) {
	source, err := Synthesize(typeName, decorator, subject, opts...)
	if err != nil {
		return "", err
	}
	return source.Text, nil
}

// Synthesize generates the proxy named typeName, combining decorator and subject.
//
// The name must be an encoded identity, possibly qualified with the import path of the
// package the proxy is generated in.
func Synthesize(
	typeName string,
	decorator, subject *descriptor.TypeDescriptor,
	opts ...option.Option[Options],
) (*Source, error) {
	id, found, err := identity.Decode(typeName)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s is not a proxy name", errdefs.ErrInvalidIdentity, typeName)
	}

	namespace, name := descriptor.SplitQualified(typeName)
	options := option.Build(&Options{packagePath: namespace, header: DefaultHeader}, opts...)
	if options.packageName == "" {
		options.packageName = DefaultPackage
		if options.packagePath != "" {
			options.packageName = render.PackageName(options.packagePath)
		}
	}

	if err = capability.Validate(decorator, subject); err != nil {
		return nil, err
	}
	interfaces := capability.InterfacesToImplement(decorator, subject)
	methods, err := capability.MethodsToForward(decorator, interfaces)
	if err != nil {
		return nil, err
	}
	if err = checkEmbedding(decorator, methods.Values()); err != nil {
		return nil, err
	}
	held, err := heldArgument(decorator, id.Argument)
	if err != nil {
		return nil, err
	}

	g := newGenerator(name, options, decorator, held, methods.Values())
	data := g.file(subject, interfaces)

	var buf bytes.Buffer
	if err = fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render proxy %s:\n\t%w", typeName, err)
	}
	text, err := imports.Process(name+".go", buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to format proxy %s:\n\t%w", typeName, err)
	}

	return &Source{
		Identity:    id,
		Package:     options.packageName,
		PackagePath: options.packagePath,
		Name:        name,
		Text:        string(text),
	}, nil
}

// heldArgument finds the constructor parameter the proxy forwards to. It must be
// declared exactly once, and point at most once to its value.
func heldArgument(decorator *descriptor.TypeDescriptor, argument string) (descriptor.ParameterDescriptor, error) {
	var (
		held  descriptor.ParameterDescriptor
		count int
	)
	for _, p := range decorator.ConstructorParams() {
		if p.Name == argument {
			held = p
			count++
		}
	}
	switch count {
	case 0:
		return held, fmt.Errorf(
			"%w: parameter %s missing in the parameter list of %s",
			errdefs.ErrMissingArgument, argument, constructorName(decorator),
		)
	case 1:
		if held.Nullable && held.ByReference {
			return held, fmt.Errorf(
				"%w: parameter %s of %s is both nullable and received by reference",
				errdefs.ErrPreconditionViolated, argument, constructorName(decorator),
			)
		}
		return held, nil
	default:
		return held, fmt.Errorf(
			"%w: parameter %s declared %d times in the parameter list of %s",
			errdefs.ErrPreconditionViolated, argument, count, constructorName(decorator),
		)
	}
}

// checkEmbedding refuses a forwarded method named like the embedded decorator, the
// proxy cannot declare both.
func checkEmbedding(decorator *descriptor.TypeDescriptor, methods []descriptor.MethodDescriptor) error {
	embedded := decorator.SimpleName()
	for _, m := range methods {
		if m.Name == embedded {
			return fmt.Errorf(
				"%w: method %s of %s collides with the embedded decorator %s",
				errdefs.ErrPreconditionViolated, m.Name, m.Declaring, decorator.Name,
			)
		}
	}
	return nil
}

func constructorName(decorator *descriptor.TypeDescriptor) string {
	if decorator.Constructor == nil {
		return decorator.Name + " (no constructor)"
	}
	return descriptor.Qualify(decorator.Package(), decorator.Constructor.Function)
}

type generator struct {
	name      string
	options   *Options
	decorator *descriptor.TypeDescriptor
	held      descriptor.ParameterDescriptor
	methods   []descriptor.MethodDescriptor

	imports  *render.Imports
	renderer *render.Renderer

	receiver     string
	decoratorVar string
	errVar       string
	field        string
}

func newGenerator(
	name string,
	options *Options,
	decorator *descriptor.TypeDescriptor,
	held descriptor.ParameterDescriptor,
	methods []descriptor.MethodDescriptor,
) *generator {
	methods = withNamedParams(methods)

	// identifiers living in function bodies, package aliases must not shadow them
	params := ordered.NewSet[string]()
	for _, p := range decorator.ConstructorParams() {
		params.Add(render.Identifier(p.Name))
	}
	decoratorVar := freeName(params, "decorator")
	errVar := freeName(params, "err")

	used := ordered.NewSet(params.Values()...)
	used.Add(decoratorVar)
	used.Add(errVar)
	for _, m := range methods {
		for _, p := range m.Params {
			used.Add(render.Identifier(p.Name))
		}
	}
	receiver := freeName(used, "p", "proxy", "self")
	used.Add(receiver)

	imports := render.NewImports(options.packagePath, used.Values()...)
	return &generator{
		name:         name,
		options:      options,
		decorator:    decorator,
		held:         held,
		methods:      methods,
		imports:      imports,
		renderer:     render.New(imports),
		receiver:     receiver,
		decoratorVar: decoratorVar,
		errVar:       errVar,
		field:        heldField(decorator, held, methods),
	}
}

// withNamedParams names the blank parameters, which could not be forwarded otherwise.
func withNamedParams(methods []descriptor.MethodDescriptor) []descriptor.MethodDescriptor {
	named := make([]descriptor.MethodDescriptor, len(methods))
	for i, m := range methods {
		params := make([]descriptor.ParameterDescriptor, len(m.Params))
		for j, p := range m.Params {
			if p.Name == "" || p.Name == "_" {
				p.Name = fmt.Sprintf("arg%d", j)
			}
			params[j] = p
		}
		m.Params = params
		named[i] = m
	}
	return named
}

// freeName returns the first candidate not used, suffixed by underscores if needed.
func freeName(used *ordered.Set[string], candidates ...string) string {
	for suffix := ""; ; suffix += "_" {
		for _, candidate := range candidates {
			if !used.Contains(candidate + suffix) {
				return candidate + suffix
			}
		}
	}
}

// heldField names the field after the argument, unless it collides with a member
// of the proxy.
func heldField(
	decorator *descriptor.TypeDescriptor,
	held descriptor.ParameterDescriptor,
	methods []descriptor.MethodDescriptor,
) string {
	members := ordered.NewSet(decorator.SimpleName())
	for _, m := range methods {
		members.Add(m.Name)
	}
	return freeName(members, render.Identifier(held.Name))
}

func (g *generator) file(subject *descriptor.TypeDescriptor, interfaces []*descriptor.TypeDescriptor) fileData {
	decoratorPkg := g.decorator.Package()
	constructor := "New" + g.name

	embedded := g.imports.Qualify(decoratorPkg, g.decorator.SimpleName())
	if g.decorator.Constructor.Pointer {
		embedded = "*" + embedded
	}

	contracts := make([]string, 0, len(interfaces))
	for _, iface := range interfaces {
		contracts = append(contracts, g.imports.Qualify(iface.Package(), iface.SimpleName()))
	}

	methods := make([]methodData, 0, len(g.methods))
	for _, m := range g.methods {
		methods = append(methods, methodData{
			Name:    m.Name,
			Params:  g.renderer.DeclaredParameters(m.Params),
			Results: g.renderer.ReturnAnnotation(m),
			Call:    g.call(m),
		})
	}

	data := fileData{
		Header:    g.options.header,
		Package:   g.options.packageName,
		Qualified: descriptor.Qualify(g.options.packagePath, g.name),

		Name:      g.name,
		Decorator: g.decorator.Name,
		Subject:   subject.Name,
		Embedded:  embedded,
		Field:     g.field,
		FieldType: g.fieldType(),
		Contracts: contracts,

		Constructor:          constructor,
		Params:               g.renderer.DeclaredParameters(g.decorator.Constructor.Params),
		Args:                 render.ForwardingArguments(g.decorator.Constructor.Params),
		Fallible:             g.decorator.Constructor.Fallible,
		DecoratorVar:         g.decoratorVar,
		ErrVar:               g.errVar,
		DecoratorConstructor: g.imports.Qualify(decoratorPkg, g.decorator.Constructor.Function),
		EmbeddedField:        g.decorator.SimpleName(),
		FieldValue:           render.Identifier(g.held.Name),

		Receiver: g.receiver,
		Methods:  methods,
	}
	if g.options.register {
		data.Register = g.imports.Alias(registryPath)
	}
	// imports are complete once every fragment is rendered
	data.Imports = g.imports.Specs()
	return data
}

// fieldType is the declared type of the argument. A variadic argument is held as
// the slice it is received as.
func (g *generator) fieldType() string {
	held := g.held
	if !held.Variadic {
		return g.renderer.ParameterType(held)
	}
	held.Variadic = false
	return "[]" + g.renderer.ParameterType(held)
}

// call renders the invocation of the method on the held argument.
//
// The method is called directly when the argument is declared with the interface
// declaring the method. Otherwise the argument is asserted to that interface first,
// and the call panics if the held value does not implement it. A pointer to an
// interface is dereferenced to reach the value, a pointer to a concrete type is
// asserted as is so that its pointer methods stay in the method set.
func (g *generator) call(m descriptor.MethodDescriptor) string {
	value := g.receiver + "." + g.field
	pointer := g.held.ByReference || g.held.Nullable

	var target string
	switch {
	case g.declaredWith(m.Declaring) && pointer:
		target = "(*" + value + ")"
	case g.declaredWith(m.Declaring):
		target = value
	default:
		if pointer && g.heldInterface() {
			value = "*" + value
		}
		pkg, iface := descriptor.SplitQualified(m.Declaring)
		target = "any(" + value + ").(" + g.imports.Qualify(pkg, iface) + ")"
	}
	return target + "." + m.Name + "(" + render.ForwardingArguments(m.Params) + ")"
}

// heldInterface tells if the argument is declared with an interface type.
func (g *generator) heldInterface() bool {
	ref := g.held.Type
	if ref == nil {
		return true
	}
	return ref.Interface || ref.IsBuiltin() && (ref.Name == "any" || ref.Name == "error")
}

func (g *generator) declaredWith(typeName string) bool {
	ref := g.held.Type
	return ref != nil &&
		!g.held.Variadic &&
		ref.Kind == descriptor.KindNamed &&
		len(ref.Args) == 0 &&
		ref.Qualified() == typeName
}
