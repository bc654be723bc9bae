package metadata

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/tools/go/packages"

	"github.com/a-peyrard/godeco/descriptor"
	"github.com/a-peyrard/godeco/errdefs"
	"github.com/a-peyrard/godeco/option"
)

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedImports |
	packages.NeedTypes |
	packages.NeedSyntax |
	packages.NeedTypesInfo

type (
	// ScannerOptions configures how packages are loaded.
	ScannerOptions struct {
		dir        string
		buildFlags []string
		logger     *zerolog.Logger
	}

	// PackageScanner describes the types of Go packages, loading them on first use.
	//
	// Methods are listed in declaration order. The interfaces of a type are the
	// exported interfaces it implements, declared in its own package or in the
	// packages it imports.
	PackageScanner struct {
		options *ScannerOptions

		mu     sync.Mutex
		loaded map[string]*packages.Package
	}
)

// WithDir sets the directory packages are loaded from, the current one by default.
func WithDir(dir string) option.Option[ScannerOptions] {
	return func(opts *ScannerOptions) {
		opts.dir = dir
	}
}

// WithBuildFlags passes flags to the build system, e.g. "-tags=integration".
func WithBuildFlags(flags ...string) option.Option[ScannerOptions] {
	return func(opts *ScannerOptions) {
		opts.buildFlags = flags
	}
}

// WithLogger sets the logger of the scanner.
func WithLogger(logger *zerolog.Logger) option.Option[ScannerOptions] {
	return func(opts *ScannerOptions) {
		opts.logger = logger
	}
}

func NewPackageScanner(opts ...option.Option[ScannerOptions]) *PackageScanner {
	nop := zerolog.Nop()
	return &PackageScanner{
		options: option.Build(&ScannerOptions{logger: &nop}, opts...),
		loaded:  make(map[string]*packages.Package),
	}
}

// Load loads the packages matching the patterns, making their types known.
func (s *PackageScanner) Load(ctx context.Context, patterns ...string) ([]*packages.Package, error) {
	s.options.logger.Debug().Strs("patterns", patterns).Msg("Loading packages")

	pkgs, err := packages.Load(&packages.Config{
		Context:    ctx,
		Mode:       loadMode,
		Dir:        s.options.dir,
		BuildFlags: s.options.buildFlags,
	}, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages %v:\n\t%w", patterns, err)
	}

	var errs []error
	for _, pkg := range pkgs {
		for _, pkgErr := range pkg.Errors {
			errs = append(errs, pkgErr)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to load packages %v:\n\t%w", patterns, errors.Join(errs...))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, pkg := range pkgs {
		s.loaded[pkg.PkgPath] = pkg
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].PkgPath < pkgs[j].PkgPath })
	return pkgs, nil
}

func (s *PackageScanner) pkg(ctx context.Context, path string) (*packages.Package, error) {
	s.mu.Lock()
	pkg, found := s.loaded[path]
	s.mu.Unlock()
	if found {
		return pkg, nil
	}

	pkgs, err := s.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	for _, pkg := range pkgs {
		if pkg.PkgPath == path {
			return pkg, nil
		}
	}
	return nil, fmt.Errorf("package %s not found", path)
}

func (s *PackageScanner) Lookup(ctx context.Context, name string) (*descriptor.TypeDescriptor, error) {
	path, simple := descriptor.SplitQualified(name)
	if path == "" {
		return nil, unknown(name)
	}

	pkg, err := s.pkg(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s:\n\t%v", errdefs.ErrUnknownType, name, err)
	}
	obj, ok := pkg.Types.Scope().Lookup(simple).(*types.TypeName)
	if !ok {
		return nil, unknown(name)
	}

	s.options.logger.Debug().Str("type", name).Msg("Describing type")
	return describe(pkg, obj), nil
}

// Annotations loads the packages matching the patterns and returns the @forward
// annotations of their types.
func (s *PackageScanner) Annotations(ctx context.Context, patterns ...string) ([]Annotation, error) {
	pkgs, err := s.Load(ctx, patterns...)
	if err != nil {
		return nil, err
	}

	var annotations []Annotation
	for _, pkg := range pkgs {
		logger := s.options.logger.With().Str("package", pkg.PkgPath).Logger()
		logger.Debug().Msg("Scanning package")
		for _, file := range pkg.Syntax {
			for _, decl := range file.Decls {
				genDecl, ok := decl.(*ast.GenDecl)
				if !ok || genDecl.Tok != token.TYPE {
					continue
				}
				for _, spec := range genDecl.Specs {
					typeSpec := spec.(*ast.TypeSpec)
					doc := docText(genDecl, typeSpec)
					if !strings.Contains(doc, forwardAnnotationTag) {
						continue
					}

					logger := logger.With().Str("decorator", typeSpec.Name.Name).Logger()
					logger.Debug().Msg("=> Found decorator")
					annotations = append(annotations, parseForwardAnnotations(
						&logger,
						descriptor.Qualify(pkg.PkgPath, typeSpec.Name.Name),
						doc,
						pkg.Fset.Position(typeSpec.Pos()),
					)...)
				}
			}
		}
	}
	return annotations, nil
}

func docText(genDecl *ast.GenDecl, typeSpec *ast.TypeSpec) string {
	if typeSpec.Doc != nil {
		return typeSpec.Doc.Text()
	}
	if genDecl.Doc != nil && len(genDecl.Specs) == 1 {
		return genDecl.Doc.Text()
	}
	return ""
}

func docOf(pkg *packages.Package, obj *types.TypeName) string {
	for _, file := range pkg.Syntax {
		for _, decl := range file.Decls {
			genDecl, ok := decl.(*ast.GenDecl)
			if !ok || genDecl.Tok != token.TYPE {
				continue
			}
			for _, spec := range genDecl.Specs {
				if typeSpec := spec.(*ast.TypeSpec); typeSpec.Name.Pos() == obj.Pos() {
					return docText(genDecl, typeSpec)
				}
			}
		}
	}
	return ""
}

func describe(pkg *packages.Package, obj *types.TypeName) *descriptor.TypeDescriptor {
	typ := &descriptor.TypeDescriptor{Name: descriptor.Qualify(pkg.PkgPath, obj.Name())}
	if hasFinalAnnotation(docOf(pkg, obj)) {
		typ.Modifiers |= descriptor.Final
	}

	named, ok := types.Unalias(obj.Type()).(*types.Named)
	if !ok {
		typ.Modifiers |= descriptor.Anonymous
		return typ
	}
	if iface, ok := named.Underlying().(*types.Interface); ok {
		described := describeInterface(named, iface)
		described.Name = typ.Name
		described.Modifiers |= typ.Modifiers
		return described
	}

	typ.Methods = concreteMethods(named)
	typ.Constructor = constructor(pkg, obj.Name(), named)
	typ.Interfaces = implemented(pkg, named)
	return typ
}

func describeInterface(named *types.Named, iface *types.Interface) *descriptor.TypeDescriptor {
	typ := &descriptor.TypeDescriptor{
		Name:      qualifiedName(named.Obj()),
		Modifiers: descriptor.Abstract,
	}

	methods := make([]*types.Func, iface.NumMethods())
	for i := range methods {
		methods[i] = iface.Method(i)
	}
	sortByPos(methods)
	for _, fn := range methods {
		typ.Methods = append(typ.Methods, describeMethod(fn))
	}

	for i := 0; i < iface.NumEmbeddeds(); i++ {
		if embedded, ok := types.Unalias(iface.EmbeddedType(i)).(*types.Named); ok {
			if embeddedIface, ok := embedded.Underlying().(*types.Interface); ok {
				typ.Interfaces = append(typ.Interfaces, describeInterface(embedded, embeddedIface))
			}
		}
	}
	return typ
}

// concreteMethods lists the declared methods first, then the promoted ones.
func concreteMethods(named *types.Named) []descriptor.MethodDescriptor {
	declared := make([]*types.Func, named.NumMethods())
	for i := range declared {
		declared[i] = named.Method(i)
	}
	sortByPos(declared)

	var methods []descriptor.MethodDescriptor
	seen := make(map[string]bool)
	for _, fn := range declared {
		seen[fn.Name()] = true
		methods = append(methods, describeMethod(fn))
	}

	methodSet := types.NewMethodSet(types.NewPointer(named))
	for i := 0; i < methodSet.Len(); i++ {
		fn, ok := methodSet.At(i).Obj().(*types.Func)
		if ok && !seen[fn.Name()] {
			seen[fn.Name()] = true
			methods = append(methods, describeMethod(fn))
		}
	}
	return methods
}

func constructor(pkg *packages.Package, simple string, named *types.Named) *descriptor.Constructor {
	fn, ok := pkg.Types.Scope().Lookup("New" + simple).(*types.Func)
	if !ok {
		return nil
	}
	sig := fn.Type().(*types.Signature)
	results := sig.Results()
	if results.Len() == 0 || results.Len() > 2 {
		return nil
	}
	fallible := results.Len() == 2
	if fallible && !isError(results.At(1).Type()) {
		return nil
	}

	result := types.Unalias(results.At(0).Type())
	pointer, isPointer := result.(*types.Pointer)
	if isPointer {
		result = pointer.Elem()
	}
	if !types.Identical(result, named) {
		return nil
	}

	return &descriptor.Constructor{
		Function: fn.Name(),
		Params:   parameters(sig),
		Pointer:  isPointer,
		Fallible: fallible,
	}
}

// implemented returns the exported interfaces the type implements, from its own
// package first, then from the packages it imports sorted by path.
func implemented(pkg *packages.Package, named *types.Named) []*descriptor.TypeDescriptor {
	imports := append([]*types.Package(nil), pkg.Types.Imports()...)
	sort.Slice(imports, func(i, j int) bool { return imports[i].Path() < imports[j].Path() })
	candidates := append([]*types.Package{pkg.Types}, imports...)

	pointer := types.NewPointer(named)
	var interfaces []*descriptor.TypeDescriptor
	for _, candidate := range candidates {
		if !importable(pkg.PkgPath, candidate.Path()) {
			continue
		}
		for _, iface := range exportedInterfaces(candidate) {
			if types.Implements(pointer, iface.Underlying().(*types.Interface)) {
				interfaces = append(interfaces, describeInterface(iface, iface.Underlying().(*types.Interface)))
			}
		}
	}
	return interfaces
}

func exportedInterfaces(pkg *types.Package) []*types.Named {
	var interfaces []*types.Named
	scope := pkg.Scope()
	for _, name := range scope.Names() {
		obj, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !obj.Exported() || obj.IsAlias() {
			continue
		}
		named, ok := obj.Type().(*types.Named)
		if !ok || named.TypeParams().Len() > 0 {
			continue
		}
		if iface, ok := named.Underlying().(*types.Interface); ok && iface.NumMethods() > 0 {
			interfaces = append(interfaces, named)
		}
	}
	sort.SliceStable(interfaces, func(i, j int) bool { return interfaces[i].Obj().Pos() < interfaces[j].Obj().Pos() })
	return interfaces
}

// importable tells if code of the package from can import the package path.
func importable(from, path string) bool {
	var parent string
	switch {
	case strings.HasPrefix(path, "internal/"):
		parent = ""
	case strings.Contains(path, "/internal/"):
		parent = path[:strings.Index(path, "/internal/")]
	case strings.HasSuffix(path, "/internal"):
		parent = strings.TrimSuffix(path, "/internal")
	default:
		return true
	}
	return parent != "" && (from == parent || strings.HasPrefix(from, parent+"/"))
}

func describeMethod(fn *types.Func) descriptor.MethodDescriptor {
	sig := fn.Type().(*types.Signature)
	method := descriptor.MethodDescriptor{
		Name:      fn.Name(),
		Params:    parameters(sig),
		Declaring: declaringType(sig),
	}
	for i := 0; i < sig.Results().Len(); i++ {
		var result descriptor.ResultDescriptor
		t := types.Unalias(sig.Results().At(i).Type())
		if pointer, ok := t.(*types.Pointer); ok {
			result.Nullable = true
			t = pointer.Elem()
		}
		result.Type = typeRef(t)
		method.Results = append(method.Results, result)
	}
	return method
}

// parameters maps pointers to parameters passed by reference. An empty interface is
// an untyped parameter.
func parameters(sig *types.Signature) []descriptor.ParameterDescriptor {
	params := make([]descriptor.ParameterDescriptor, sig.Params().Len())
	for i := range params {
		v := sig.Params().At(i)
		param := descriptor.ParameterDescriptor{Name: v.Name()}

		t := types.Unalias(v.Type())
		if sig.Variadic() && i == len(params)-1 {
			param.Variadic = true
			if slice, ok := t.(*types.Slice); ok {
				t = types.Unalias(slice.Elem())
			}
		}
		if pointer, ok := t.(*types.Pointer); ok {
			param.ByReference = true
			t = pointer.Elem()
		}
		if !isEmptyInterface(t) {
			param.Type = typeRef(t)
		}
		params[i] = param
	}
	return params
}

func declaringType(sig *types.Signature) string {
	recv := sig.Recv()
	if recv == nil {
		return ""
	}
	t := types.Unalias(recv.Type())
	if pointer, ok := t.(*types.Pointer); ok {
		t = pointer.Elem()
	}
	if named, ok := types.Unalias(t).(*types.Named); ok {
		return qualifiedName(named.Obj())
	}
	return ""
}

func qualifiedName(obj *types.TypeName) string {
	if obj.Pkg() == nil {
		return obj.Name()
	}
	return descriptor.Qualify(obj.Pkg().Path(), obj.Name())
}

func typeRef(t types.Type) *descriptor.TypeRef {
	switch t := types.Unalias(t).(type) {
	case *types.Basic:
		if t.Kind() == types.UnsafePointer {
			return descriptor.Named("unsafe", "Pointer")
		}
		return descriptor.Builtin(t.Name())
	case *types.Named:
		obj := t.Obj()
		if obj.Pkg() == nil {
			return descriptor.Builtin(obj.Name())
		}
		var args []*descriptor.TypeRef
		for i := 0; i < t.TypeArgs().Len(); i++ {
			args = append(args, typeRef(t.TypeArgs().At(i)))
		}
		if types.IsInterface(t) {
			return descriptor.NamedInterface(obj.Pkg().Path(), obj.Name(), args...)
		}
		return descriptor.Named(obj.Pkg().Path(), obj.Name(), args...)
	case *types.Pointer:
		return descriptor.PointerTo(typeRef(t.Elem()))
	case *types.Slice:
		return descriptor.SliceOf(typeRef(t.Elem()))
	case *types.Array:
		return descriptor.ArrayOf(t.Len(), typeRef(t.Elem()))
	case *types.Map:
		return descriptor.MapOf(typeRef(t.Key()), typeRef(t.Elem()))
	case *types.Chan:
		dir := descriptor.ChanBoth
		switch t.Dir() {
		case types.SendOnly:
			dir = descriptor.ChanSend
		case types.RecvOnly:
			dir = descriptor.ChanRecv
		}
		return descriptor.ChanOf(dir, typeRef(t.Elem()))
	case *types.Signature:
		var params, results []*descriptor.TypeRef
		for i := 0; i < t.Params().Len(); i++ {
			param := t.Params().At(i).Type()
			if t.Variadic() && i == t.Params().Len()-1 {
				if slice, ok := types.Unalias(param).(*types.Slice); ok {
					param = slice.Elem()
				}
			}
			params = append(params, typeRef(param))
		}
		for i := 0; i < t.Results().Len(); i++ {
			results = append(results, typeRef(t.Results().At(i).Type()))
		}
		return descriptor.FuncOf(params, results, t.Variadic())
	case *types.TypeParam:
		return descriptor.Builtin(t.Obj().Name())
	default:
		if isEmptyInterface(t) {
			return descriptor.Builtin("any")
		}
		// unnamed interfaces and structs, kept as written with package names
		return descriptor.Builtin(types.TypeString(t, (*types.Package).Name))
	}
}

func isEmptyInterface(t types.Type) bool {
	iface, ok := types.Unalias(t).(*types.Interface)
	return ok && iface.Empty()
}

func isError(t types.Type) bool {
	return types.Identical(t, types.Universe.Lookup("error").Type())
}

func sortByPos(fns []*types.Func) {
	sort.SliceStable(fns, func(i, j int) bool { return fns[i].Pos() < fns[j].Pos() })
}
