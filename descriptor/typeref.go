package descriptor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind is the shape of a TypeRef.
type Kind uint8

const (
	KindNamed Kind = iota
	KindPointer
	KindSlice
	KindArray
	KindMap
	KindChan
	KindFunc
)

var kindNames = map[Kind]string{
	KindNamed:   "named",
	KindPointer: "pointer",
	KindSlice:   "slice",
	KindArray:   "array",
	KindMap:     "map",
	KindChan:    "chan",
	KindFunc:    "func",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

func (k Kind) MarshalYAML() (any, error) {
	return k.String(), nil
}

func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	for kind, name := range kindNames {
		if name == value.Value {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown type kind %q", value.Line, value.Value)
}

// ChanDir is the direction of a channel type.
type ChanDir uint8

const (
	ChanBoth ChanDir = iota
	ChanSend
	ChanRecv
)

var chanDirNames = map[ChanDir]string{
	ChanBoth: "both",
	ChanSend: "send",
	ChanRecv: "recv",
}

func (d ChanDir) MarshalYAML() (any, error) {
	return chanDirNames[d], nil
}

func (d *ChanDir) UnmarshalYAML(value *yaml.Node) error {
	for dir, name := range chanDirNames {
		if name == value.Value {
			*d = dir
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown channel direction %q", value.Line, value.Value)
}

// TypeRef is a reference to a type, as written in a signature.
//
// Named types carry the import path of their package, predeclared types have none.
type TypeRef struct {
	Kind    Kind       `yaml:"kind"`
	Package string     `yaml:"package,omitempty"`
	Name    string     `yaml:"name,omitempty"`
	Args    []*TypeRef `yaml:"args,omitempty"`
	// Interface is set on named types whose underlying type is an interface.
	Interface bool `yaml:"interface,omitempty"`

	Elem *TypeRef `yaml:"elem,omitempty"`
	Key  *TypeRef `yaml:"key,omitempty"`
	Len  int64    `yaml:"len,omitempty"`
	Dir  ChanDir  `yaml:"dir,omitempty"`

	Params   []*TypeRef `yaml:"params,omitempty"`
	Results  []*TypeRef `yaml:"results,omitempty"`
	Variadic bool       `yaml:"variadic,omitempty"`
}

// Builtin references a predeclared type, or a type local to the generated package.
func Builtin(name string) *TypeRef {
	return &TypeRef{Kind: KindNamed, Name: name}
}

// Named references a type declared in the package pkg.
func Named(pkg, name string, args ...*TypeRef) *TypeRef {
	return &TypeRef{Kind: KindNamed, Package: pkg, Name: name, Args: args}
}

func PointerTo(elem *TypeRef) *TypeRef {
	return &TypeRef{Kind: KindPointer, Elem: elem}
}

func SliceOf(elem *TypeRef) *TypeRef {
	return &TypeRef{Kind: KindSlice, Elem: elem}
}

func ArrayOf(length int64, elem *TypeRef) *TypeRef {
	return &TypeRef{Kind: KindArray, Len: length, Elem: elem}
}

func MapOf(key, elem *TypeRef) *TypeRef {
	return &TypeRef{Kind: KindMap, Key: key, Elem: elem}
}

func ChanOf(dir ChanDir, elem *TypeRef) *TypeRef {
	return &TypeRef{Kind: KindChan, Dir: dir, Elem: elem}
}

// FuncOf references a function type. When variadic, the last param is the element type.
func FuncOf(params, results []*TypeRef, variadic bool) *TypeRef {
	return &TypeRef{Kind: KindFunc, Params: params, Results: results, Variadic: variadic}
}

// NamedInterface references an interface declared in the package pkg.
func NamedInterface(pkg, name string, args ...*TypeRef) *TypeRef {
	ref := Named(pkg, name, args...)
	ref.Interface = true
	return ref
}

// IsBuiltin tells if the reference is a predeclared type.
func (t *TypeRef) IsBuiltin() bool {
	return t.Kind == KindNamed && t.Package == "" && IsBuiltin(t.Name)
}

// Qualified returns the qualified name of a named reference.
func (t *TypeRef) Qualified() string {
	return Qualify(t.Package, t.Name)
}

// String renders the reference with full import paths, e.g. "[]github.com/x/y.Item".
func (t *TypeRef) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *TypeRef) write(b *strings.Builder) {
	switch t.Kind {
	case KindNamed:
		b.WriteString(t.Qualified())
		if len(t.Args) > 0 {
			b.WriteByte('[')
			writeList(b, t.Args)
			b.WriteByte(']')
		}
	case KindPointer:
		b.WriteByte('*')
		t.Elem.write(b)
	case KindSlice:
		b.WriteString("[]")
		t.Elem.write(b)
	case KindArray:
		b.WriteString("[" + strconv.FormatInt(t.Len, 10) + "]")
		t.Elem.write(b)
	case KindMap:
		b.WriteString("map[")
		t.Key.write(b)
		b.WriteByte(']')
		t.Elem.write(b)
	case KindChan:
		switch t.Dir {
		case ChanSend:
			b.WriteString("chan<- ")
		case ChanRecv:
			b.WriteString("<-chan ")
		default:
			b.WriteString("chan ")
		}
		t.Elem.write(b)
	case KindFunc:
		b.WriteString("func(")
		for i, p := range t.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			if t.Variadic && i == len(t.Params)-1 {
				b.WriteString("...")
			}
			p.write(b)
		}
		b.WriteByte(')')
		switch len(t.Results) {
		case 0:
		case 1:
			b.WriteByte(' ')
			t.Results[0].write(b)
		default:
			b.WriteString(" (")
			writeList(b, t.Results)
			b.WriteByte(')')
		}
	}
}

func writeList(b *strings.Builder, refs []*TypeRef) {
	for i, r := range refs {
		if i > 0 {
			b.WriteString(", ")
		}
		r.write(b)
	}
}

// shorthand tells if the reference can be written as a ParseTypeRef string.
func (t *TypeRef) shorthand() bool {
	switch t.Kind {
	case KindFunc:
		return false
	case KindNamed:
		if t.Interface {
			return false
		}
		for _, a := range t.Args {
			if !a.shorthand() {
				return false
			}
		}
		return true
	case KindMap:
		return t.Key.shorthand() && t.Elem.shorthand()
	default:
		return t.Elem.shorthand()
	}
}

type typeRefFields TypeRef

// MarshalYAML writes the string shorthand whenever ParseTypeRef can read it back.
func (t *TypeRef) MarshalYAML() (any, error) {
	if t.shorthand() {
		return t.String(), nil
	}
	return (*typeRefFields)(t), nil
}

// UnmarshalYAML reads either the string shorthand or the mapping form.
func (t *TypeRef) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		parsed, err := ParseTypeRef(value.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		*t = *parsed
		return nil
	}
	return value.Decode((*typeRefFields)(t))
}

// ParseTypeRef reads the shorthand written by TypeRef.String, function types aside.
//
// Examples: "string", "*github.com/x/y.Item", "map[string][]int", "<-chan error",
// "github.com/x/y.List[int]".
func ParseTypeRef(s string) (*TypeRef, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, errors.New("empty type reference")
	case strings.HasPrefix(s, "func("):
		return nil, fmt.Errorf("function type %q must use the mapping form", s)
	case strings.HasPrefix(s, "*"):
		return wrap(s[1:], PointerTo)
	case strings.HasPrefix(s, "[]"):
		return wrap(s[2:], SliceOf)
	case strings.HasPrefix(s, "["):
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return nil, fmt.Errorf("unterminated array length in %q", s)
		}
		length, err := strconv.ParseInt(s[1:end], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid array length in %q: %w", s, err)
		}
		return wrap(s[end+1:], func(elem *TypeRef) *TypeRef { return ArrayOf(length, elem) })
	case strings.HasPrefix(s, "map["):
		end := closing(s, len("map["))
		if end < 0 {
			return nil, fmt.Errorf("unterminated map key in %q", s)
		}
		key, err := ParseTypeRef(s[len("map["):end])
		if err != nil {
			return nil, err
		}
		return wrap(s[end+1:], func(elem *TypeRef) *TypeRef { return MapOf(key, elem) })
	case strings.HasPrefix(s, "<-chan "):
		return wrap(s[len("<-chan "):], func(elem *TypeRef) *TypeRef { return ChanOf(ChanRecv, elem) })
	case strings.HasPrefix(s, "chan<- "):
		return wrap(s[len("chan<- "):], func(elem *TypeRef) *TypeRef { return ChanOf(ChanSend, elem) })
	case strings.HasPrefix(s, "chan "):
		return wrap(s[len("chan "):], func(elem *TypeRef) *TypeRef { return ChanOf(ChanBoth, elem) })
	}

	base, args := s, []*TypeRef(nil)
	if open := strings.IndexByte(s, '['); open > 0 {
		if closing(s, open+1) != len(s)-1 {
			return nil, fmt.Errorf("malformed type arguments in %q", s)
		}
		base = s[:open]
		for _, raw := range splitTopLevel(s[open+1 : len(s)-1]) {
			arg, err := ParseTypeRef(raw)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
	}
	pkg, name := SplitQualified(base)
	if name == "" {
		return nil, fmt.Errorf("missing type name in %q", s)
	}
	return Named(pkg, name, args...), nil
}

func wrap(rest string, build func(*TypeRef) *TypeRef) (*TypeRef, error) {
	elem, err := ParseTypeRef(rest)
	if err != nil {
		return nil, err
	}
	return build(elem), nil
}

// closing returns the index of the bracket closing the one opened right before from.
func closing(s string, from int) int {
	depth := 1
	for i := from; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func splitTopLevel(s string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
