// Package render turns descriptors into fragments of Go source: parameter lists,
// forwarding call arguments and result lists.
//
// Rendering is pure. The only state is the Imports collector, which records the
// packages the fragments reference so the file can import them.
package render

import (
	"fmt"
	"go/token"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/a-peyrard/godeco/descriptor"
)

// Renderer renders fragments for a file generated in a given package.
type Renderer struct {
	imports *Imports
}

// New creates a renderer registering the referenced packages into imports.
func New(imports *Imports) *Renderer {
	return &Renderer{imports: imports}
}

// Type renders a type reference, qualifying named types with their package alias.
func (r *Renderer) Type(ref *descriptor.TypeRef) string {
	var b strings.Builder
	r.writeType(&b, ref)
	return b.String()
}

func (r *Renderer) writeType(b *strings.Builder, ref *descriptor.TypeRef) {
	switch ref.Kind {
	case descriptor.KindNamed:
		b.WriteString(r.imports.Qualify(ref.Package, ref.Name))
		if len(ref.Args) > 0 {
			b.WriteByte('[')
			r.writeTypes(b, ref.Args)
			b.WriteByte(']')
		}
	case descriptor.KindPointer:
		b.WriteByte('*')
		r.writeType(b, ref.Elem)
	case descriptor.KindSlice:
		b.WriteString("[]")
		r.writeType(b, ref.Elem)
	case descriptor.KindArray:
		b.WriteString("[" + strconv.FormatInt(ref.Len, 10) + "]")
		r.writeType(b, ref.Elem)
	case descriptor.KindMap:
		b.WriteString("map[")
		r.writeType(b, ref.Key)
		b.WriteByte(']')
		r.writeType(b, ref.Elem)
	case descriptor.KindChan:
		switch ref.Dir {
		case descriptor.ChanSend:
			b.WriteString("chan<- ")
		case descriptor.ChanRecv:
			b.WriteString("<-chan ")
		default:
			b.WriteString("chan ")
		}
		r.writeType(b, ref.Elem)
	case descriptor.KindFunc:
		b.WriteString("func(")
		for i, p := range ref.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			if ref.Variadic && i == len(ref.Params)-1 {
				b.WriteString("...")
			}
			r.writeType(b, p)
		}
		b.WriteByte(')')
		switch len(ref.Results) {
		case 0:
		case 1:
			b.WriteByte(' ')
			r.writeType(b, ref.Results[0])
		default:
			b.WriteString(" (")
			r.writeTypes(b, ref.Results)
			b.WriteByte(')')
		}
	}
}

func (r *Renderer) writeTypes(b *strings.Builder, refs []*descriptor.TypeRef) {
	for i, ref := range refs {
		if i > 0 {
			b.WriteString(", ")
		}
		r.writeType(b, ref)
	}
}

// annotation renders a declared type: "any" when untyped, a pointer when nullable.
func (r *Renderer) annotation(ref *descriptor.TypeRef, nullable bool) string {
	if ref == nil {
		return "any"
	}
	if nullable {
		return "*" + r.Type(ref)
	}
	return r.Type(ref)
}

// ParameterType renders the declared type of the parameter, markers included.
func (r *Renderer) ParameterType(p descriptor.ParameterDescriptor) string {
	typ := r.annotation(p.Type, p.Nullable)
	if p.ByReference {
		typ = "*" + typ
	}
	if p.Variadic {
		typ = "..." + typ
	}
	return typ
}

// DeclaredParameter renders one parameter of a signature.
//
// The default value, which Go cannot express, follows the type as a comment.
func (r *Renderer) DeclaredParameter(p descriptor.ParameterDescriptor) string {
	declared := Identifier(p.Name) + " " + r.ParameterType(p)
	if p.HasDefault() {
		declared += " /* = " + strings.ReplaceAll(Default(p.Default), "*/", "* /") + " */"
	}
	return declared
}

// DeclaredParameters renders a full parameter list, without parentheses.
func (r *Renderer) DeclaredParameters(params []descriptor.ParameterDescriptor) string {
	declared := make([]string, len(params))
	for i, p := range params {
		declared[i] = r.DeclaredParameter(p)
	}
	return strings.Join(declared, ", ")
}

// ForwardingArgument renders the argument passing the parameter along.
//
// The declaration already carries the pointer, so only variadic parameters differ
// from their plain name: they are spread.
func ForwardingArgument(p descriptor.ParameterDescriptor) string {
	if p.Variadic {
		return Identifier(p.Name) + "..."
	}
	return Identifier(p.Name)
}

// ForwardingArguments renders a full argument list, without parentheses.
func ForwardingArguments(params []descriptor.ParameterDescriptor) string {
	args := make([]string, len(params))
	for i, p := range params {
		args[i] = ForwardingArgument(p)
	}
	return strings.Join(args, ", ")
}

// ReturnAnnotation renders the results of the method, empty when it has none.
func (r *Renderer) ReturnAnnotation(m descriptor.MethodDescriptor) string {
	if !m.HasReturnType() {
		return ""
	}

	results := make([]string, len(m.Results))
	for i, res := range m.Results {
		results[i] = r.annotation(res.Type, res.Nullable)
		if i == 0 && m.ReturnsReference {
			results[i] = "*" + results[i]
		}
	}
	if len(results) == 1 {
		return results[0]
	}
	return "(" + strings.Join(results, ", ") + ")"
}

// Default renders a default value.
//
// A constant relative to the declaring type is kept as is: the proxy implements that
// type, so the constant stays reachable. Other constants are fully qualified, as the
// proxy does not live in the package that declared the method.
func Default(d *descriptor.DefaultValue) string {
	switch d.Kind {
	case descriptor.DefaultConstant:
		if d.Relative {
			return d.Name
		}
		return descriptor.Qualify(d.Package, d.Name)
	case descriptor.DefaultClassConstant:
		return descriptor.Qualify(d.Package, d.Class) + "." + d.Name
	default:
		return Literal(d.Value)
	}
}

// Literal renders a value with the Go literal syntax.
func Literal(value any) string {
	switch v := value.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return formatFloat(v)
	case []any:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = Literal(item)
		}
		return "[]any{" + strings.Join(items, ", ") + "}"
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]string, len(keys))
		for i, k := range keys {
			entries[i] = strconv.Quote(k) + ": " + Literal(v[k])
		}
		return "map[string]any{" + strings.Join(entries, ", ") + "}"
	default:
		return fmt.Sprintf("%#v", v)
	}
}

func formatFloat(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "math.Inf(1)"
	case math.IsInf(v, -1):
		return "math.Inf(-1)"
	case math.IsNaN(v):
		return "math.NaN()"
	}
	formatted := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(formatted, ".eE") {
		formatted += ".0"
	}
	return formatted
}

// Identifier turns a name into a usable Go identifier: invalid characters become
// underscores and keywords get a trailing underscore.
func Identifier(name string) string {
	if token.IsIdentifier(name) {
		return name
	}
	if token.IsKeyword(name) {
		return name + "_"
	}

	var b strings.Builder
	for i, r := range name {
		switch {
		case unicode.IsLetter(r) || r == '_':
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
