package descriptor

import "strings"

var builtins = map[string]struct{}{
	"any": {}, "bool": {}, "byte": {}, "comparable": {},
	"complex64": {}, "complex128": {}, "error": {},
	"float32": {}, "float64": {},
	"int": {}, "int8": {}, "int16": {}, "int32": {}, "int64": {},
	"rune": {}, "string": {},
	"uint": {}, "uint8": {}, "uint16": {}, "uint32": {}, "uint64": {}, "uintptr": {},
}

// IsBuiltin tells if name is one of Go's predeclared types.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

// SplitQualified splits "path/to/pkg.Name" into "path/to/pkg" and "Name".
//
// The namespace is empty when the name is not qualified. Dots before the last slash
// belong to the import path ("github.com/..."), dots after it separate the name.
func SplitQualified(qualified string) (namespace, name string) {
	dot := strings.LastIndex(qualified, ".")
	if dot < 0 || dot < strings.LastIndex(qualified, "/") {
		return "", qualified
	}
	return qualified[:dot], qualified[dot+1:]
}

// Qualify joins a namespace and a name, the inverse of SplitQualified.
func Qualify(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}
