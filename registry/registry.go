// Package registry lets generated proxies announce their constructor at startup, so
// a proxy can be found by its name at run time.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/a-peyrard/godeco/errdefs"
)

var (
	mu           sync.RWMutex
	constructors = make(map[string]any)
)

// Register records the constructor of the proxy with the given qualified name.
//
// It is called from the init function of generated files and panics when the name is
// already registered, as two files define the same proxy.
func Register(name string, constructor any) {
	mu.Lock()
	defer mu.Unlock()

	if _, found := constructors[name]; found {
		panic(fmt.Sprintf("proxy %s registered twice", name))
	}
	constructors[name] = constructor
}

// Lookup returns the constructor registered for the name.
func Lookup(name string) (constructor any, found bool) {
	mu.RLock()
	defer mu.RUnlock()

	constructor, found = constructors[name]
	return constructor, found
}

// LookupAs returns the constructor registered for the name, with its concrete type.
func LookupAs[F any](name string) (F, error) {
	var zero F
	constructor, found := Lookup(name)
	if !found {
		return zero, fmt.Errorf("%w: proxy %s is not registered", errdefs.ErrUnknownType, name)
	}
	typed, ok := constructor.(F)
	if !ok {
		return zero, fmt.Errorf("constructor of proxy %s is a %T, not a %T", name, constructor, zero)
	}
	return typed, nil
}

// Names returns the registered names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func reset() {
	mu.Lock()
	defer mu.Unlock()
	constructors = make(map[string]any)
}
