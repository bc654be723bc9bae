package metadata

import (
	"context"
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/a-peyrard/godeco/descriptor"
	"github.com/a-peyrard/godeco/ordered"
)

type (
	// Table is a descriptor table: the types it knows are listed once, and refer to
	// the interfaces they implement by name.
	Table struct {
		mu    sync.RWMutex
		types *ordered.Map[string, tableEntry]
	}

	tableFile struct {
		Types []tableEntry `yaml:"types"`
	}

	tableEntry struct {
		Name        string                        `yaml:"name"`
		Final       bool                          `yaml:"final,omitempty"`
		Abstract    bool                          `yaml:"abstract,omitempty"`
		Anonymous   bool                          `yaml:"anonymous,omitempty"`
		Constructor *descriptor.Constructor       `yaml:"constructor,omitempty"`
		Methods     []descriptor.MethodDescriptor `yaml:"methods,omitempty"`
		Interfaces  []string                      `yaml:"interfaces,omitempty"`
	}
)

// NewTable creates a table knowing the given types, and the interfaces they implement.
func NewTable(types ...*descriptor.TypeDescriptor) *Table {
	t := &Table{types: ordered.NewMap[string, tableEntry]()}
	for _, typ := range types {
		t.Add(typ)
	}
	return t
}

// LoadTable reads a YAML table.
func LoadTable(r io.Reader) (*Table, error) {
	var file tableFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode descriptor table:\n\t%w", err)
	}

	t := NewTable()
	for _, entry := range file.Types {
		if entry.Name == "" {
			return nil, fmt.Errorf("failed to decode descriptor table: a type has no name")
		}
		if t.types.Contains(entry.Name) {
			return nil, fmt.Errorf("failed to decode descriptor table: type %s is listed twice", entry.Name)
		}
		t.types.Put(entry.Name, entry)
	}
	return t, nil
}

// Add registers the type, and the interfaces it implements when they are not known
// yet. A type already known is replaced.
func (t *Table) Add(typ *descriptor.TypeDescriptor) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.add(typ, true)
}

func (t *Table) add(typ *descriptor.TypeDescriptor, replace bool) {
	if !replace && t.types.Contains(typ.Name) {
		return
	}

	entry := tableEntry{
		Name:        typ.Name,
		Final:       typ.IsFinal(),
		Abstract:    typ.IsAbstract(),
		Anonymous:   typ.IsAnonymous(),
		Constructor: typ.Constructor,
		Methods:     typ.Methods,
	}
	for _, iface := range typ.Interfaces {
		entry.Interfaces = append(entry.Interfaces, iface.Name)
	}
	t.types.Put(typ.Name, entry)

	for _, iface := range typ.Interfaces {
		t.add(iface, false)
	}
}

// Names returns the known types, in the order they were added.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.types.Keys()
}

func (t *Table) Lookup(_ context.Context, name string) (*descriptor.TypeDescriptor, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.build(name, make(map[string]bool))
}

func (t *Table) build(name string, visiting map[string]bool) (*descriptor.TypeDescriptor, error) {
	entry, found := t.types.Get(name)
	if !found {
		return nil, unknown(name)
	}
	if visiting[name] {
		return nil, fmt.Errorf("type %s implements itself", name)
	}
	visiting[name] = true
	defer delete(visiting, name)

	typ := &descriptor.TypeDescriptor{
		Name:        entry.Name,
		Constructor: t.constructor(entry.Constructor),
	}
	if entry.Final {
		typ.Modifiers |= descriptor.Final
	}
	if entry.Abstract {
		typ.Modifiers |= descriptor.Abstract
	}
	if entry.Anonymous {
		typ.Modifiers |= descriptor.Anonymous
	}

	for _, ifaceName := range entry.Interfaces {
		iface, err := t.build(ifaceName, visiting)
		if err != nil {
			return nil, fmt.Errorf("failed to build interfaces of %s:\n\t%w", name, err)
		}
		typ.Interfaces = append(typ.Interfaces, iface)
	}

	for _, m := range entry.Methods {
		if m.Declaring == "" {
			m.Declaring = declaring(typ, m.Name)
		}
		typ.Methods = append(typ.Methods, m)
	}
	return typ, nil
}

// constructor flags the parameters declared with an abstract type of the table as
// interfaces, which a table written by hand may leave implicit.
func (t *Table) constructor(c *descriptor.Constructor) *descriptor.Constructor {
	if c == nil || len(c.Params) == 0 {
		return c
	}
	flagged := *c
	flagged.Params = make([]descriptor.ParameterDescriptor, len(c.Params))
	for i, p := range c.Params {
		if ref := p.Type; ref != nil && ref.Kind == descriptor.KindNamed && !ref.Interface {
			if entry, found := t.types.Get(ref.Qualified()); found && entry.Abstract {
				interfaceRef := *ref
				interfaceRef.Interface = true
				p.Type = &interfaceRef
			}
		}
		flagged.Params[i] = p
	}
	return &flagged
}

// declaring returns the interface the method comes from when the type is an interface
// embedding it, the type itself otherwise.
func declaring(typ *descriptor.TypeDescriptor, method string) string {
	if typ.IsAbstract() {
		for _, iface := range typ.Interfaces {
			for _, m := range iface.Methods {
				if m.Name == method {
					return m.Declaring
				}
			}
		}
	}
	return typ.Name
}

// Encode writes the table in YAML.
func (t *Table) Encode(w io.Writer) error {
	t.mu.RLock()
	file := tableFile{Types: t.types.Values()}
	t.mu.RUnlock()

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(file); err != nil {
		return fmt.Errorf("failed to encode descriptor table:\n\t%w", err)
	}
	return encoder.Close()
}
