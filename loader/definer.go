package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"github.com/stoewer/go-strcase"

	"github.com/a-peyrard/godeco/errdefs"
	"github.com/a-peyrard/godeco/identity"
	"github.com/a-peyrard/godeco/option"
	"github.com/a-peyrard/godeco/synth"
)

type (
	// Type is a defined proxy type.
	Type struct {
		// Name is the simple name of the proxy, its encoded identity.
		Name     string
		Identity identity.Identity
		// Package is the import path of the package holding the proxy, when known.
		Package string
		// Path is the file holding the proxy source, empty when kept in memory.
		Path string
	}

	// Definer turns proxy sources into types. It is the registry of the proxies
	// defined by the process, keyed by their simple name.
	Definer interface {
		Defined(name string) (Type, bool)
		// Define fails with errdefs.ErrAlreadyDefined when the proxy is already defined.
		Define(ctx context.Context, source *synth.Source) (Type, error)
	}

	// MemoryDefiner keeps the sources in memory.
	MemoryDefiner struct {
		mu      sync.RWMutex
		types   map[string]Type
		sources map[string]*synth.Source
	}

	// FileDefiner writes each source in its own file, for the compiler to pick it up.
	FileDefiner struct {
		fs        afero.Fs
		dir       string
		overwrite bool

		mu    sync.RWMutex
		types map[string]Type
	}

	// FileDefinerOptions configures a FileDefiner.
	FileDefinerOptions struct {
		overwrite bool
	}
)

func NewMemoryDefiner() *MemoryDefiner {
	return &MemoryDefiner{
		types:   make(map[string]Type),
		sources: make(map[string]*synth.Source),
	}
}

func (d *MemoryDefiner) Defined(name string) (Type, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	typ, found := d.types[name]
	return typ, found
}

func (d *MemoryDefiner) Define(_ context.Context, source *synth.Source) (Type, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, found := d.types[source.Name]; found {
		return Type{}, fmt.Errorf("%w: %s", errdefs.ErrAlreadyDefined, source.Name)
	}
	typ := Type{Name: source.Name, Identity: source.Identity, Package: source.PackagePath}
	d.types[source.Name] = typ
	d.sources[source.Name] = source
	return typ, nil
}

// Source returns the source of a defined proxy.
func (d *MemoryDefiner) Source(name string) (*synth.Source, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	source, found := d.sources[name]
	return source, found
}

// Names returns the names of the defined proxies, sorted.
func (d *MemoryDefiner) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.types))
	for name := range d.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithOverwrite replaces the files left by a previous run instead of considering
// their proxies as defined.
func WithOverwrite() option.Option[FileDefinerOptions] {
	return func(opts *FileDefinerOptions) {
		opts.overwrite = true
	}
}

// NewFileDefiner writes the sources into dir.
func NewFileDefiner(fs afero.Fs, dir string, opts ...option.Option[FileDefinerOptions]) *FileDefiner {
	options := option.Build(&FileDefinerOptions{}, opts...)
	return &FileDefiner{
		fs:        fs,
		dir:       dir,
		overwrite: options.overwrite,
		types:     make(map[string]Type),
	}
}

func (d *FileDefiner) path(name string) string {
	return filepath.Join(d.dir, synth.FileName(name))
}

func (d *FileDefiner) Defined(name string) (Type, bool) {
	d.mu.RLock()
	typ, found := d.types[name]
	d.mu.RUnlock()
	if found || d.overwrite {
		return typ, found
	}

	// generated by a previous run
	path := d.path(name)
	if exists, _ := afero.Exists(d.fs, path); !exists {
		return Type{}, false
	}
	id, ok, err := identity.Decode(name)
	if !ok || err != nil {
		return Type{}, false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if typ, found = d.types[name]; !found {
		typ = Type{Name: name, Identity: id, Path: path}
		d.types[name] = typ
	}
	return typ, true
}

func (d *FileDefiner) Define(_ context.Context, source *synth.Source) (Type, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	path := d.path(source.Name)
	if _, found := d.types[source.Name]; found {
		return Type{}, fmt.Errorf("%w: %s", errdefs.ErrAlreadyDefined, source.Name)
	}
	if !d.overwrite {
		if exists, _ := afero.Exists(d.fs, path); exists {
			return Type{}, fmt.Errorf("%w: %s in %s", errdefs.ErrAlreadyDefined, source.Name, path)
		}
	}

	if err := d.fs.MkdirAll(d.dir, 0o755); err != nil {
		return Type{}, fmt.Errorf("failed to create directory %s:\n\t%w", d.dir, err)
	}
	if err := afero.WriteFile(d.fs, path, []byte(source.Text), 0o644); err != nil {
		return Type{}, fmt.Errorf("failed to write proxy %s:\n\t%w", source.Name, err)
	}

	typ := Type{Name: source.Name, Identity: source.Identity, Package: source.PackagePath, Path: path}
	d.types[source.Name] = typ
	return typ, nil
}

// Files returns the files of the proxies defined, written or reused from a previous
// run, sorted.
func (d *FileDefiner) Files() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	files := make([]string, 0, len(d.types))
	for _, typ := range d.types {
		files = append(files, typ.Path)
	}
	sort.Strings(files)
	return files
}

// Clean removes the generated files of dir the definer neither wrote nor reused.
func (d *FileDefiner) Clean() ([]string, error) {
	entries, err := afero.ReadDir(d.fs, d.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s:\n\t%w", d.dir, err)
	}

	written := make(map[string]bool)
	for _, file := range d.Files() {
		written[file] = true
	}

	prefix := strcase.SnakeCase(identity.Prefix) + "_"
	var removed []string
	for _, entry := range entries {
		path := filepath.Join(d.dir, entry.Name())
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) || written[path] {
			continue
		}
		if err := d.fs.Remove(path); err != nil {
			return removed, fmt.Errorf("failed to remove %s:\n\t%w", path, err)
		}
		removed = append(removed, path)
	}
	return removed, nil
}
